package switch_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	"github.com/m04kA/GYM-ClassService/internal/infra/notify"
	bookingRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/booking"
	entitlementRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/entitlement"
	"github.com/m04kA/GYM-ClassService/internal/service/classes"
)

// UseCase use case переноса бронирования на другое занятие
type UseCase struct {
	schedule        ScheduleResolver
	bookingRepo     BookingRepository
	templateRepo    TemplateRepository
	entitlementRepo EntitlementRepository
	txManager       TransactionManager
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger
	loc             *time.Location

	switchWindowHours float64
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	schedule ScheduleResolver,
	bookingRepo BookingRepository,
	templateRepo TemplateRepository,
	entitlementRepo EntitlementRepository,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
	loc *time.Location,
	switchWindowHours float64,
) *UseCase {
	if switchWindowHours <= 0 {
		switchWindowHours = domain.DefaultSwitchWindowHours
	}

	return &UseCase{
		schedule:          schedule,
		bookingRepo:       bookingRepo,
		templateRepo:      templateRepo,
		entitlementRepo:   entitlementRepo,
		txManager:         txManager,
		notifier:          notifier,
		timeProvider:      &RealTimeProvider{},
		logger:            logger,
		loc:               loc,
		switchWindowHours: switchWindowHours,
	}
}

// Execute выполняет use case переноса бронирования
// Перенос - это отмена по правилам своевременной плюс новая запись,
// единым целым: любая неудача откатывает транзакцию и исходное
// бронирование остаётся нетронутым. Занятие с абонемента не списывается
// повторно - единица переезжает вместе с бронированием. Мест в целевом
// занятии нет - перенос отклоняется, лист ожидания не предлагается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("SwitchBooking: booking=%d to instance=%s actor=%d", req.BookingID, req.ToInstanceID, req.ActorID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("SwitchBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(uc.loc)

	// 3. Находим целевое занятие
	target, err := uc.schedule.ResolveInstance(ctx, req.ToInstanceID)
	if err != nil {
		if errors.Is(err, classes.ErrInstanceNotFound) {
			uc.logger.Warn("SwitchBooking: target instance %s not found", req.ToInstanceID)
			return nil, ErrInstanceNotFound
		}
		uc.logger.Error("SwitchBooking: failed to resolve target instance: %v", err)
		return nil, fmt.Errorf("%w: failed to resolve target instance: %v", ErrInternal, err)
	}

	override := req.ActorRole.IsStaff()

	var (
		response *Response
		events   []notify.Event
	)

	// 4. Отмена и новая запись - одна сериализуемая транзакция
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		response = nil
		events = nil

		// 4.1. Исходное бронирование с блокировкой строки
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("SwitchBooking: booking=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("SwitchBooking: failed to get booking=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 4.2. Права доступа
		if booking.MemberID != req.ActorID && !override {
			uc.logger.Warn("SwitchBooking: access denied for actor=%d to booking=%d", req.ActorID, req.BookingID)
			return ErrAccessDenied
		}

		// 4.3. Переносится только подтверждённое место
		if booking.Status != domain.StatusConfirmed {
			uc.logger.Warn("SwitchBooking: booking=%d has status=%s, cannot switch", req.BookingID, booking.Status)
			return ErrCannotSwitch
		}

		// 4.4. Перенос на то же занятие бессмыслен
		if booking.Key().Equal(target.Key) {
			return ErrAlreadyBooked
		}

		// 4.5. Окно переноса исходного занятия
		hours, err := domain.HoursUntil(booking.ClassDate, booking.StartTime, now)
		if err != nil {
			return fmt.Errorf("%w: bad booking start time: %v", ErrInternal, err)
		}
		if !override && !domain.IsSwitchWindowOpen(hours, uc.switchWindowHours) {
			uc.logger.Warn("SwitchBooking: switch window closed for booking=%d (%.1fh left)", req.BookingID, hours)
			return ErrSwitchWindowClosed
		}

		// 4.6. Целевое занятие: не началось и его неделя открыта
		if !override {
			targetStart, err := target.StartAt(uc.loc)
			if err != nil {
				return fmt.Errorf("%w: bad target start time: %v", ErrInternal, err)
			}
			if !now.Before(targetStart) {
				return ErrRegistrationClosed
			}

			ent, err := uc.entitlementRepo.GetCurrentByMember(txCtx, booking.MemberID)
			if err != nil && !errors.Is(err, entitlementRepo.ErrEntitlementNotFound) {
				uc.logger.Error("SwitchBooking: failed to get entitlement for member=%d: %v", booking.MemberID, err)
				return fmt.Errorf("%w: failed to get entitlement: %v", ErrInternal, err)
			}

			earlyUnlock := ent != nil && ent.EarlyUnlock()
			if !domain.IsRegistrationOpenFor(target.Key.ClassDate, now, earlyUnlock) {
				uc.logger.Warn("SwitchBooking: registration for %s not yet open", target.Key.DateKey())
				return ErrRegistrationClosed
			}
		}

		// 4.7. Дубликат на целевом занятии: для персонала проверку
		// берёт на себя уникальный индекс при создании
		if !override {
			_, err = uc.bookingRepo.GetActiveByMemberAndKey(txCtx, booking.MemberID, target.Key)
			if err == nil {
				uc.logger.Warn("SwitchBooking: member=%d already booked for target %s", booking.MemberID, req.ToInstanceID)
				return ErrAlreadyBooked
			}
			if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Error("SwitchBooking: duplicate check failed: %v", err)
				return fmt.Errorf("%w: duplicate check failed: %v", ErrInternal, err)
			}
		}

		// 4.8. Вместимость целевого занятия - без листа ожидания
		existing, err := uc.bookingRepo.GetByClassKey(txCtx, target.Key)
		if err != nil {
			uc.logger.Error("SwitchBooking: failed to get target bookings: %v", err)
			return fmt.Errorf("%w: failed to get target bookings: %v", ErrInternal, err)
		}
		if countEnrolled(existing) >= target.Capacity {
			uc.logger.Warn("SwitchBooking: target %s is full", req.ToInstanceID)
			return ErrInstanceFull
		}

		// 4.9. Закрываем исходное бронирование без возврата и штрафа
		if err := uc.bookingRepo.Cancel(txCtx, booking.ID, ReasonSwitched); err != nil {
			uc.logger.Error("SwitchBooking: failed to cancel booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		// 4.10. Новая запись - единица уже оплачена исходным бронированием
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			MemberID:        booking.MemberID,
			TemplateID:      target.Key.TemplateID,
			ClassDate:       target.Key.ClassDate,
			InstanceID:      target.ID,
			Status:          domain.StatusConfirmed,
			ClassName:       target.Name,
			CoachName:       target.CoachName,
			StartTime:       target.StartTime,
			DurationMinutes: target.DurationMinutes,
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrDuplicateBooking) {
				uc.logger.Warn("SwitchBooking: member=%d already booked for target %s", booking.MemberID, req.ToInstanceID)
				return ErrAlreadyBooked
			}
			uc.logger.Error("SwitchBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		events = append(events,
			notify.Event{
				Type:       notify.EventBookingCancelled,
				MemberID:   booking.MemberID,
				BookingID:  booking.ID,
				InstanceID: booking.InstanceID,
				ClassName:  booking.ClassName,
				ClassDate:  booking.Key().DateKey(),
				StartTime:  booking.StartTime.String(),
				Reason:     ReasonSwitched,
			},
			notify.Event{
				Type:       notify.EventBookingCreated,
				MemberID:   created.MemberID,
				BookingID:  created.ID,
				InstanceID: created.InstanceID,
				ClassName:  created.ClassName,
				ClassDate:  created.Key().DateKey(),
				StartTime:  created.StartTime.String(),
				Status:     string(created.Status),
			},
		)

		// 4.11. Освободившееся место - листу ожидания исходного занятия
		promoEvents, promotedID, err := uc.promoteFromWaitlist(txCtx, booking, now)
		if err != nil {
			return err
		}
		events = append(events, promoEvents...)

		response = &Response{
			ID:                 created.ID,
			MemberID:           created.MemberID,
			InstanceID:         created.InstanceID,
			ClassDate:          created.Key().DateKey(),
			Status:             string(created.Status),
			ClassName:          created.ClassName,
			CoachName:          created.CoachName,
			StartTime:          created.StartTime.String(),
			DurationMinutes:    created.DurationMinutes,
			CreatedAt:          created.CreatedAt,
			CancelledBookingID: booking.ID,
			PromotedBookingID:  promotedID,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("SwitchBooking: booking=%d switched to booking=%d", response.CancelledBookingID, response.ID)

	// 5. События после фиксации транзакции
	for _, event := range events {
		uc.notifier.Publish(ctx, event)
	}

	return response, nil
}

// promoteFromWaitlist отдаёт освободившееся место первому подходящему
// кандидату из листа ожидания исходного занятия
func (uc *UseCase) promoteFromWaitlist(ctx context.Context, cancelled *domain.Booking, now time.Time) ([]notify.Event, *int64, error) {
	waitlist, err := uc.bookingRepo.GetWaitlist(ctx, cancelled.Key())
	if err != nil {
		uc.logger.Error("SwitchBooking: failed to get waitlist: %v", err)
		return nil, nil, fmt.Errorf("%w: failed to get waitlist: %v", ErrInternal, err)
	}
	if len(waitlist) == 0 {
		return nil, nil, nil
	}

	var requiredTags []string
	template, err := uc.templateRepo.GetByID(ctx, cancelled.TemplateID)
	if err != nil {
		uc.logger.Warn("SwitchBooking: failed to get template=%d for promotion checks: %v", cancelled.TemplateID, err)
	} else {
		requiredTags = template.RequiredTags
	}

	for _, candidate := range waitlist {
		ent, err := uc.entitlementRepo.GetCurrentByMember(ctx, candidate.MemberID)
		if err != nil && !errors.Is(err, entitlementRepo.ErrEntitlementNotFound) {
			uc.logger.Error("SwitchBooking: failed to get entitlement for candidate=%d: %v", candidate.MemberID, err)
			return nil, nil, fmt.Errorf("%w: failed to get candidate entitlement: %v", ErrInternal, err)
		}

		if !eligibleForPromotion(ent, requiredTags, now) {
			continue
		}

		consumed, err := uc.entitlementRepo.Consume(ctx, ent, now)
		if err != nil {
			uc.logger.Error("SwitchBooking: consume failed for candidate=%d: %v", candidate.MemberID, err)
			return nil, nil, fmt.Errorf("%w: candidate consume failed: %v", ErrInternal, err)
		}
		if consumed.Outcome == entitlementRepo.ConsumeInsufficient {
			continue
		}

		if err := uc.bookingRepo.UpdateStatus(ctx, candidate.ID, domain.StatusConfirmed); err != nil {
			uc.logger.Error("SwitchBooking: failed to promote booking=%d: %v", candidate.ID, err)
			return nil, nil, fmt.Errorf("%w: failed to promote booking: %v", ErrInternal, err)
		}

		events := []notify.Event{{
			Type:       notify.EventWaitlistPromoted,
			MemberID:   candidate.MemberID,
			BookingID:  candidate.ID,
			InstanceID: candidate.InstanceID,
			ClassName:  candidate.ClassName,
			ClassDate:  candidate.Key().DateKey(),
			StartTime:  candidate.StartTime.String(),
			Status:     string(domain.StatusConfirmed),
		}}
		if consumed.Status == string(domain.EntitlementDepleted) {
			events = append(events, notify.Event{
				Type:     notify.EventEntitlementDepleted,
				MemberID: candidate.MemberID,
			})
		}

		promotedID := candidate.ID
		return events, &promotedID, nil
	}

	return nil, nil, nil
}
