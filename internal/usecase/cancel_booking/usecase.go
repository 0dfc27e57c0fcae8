package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	"github.com/m04kA/GYM-ClassService/internal/infra/notify"
	bookingRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/booking"
	entitlementRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/entitlement"
	memberRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/member"
)

// UseCase use case отмены бронирования
type UseCase struct {
	bookingRepo     BookingRepository
	templateRepo    TemplateRepository
	entitlementRepo EntitlementRepository
	memberRepo      MemberRepository
	txManager       TransactionManager
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger
	loc             *time.Location

	cancelWindowHours float64
	lateCancelLimit   int
	blockDays         int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	templateRepo TemplateRepository,
	entitlementRepo EntitlementRepository,
	memberRepo MemberRepository,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
	loc *time.Location,
	cancelWindowHours float64,
	lateCancelLimit int,
	blockDays int,
) *UseCase {
	if cancelWindowHours <= 0 {
		cancelWindowHours = domain.DefaultCancelWindowHours
	}
	if lateCancelLimit <= 0 {
		lateCancelLimit = domain.DefaultLateCancelLimit
	}
	if blockDays <= 0 {
		blockDays = domain.DefaultBlockDays
	}

	return &UseCase{
		bookingRepo:       bookingRepo,
		templateRepo:      templateRepo,
		entitlementRepo:   entitlementRepo,
		memberRepo:        memberRepo,
		txManager:         txManager,
		notifier:          notifier,
		timeProvider:      &RealTimeProvider{},
		logger:            logger,
		loc:               loc,
		cancelWindowHours: cancelWindowHours,
		lateCancelLimit:   lateCancelLimit,
		blockDays:         blockDays,
	}
}

// Execute выполняет use case отмены бронирования
// Своевременная отмена возвращает занятие на абонемент, поздняя - для
// билета сгорает единица, для абонемента начисляется штраф (три поздних
// отмены блокируют запись). Освободившееся место в той же транзакции
// отдаётся первому подходящему кандидату из листа ожидания. Отмена
// персоналом всегда идёт по правилам своевременной.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d actor=%d role=%s", req.BookingID, req.ActorID, req.ActorRole)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(uc.loc)

	var (
		response *Response
		events   []notify.Event
	)

	// 3. Вся отмена с продвижением листа ожидания - одна транзакция
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		response = nil
		events = nil

		// 3.1. Бронирование с блокировкой строки
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("CancelBooking: booking=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("CancelBooking: failed to get booking=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 3.2. Права доступа
		staffCancel := req.ActorRole.IsStaff() && req.ActorID != booking.MemberID
		if booking.MemberID != req.ActorID && !staffCancel {
			uc.logger.Warn("CancelBooking: access denied for actor=%d to booking=%d", req.ActorID, req.BookingID)
			return ErrAccessDenied
		}

		// 3.3. Заблокированный участник не отменяет сам, отмена персоналом проходит
		if !staffCancel {
			penalty, err := uc.memberRepo.GetPenalty(txCtx, booking.MemberID)
			if err != nil && !errors.Is(err, memberRepo.ErrMemberNotFound) {
				uc.logger.Error("CancelBooking: failed to get penalty for member=%d: %v", booking.MemberID, err)
				return fmt.Errorf("%w: failed to get penalty: %v", ErrInternal, err)
			}
			if penalty != nil && penalty.IsBlocked(now) {
				uc.logger.Warn("CancelBooking: member=%d is blocked until %s", booking.MemberID, penalty.BlockEndDate)
				return ErrAccountBlocked
			}
		}

		// 3.4. Отменить можно только подтверждённое или ожидающее бронирование
		if !booking.CanBeCancelled() {
			uc.logger.Warn("CancelBooking: booking=%d has status=%s, cannot cancel", req.BookingID, booking.Status)
			return ErrCannotCancel
		}

		hours, err := domain.HoursUntil(booking.ClassDate, booking.StartTime, now)
		if err != nil {
			return fmt.Errorf("%w: bad booking start time: %v", ErrInternal, err)
		}

		// Начавшееся занятие отменяет только персонал
		if hours <= 0 && !staffCancel {
			uc.logger.Warn("CancelBooking: class for booking=%d already started", req.BookingID)
			return ErrCannotCancel
		}

		wasConfirmed := booking.Status == domain.StatusConfirmed
		late := !staffCancel && domain.IsLateCancellation(hours, uc.cancelWindowHours)

		result := &Response{
			ID:               booking.ID,
			Status:           string(domain.StatusCancelled),
			LateCancellation: late,
		}

		reason := ReasonCancelledByMember
		if staffCancel {
			reason = ReasonCancelledByAdmin
		}

		// 3.5. Ветки политики - только для подтверждённого места:
		// лист ожидания ничего не списывал и штрафов не несёт
		if wasConfirmed {
			ent, err := uc.entitlementRepo.GetCurrentByMember(txCtx, booking.MemberID)
			if err != nil && !errors.Is(err, entitlementRepo.ErrEntitlementNotFound) {
				uc.logger.Error("CancelBooking: failed to get entitlement for member=%d: %v", booking.MemberID, err)
				return fmt.Errorf("%w: failed to get entitlement: %v", ErrInternal, err)
			}

			switch {
			case !late:
				// Своевременная отмена (или отмена персоналом): возврат единицы
				if ent != nil {
					if err := uc.entitlementRepo.Refund(txCtx, ent); err != nil {
						uc.logger.Error("CancelBooking: refund failed for member=%d: %v", booking.MemberID, err)
						return fmt.Errorf("%w: refund failed: %v", ErrInternal, err)
					}
					result.UnitRefunded = true
				}

			case ent == nil:
				// Поздняя отмена без действующего плана: возвращать нечего,
				// списывать и штрафовать не с чего
				reason = ReasonLateCancellation
				uc.logger.Warn("CancelBooking: late cancellation with no entitlement for member=%d", booking.MemberID)

			case ent.Kind == domain.KindTicket:
				// Поздняя отмена по билету: единица сгорает
				reason = ReasonLateCancellation
				uc.logger.Info("CancelBooking: late ticket cancellation, unit forfeited for member=%d", booking.MemberID)

			default:
				// Поздняя отмена по абонементу: штрафной страйк
				reason = ReasonLateCancellation
				penalty, err := uc.memberRepo.RegisterLateCancellation(txCtx, booking.MemberID, uc.lateCancelLimit, uc.blockDays)
				if err != nil {
					if errors.Is(err, memberRepo.ErrMemberBlocked) || errors.Is(err, memberRepo.ErrMemberNotFound) {
						uc.logger.Warn("CancelBooking: penalty not advanced for member=%d: %v", booking.MemberID, err)
					} else {
						uc.logger.Error("CancelBooking: penalty failed for member=%d: %v", booking.MemberID, err)
						return fmt.Errorf("%w: penalty failed: %v", ErrInternal, err)
					}
				} else {
					result.LateCancellations = penalty.LateCancellations
					result.BlockEndDate = penalty.BlockEndDate
					if penalty.BlockEndDate != nil {
						uc.logger.Warn("CancelBooking: member=%d blocked until %s", booking.MemberID, penalty.BlockEndDate)
					}
				}
			}
		}

		// 3.6. Отмена бронирования
		if err := uc.bookingRepo.Cancel(txCtx, booking.ID, reason); err != nil {
			uc.logger.Error("CancelBooking: failed to cancel booking=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		events = append(events, notify.Event{
			Type:       notify.EventBookingCancelled,
			MemberID:   booking.MemberID,
			BookingID:  booking.ID,
			InstanceID: booking.InstanceID,
			ClassName:  booking.ClassName,
			ClassDate:  booking.Key().DateKey(),
			StartTime:  booking.StartTime.String(),
			Reason:     reason,
		})

		// 3.7. Освободившееся место - первому подходящему из листа ожидания
		if wasConfirmed {
			promoEvents, promotedID, err := uc.promoteFromWaitlist(txCtx, booking, now)
			if err != nil {
				return err
			}
			events = append(events, promoEvents...)
			result.PromotedBookingID = promotedID
		}

		response = result
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: cancelled booking=%d", response.ID)

	// 4. События после фиксации транзакции
	for _, event := range events {
		uc.notifier.Publish(ctx, event)
	}

	return response, nil
}

// promoteFromWaitlist продвигает первого подходящего кандидата из листа
// ожидания: у кандидата должен быть действующий план, покрывающий занятие,
// и успешно списанная единица. Неподходящие кандидаты пропускаются и
// остаются в листе ожидания.
func (uc *UseCase) promoteFromWaitlist(ctx context.Context, cancelled *domain.Booking, now time.Time) ([]notify.Event, *int64, error) {
	waitlist, err := uc.bookingRepo.GetWaitlist(ctx, cancelled.Key())
	if err != nil {
		uc.logger.Error("CancelBooking: failed to get waitlist: %v", err)
		return nil, nil, fmt.Errorf("%w: failed to get waitlist: %v", ErrInternal, err)
	}
	if len(waitlist) == 0 {
		return nil, nil, nil
	}

	var requiredTags []string
	template, err := uc.templateRepo.GetByID(ctx, cancelled.TemplateID)
	if err != nil {
		uc.logger.Warn("CancelBooking: failed to get template=%d for promotion checks: %v", cancelled.TemplateID, err)
	} else {
		requiredTags = template.RequiredTags
	}

	for _, candidate := range waitlist {
		ent, err := uc.entitlementRepo.GetCurrentByMember(ctx, candidate.MemberID)
		if err != nil && !errors.Is(err, entitlementRepo.ErrEntitlementNotFound) {
			uc.logger.Error("CancelBooking: failed to get entitlement for candidate=%d: %v", candidate.MemberID, err)
			return nil, nil, fmt.Errorf("%w: failed to get candidate entitlement: %v", ErrInternal, err)
		}

		if !eligibleForPromotion(ent, requiredTags, now) {
			uc.logger.Info("CancelBooking: waitlist candidate member=%d not eligible, skipping", candidate.MemberID)
			continue
		}

		consumed, err := uc.entitlementRepo.Consume(ctx, ent, now)
		if err != nil {
			uc.logger.Error("CancelBooking: consume failed for candidate=%d: %v", candidate.MemberID, err)
			return nil, nil, fmt.Errorf("%w: candidate consume failed: %v", ErrInternal, err)
		}
		if consumed.Outcome == entitlementRepo.ConsumeInsufficient {
			uc.logger.Info("CancelBooking: waitlist candidate member=%d has insufficient balance, skipping", candidate.MemberID)
			continue
		}

		if err := uc.bookingRepo.UpdateStatus(ctx, candidate.ID, domain.StatusConfirmed); err != nil {
			uc.logger.Error("CancelBooking: failed to promote booking=%d: %v", candidate.ID, err)
			return nil, nil, fmt.Errorf("%w: failed to promote booking: %v", ErrInternal, err)
		}

		uc.logger.Info("CancelBooking: promoted booking=%d member=%d from waitlist", candidate.ID, candidate.MemberID)

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
