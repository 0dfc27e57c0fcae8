package book_class

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
	"github.com/m04kA/GYM-ClassService/internal/service/classes"
)

// UseCase use case записи на занятие
type UseCase struct {
	schedule        ScheduleResolver
	bookingRepo     BookingRepository
	entitlementRepo EntitlementRepository
	memberRepo      MemberRepository
	txManager       TransactionManager
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger
	loc             *time.Location
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	schedule ScheduleResolver,
	bookingRepo BookingRepository,
	entitlementRepo EntitlementRepository,
	memberRepo MemberRepository,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
	loc *time.Location,
) *UseCase {
	return &UseCase{
		schedule:        schedule,
		bookingRepo:     bookingRepo,
		entitlementRepo: entitlementRepo,
		memberRepo:      memberRepo,
		txManager:       txManager,
		notifier:        notifier,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		loc:             loc,
	}
}

// Execute выполняет use case записи на занятие
// Все проверки и создание бронирования идут в сериализуемой транзакции:
// при конфликте сериализации транзакция перезапускается целиком вместе
// с проверками. Персонал записывает участников в обход проверок
// правомерности, дубликатов и вместимости, без списания с абонемента.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookClass: member=%d instance=%s actor=%d role=%s",
		req.MemberID, req.InstanceID, req.ActorID, req.ActorRole)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookClass: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(uc.loc)

	// 3. Находим занятие в окне расписания
	instance, err := uc.schedule.ResolveInstance(ctx, req.InstanceID)
	if err != nil {
		if errors.Is(err, classes.ErrInstanceNotFound) {
			uc.logger.Warn("BookClass: instance %s not found", req.InstanceID)
			return nil, ErrInstanceNotFound
		}
		uc.logger.Error("BookClass: failed to resolve instance %s: %v", req.InstanceID, err)
		return nil, fmt.Errorf("%w: failed to resolve instance: %v", ErrInternal, err)
	}

	override := req.ActorRole.IsStaff()

	var (
		result   *domain.Booking
		depleted bool
	)

	// 4. Выполняем проверки и создание в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		result = nil
		depleted = false

		var ent *domain.Entitlement

		if !override {
			// 4.1. Блокировка за поздние отмены
			penalty, err := uc.memberRepo.GetPenalty(txCtx, req.MemberID)
			if err != nil && !errors.Is(err, memberRepo.ErrMemberNotFound) {
				uc.logger.Error("BookClass: failed to get penalty for member=%d: %v", req.MemberID, err)
				return fmt.Errorf("%w: failed to get penalty: %v", ErrInternal, err)
			}
			if penalty != nil && penalty.IsBlocked(now) {
				uc.logger.Warn("BookClass: member=%d is blocked until %s", req.MemberID, penalty.BlockEndDate)
				return ErrAccountBlocked
			}

			// 4.2. Правомерность записи по абонементу или билету
			ent, err = uc.entitlementRepo.GetCurrentByMember(txCtx, req.MemberID)
			if err != nil && !errors.Is(err, entitlementRepo.ErrEntitlementNotFound) {
				uc.logger.Error("BookClass: failed to get entitlement for member=%d: %v", req.MemberID, err)
				return fmt.Errorf("%w: failed to get entitlement: %v", ErrInternal, err)
			}
			if err := checkEligibility(ent, instance.RequiredTags, now); err != nil {
				uc.logger.Warn("BookClass: member=%d not eligible: %v", req.MemberID, err)
				return err
			}

			// 4.3. Окно записи: занятие не началось, неделя открыта
			startAt, err := instance.StartAt(uc.loc)
			if err != nil {
				return fmt.Errorf("%w: bad instance start time: %v", ErrInternal, err)
			}
			if !now.Before(startAt) {
				uc.logger.Warn("BookClass: class %s already started at %s", req.InstanceID, startAt)
				return ErrRegistrationClosed
			}
			if !domain.IsRegistrationOpenFor(instance.Key.ClassDate, now, ent.EarlyUnlock()) {
				uc.logger.Warn("BookClass: registration for %s not yet open", instance.Key.DateKey())
				return ErrRegistrationClosed
			}

			// 4.4. Дубликат
			_, err = uc.bookingRepo.GetActiveByMemberAndKey(txCtx, req.MemberID, instance.Key)
			if err == nil {
				uc.logger.Warn("BookClass: member=%d already booked for %s", req.MemberID, req.InstanceID)
				return ErrAlreadyBooked
			}
			if !errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Error("BookClass: duplicate check failed for member=%d: %v", req.MemberID, err)
				return fmt.Errorf("%w: duplicate check failed: %v", ErrInternal, err)
			}
		}

		// 4.5. Вместимость: авторитетное чтение с блокировкой строк
		status := domain.StatusConfirmed
		if req.ForceWaitlist && override {
			status = domain.StatusWaitingList
		} else if !override {
			existing, err := uc.bookingRepo.GetByClassKey(txCtx, instance.Key)
			if err != nil {
				uc.logger.Error("BookClass: failed to get class bookings: %v", err)
				return fmt.Errorf("%w: failed to get class bookings: %v", ErrInternal, err)
			}
			if countEnrolled(existing) >= instance.Capacity {
				uc.logger.Info("BookClass: class %s is full, routing member=%d to waitlist",
					req.InstanceID, req.MemberID)
				status = domain.StatusWaitingList
			}
		}

		// 4.6. Списание с абонемента - только за подтверждённое место
		if !override && status == domain.StatusConfirmed {
			consumed, err := uc.entitlementRepo.Consume(txCtx, ent, now)
			if err != nil {
				uc.logger.Error("BookClass: consume failed for member=%d: %v", req.MemberID, err)
				return fmt.Errorf("%w: consume failed: %v", ErrInternal, err)
			}
			if consumed.Outcome == entitlementRepo.ConsumeInsufficient {
				uc.logger.Warn("BookClass: member=%d has insufficient balance", req.MemberID)
				return ErrEntitlementDepleted
			}
			depleted = consumed.Status == string(domain.EntitlementDepleted)
		}

		// 4.7. Создаем бронирование с денормализацией данных занятия
		booking := &domain.Booking{
			MemberID:        req.MemberID,
			TemplateID:      instance.Key.TemplateID,
			ClassDate:       instance.Key.ClassDate,
			InstanceID:      instance.ID,
			Status:          status,
			ClassName:       instance.Name,
			CoachName:       instance.CoachName,
			StartTime:       instance.StartTime,
			DurationMinutes: instance.DurationMinutes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			// Уникальный индекс ловит дубликаты и там, где проверка
			// пропускалась (запись персоналом)
			if errors.Is(err, bookingRepo.ErrDuplicateBooking) {
				uc.logger.Warn("BookClass: member=%d already booked for %s", req.MemberID, req.InstanceID)
				return ErrAlreadyBooked
			}
			uc.logger.Error("BookClass: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("BookClass: created booking id=%d status=%s", result.ID, result.Status)

	// 5. События после фиксации транзакции
	uc.notifier.Publish(ctx, notify.Event{
		Type:       notify.EventBookingCreated,
		MemberID:   result.MemberID,
		BookingID:  result.ID,
		InstanceID: result.InstanceID,
		ClassName:  result.ClassName,
		ClassDate:  result.Key().DateKey(),
		StartTime:  result.StartTime.String(),
		Status:     string(result.Status),
	})
	if depleted {
		uc.notifier.Publish(ctx, notify.Event{
			Type:     notify.EventEntitlementDepleted,
			MemberID: result.MemberID,
		})
	}

	return toResponse(result), nil
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:              b.ID,
		MemberID:        b.MemberID,
		InstanceID:      b.InstanceID,
		ClassDate:       b.Key().DateKey(),
		Status:          string(b.Status),
		ClassName:       b.ClassName,
		CoachName:       b.CoachName,
		StartTime:       b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		CreatedAt:       b.CreatedAt,
	}
}
