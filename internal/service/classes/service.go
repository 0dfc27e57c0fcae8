package classes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	entitlementRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/entitlement"
	"github.com/m04kA/GYM-ClassService/internal/service/classes/models"
)

// Service сервис расписания: разворачивание шаблонов и агрегация записи
type Service struct {
	templateRepo    TemplateRepository
	bookingRepo     BookingRepository
	entitlementRepo EntitlementRepository
	logger          Logger

	loc        *time.Location
	windowDays int
	now        func() time.Time
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	templateRepo TemplateRepository,
	bookingRepo BookingRepository,
	entitlementRepo EntitlementRepository,
	logger Logger,
	loc *time.Location,
	windowDays int,
) *Service {
	if windowDays <= 0 {
		windowDays = domain.DefaultScheduleWindowDays
	}

	return &Service{
		templateRepo:    templateRepo,
		bookingRepo:     bookingRepo,
		entitlementRepo: entitlementRepo,
		logger:          logger,
		loc:             loc,
		windowDays:      windowDays,
		now:             time.Now,
	}
}

// ListInstances получает окно расписания с живыми данными о записи.
// Окно задаётся либо weekOffset (0 - остаток текущей недели, 1 - следующая
// неделя), либо явной парой from/days. Явное окно ограничено сверху
// настроенной глубиной расписания.
func (s *Service) ListInstances(ctx context.Context, req *models.GetInstancesRequest) (*models.InstanceListResponse, error) {
	now := s.now().In(s.loc)

	from, days, err := s.resolveWindow(req, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ListInstances: window from=%s days=%d for member=%d",
		from.Format(domain.DateFormat), days, req.MemberID)

	annotated, err := s.expandWindow(ctx, from, days)
	if err != nil {
		return nil, err
	}

	earlyUnlock := s.memberEarlyUnlock(ctx, req.MemberID)

	response := &models.InstanceListResponse{
		Instances:        make([]models.InstanceResponse, 0, len(annotated)),
		NextWeekUnlockAt: domain.RegistrationUnlockTime(now, earlyUnlock),
	}

	for i := range annotated {
		open := domain.IsRegistrationOpenFor(annotated[i].Key.ClassDate, now, earlyUnlock)
		response.Instances = append(response.Instances, models.FromDomainInstance(&annotated[i], open))
	}

	s.logger.Info("ListInstances: returning %d instances", len(response.Instances))
	return response, nil
}

// ResolveInstance находит занятие по детерминированному ID, разворачивая
// активные шаблоны по всей глубине расписания начиная с сегодняшнего дня
func (s *Service) ResolveInstance(ctx context.Context, instanceID string) (*domain.ClassInstance, error) {
	now := s.now().In(s.loc)

	annotated, err := s.expandWindow(ctx, now, s.windowDays)
	if err != nil {
		return nil, err
	}

	for i := range annotated {
		if annotated[i].ID == instanceID {
			return &annotated[i].ClassInstance, nil
		}
	}

	s.logger.Warn("ResolveInstance: instance %s not found in schedule window", instanceID)
	return nil, ErrInstanceNotFound
}

// AnnotateInstance получает занятие с актуальными счётчиками записи
func (s *Service) AnnotateInstance(ctx context.Context, instanceID string) (*domain.AnnotatedInstance, error) {
	now := s.now().In(s.loc)

	annotated, err := s.expandWindow(ctx, now, s.windowDays)
	if err != nil {
		return nil, err
	}

	for i := range annotated {
		if annotated[i].ID == instanceID {
			return &annotated[i], nil
		}
	}

	return nil, ErrInstanceNotFound
}

func (s *Service) expandWindow(ctx context.Context, from time.Time, days int) ([]domain.AnnotatedInstance, error) {
	templates, err := s.templateRepo.GetActive(ctx)
	if err != nil {
		s.logger.Error("expandWindow: failed to load templates: %v", err)
		return nil, fmt.Errorf("%w: expandWindow - load templates: %v", ErrInternal, err)
	}

	instances := Expand(templates, from, days, s.loc)

	rangeFrom := domain.NewClassKey(0, from).ClassDate
	rangeTo := rangeFrom.AddDate(0, 0, days-1)

	bookings, err := s.bookingRepo.GetByDateRange(ctx, rangeFrom, rangeTo)
	if err != nil {
		s.logger.Error("expandWindow: failed to load bookings: %v", err)
		return nil, fmt.Errorf("%w: expandWindow - load bookings: %v", ErrInternal, err)
	}

	return Annotate(instances, bookings), nil
}

func (s *Service) resolveWindow(req *models.GetInstancesRequest, now time.Time) (time.Time, int, error) {
	if req.From != nil {
		days := s.windowDays
		if req.Days != nil {
			if *req.Days <= 0 {
				return time.Time{}, 0, fmt.Errorf("%w: days must be positive", ErrInvalidInput)
			}
			days = *req.Days
		}
		if days > s.windowDays {
			days = s.windowDays
		}

		// Расписание не смотрит в прошлое
		from := *req.From
		if from.Before(now) {
			from = now
		}
		return from, days, nil
	}

	offset := 0
	if req.WeekOffset != nil {
		offset = *req.WeekOffset
	}

	switch offset {
	case 0:
		// Остаток текущей недели начиная с сегодняшнего дня
		return now, 7 - int(now.Weekday()), nil
	case 1:
		return domain.WeekStart(now).AddDate(0, 0, 7), 7, nil
	default:
		return time.Time{}, 0, fmt.Errorf("%w: weekOffset must be 0 or 1", ErrInvalidInput)
	}
}

func (s *Service) memberEarlyUnlock(ctx context.Context, memberID int64) bool {
	if memberID <= 0 {
		return false
	}

	ent, err := s.entitlementRepo.GetCurrentByMember(ctx, memberID)
	if err != nil {
		if !errors.Is(err, entitlementRepo.ErrEntitlementNotFound) {
			s.logger.Warn("memberEarlyUnlock: failed to load entitlement for member=%d: %v", memberID, err)
		}
		return false
	}

	return ent.EarlyUnlock()
}
