package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	bookingRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/booking"
	"github.com/m04kA/GYM-ClassService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями: чтение и отметка посещений
type Service struct {
	bookingRepo BookingRepository
	logger      Logger

	loc *time.Location
	now func() time.Time
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger, loc *time.Location) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
		loc:         loc,
		now:         time.Now,
	}
}

// GetByID получает бронирование по ID
// Участник видит только свои бронирования, персонал - любые
func (s *Service) GetByID(ctx context.Context, id, actorID int64, actorRole domain.Role) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for actor=%d", id, actorID)

	booking, err := s.loadBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if booking.MemberID != actorID && !actorRole.IsStaff() {
		s.logger.Warn("GetByID: access denied for actor=%d to booking id=%d", actorID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetMemberBooking получает активное бронирование участника на занятие
func (s *Service) GetMemberBooking(ctx context.Context, memberID int64, instanceID string) (*models.BookingResponse, error) {
	s.logger.Info("GetMemberBooking: member=%d instance=%s", memberID, instanceID)

	booking, err := s.bookingRepo.GetActiveByMemberAndInstance(ctx, memberID, instanceID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetMemberBooking: repository error for member=%d: %v", memberID, err)
		return nil, fmt.Errorf("%w: GetMemberBooking - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetMemberBookings получает историю бронирований участника
// Доступно владельцу истории и персоналу; опционально фильтрует по статусу
func (s *Service) GetMemberBookings(ctx context.Context, req *models.GetMemberBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetMemberBookings: fetching bookings for member=%d, actor=%d", req.MemberID, req.ActorID)

	if req.MemberID != req.ActorID && !req.ActorRole.IsStaff() {
		s.logger.Warn("GetMemberBookings: access denied for actor=%d to member=%d history", req.ActorID, req.MemberID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetMemberBookings: invalid status=%s for member=%d", *req.Status, req.MemberID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByMemberID(ctx, req.MemberID, domainStatus)
	if err != nil {
		s.logger.Error("GetMemberBookings: repository error for member=%d: %v", req.MemberID, err)
		return nil, fmt.Errorf("%w: GetMemberBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetMemberBookings: fetched %d bookings for member=%d", len(bookings), req.MemberID)
	return models.FromDomainBookingList(bookings), nil
}

// MarkAttendance фиксирует результат посещения занятия.
// Доступно только персоналу и только для уже начавшихся занятий.
// Результат reset возвращает бронирование в confirmed и стирает отметку.
func (s *Service) MarkAttendance(ctx context.Context, req *models.MarkAttendanceRequest) (*models.BookingResponse, error) {
	s.logger.Info("MarkAttendance: booking id=%d outcome=%s by actor=%d", req.BookingID, req.Outcome, req.ActorID)

	if !req.ActorRole.IsStaff() {
		s.logger.Warn("MarkAttendance: access denied for actor=%d", req.ActorID)
		return nil, ErrAccessDenied
	}

	outcome, err := models.ToDomainOutcome(req.Outcome)
	if err != nil {
		s.logger.Warn("MarkAttendance: invalid outcome=%s for booking id=%d", req.Outcome, req.BookingID)
		return nil, fmt.Errorf("%w: invalid outcome", ErrInvalidInput)
	}

	booking, err := s.loadBooking(ctx, "MarkAttendance", req.BookingID)
	if err != nil {
		return nil, err
	}

	if !booking.CountsAsEnrolled() {
		s.logger.Warn("MarkAttendance: booking id=%d has status=%s, attendance not applicable", req.BookingID, booking.Status)
		return nil, fmt.Errorf("%w: attendance not applicable to status %s", ErrInvalidInput, booking.Status)
	}

	now := s.now().In(s.loc)
	startAt, err := booking.StartAt(s.loc)
	if err != nil {
		s.logger.Error("MarkAttendance: bad start time for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: MarkAttendance - bad start time: %v", ErrInternal, err)
	}
	if now.Before(startAt) {
		s.logger.Warn("MarkAttendance: class for booking id=%d starts at %s, not yet started", req.BookingID, startAt)
		return nil, ErrClassNotStarted
	}

	status, attendedAt := attendanceTransition(outcome, now)

	if err := s.bookingRepo.SetAttendance(ctx, req.BookingID, status, attendedAt); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("MarkAttendance: repository error for booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: MarkAttendance - repository error: %v", ErrInternal, err)
	}

	booking.Status = status
	booking.AttendedAt = attendedAt

	s.logger.Info("MarkAttendance: booking id=%d marked %s", req.BookingID, status)
	return models.FromDomainBooking(booking), nil
}

func (s *Service) loadBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

func attendanceTransition(outcome domain.AttendanceOutcome, now time.Time) (domain.BookingStatus, *time.Time) {
	switch outcome {
	case domain.OutcomeAttended:
		return domain.StatusCompleted, &now
	case domain.OutcomeLate:
		return domain.StatusLate, &now
	case domain.OutcomeNoShow:
		return domain.StatusNoShow, nil
	default: // reset
		return domain.StatusConfirmed, nil
	}
}
