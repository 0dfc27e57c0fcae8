package models

import (
	"errors"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidOutcome возвращается при некорректном результате посещения
	ErrInvalidOutcome = errors.New("invalid attendance outcome")
)

// Request модели

// GetMemberBookingsRequest запрос истории бронирований участника
type GetMemberBookingsRequest struct {
	MemberID  int64
	ActorID   int64
	ActorRole domain.Role
	Status    *string
}

// MarkAttendanceRequest запрос на отметку посещения занятия
type MarkAttendanceRequest struct {
	BookingID int64
	ActorID   int64
	ActorRole domain.Role
	Outcome   string
}

// Response модели

// BookingResponse бронирование
type BookingResponse struct {
	ID              int64      `json:"id"`
	MemberID        int64      `json:"memberId"`
	InstanceID      string     `json:"instanceId"`
	ClassDate       string     `json:"classDate"`
	Status          string     `json:"status"`
	ClassName       string     `json:"className"`
	CoachName       string     `json:"coachName"`
	StartTime       string     `json:"startTime"`
	DurationMinutes int        `json:"durationMinutes"`
	AttendedAt      *time.Time `json:"attendedAt,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// FromDomainBooking конвертирует доменное бронирование в response модель
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:              b.ID,
		MemberID:        b.MemberID,
		InstanceID:      b.InstanceID,
		ClassDate:       b.Key().DateKey(),
		Status:          string(b.Status),
		ClassName:       b.ClassName,
		CoachName:       b.CoachName,
		StartTime:       b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		AttendedAt:      b.AttendedAt,
		CancelledAt:     b.CancelledAt,
		CreatedAt:       b.CreatedAt,
	}
}

// FromDomainBookingList конвертирует список доменных бронирований
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	response := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		response.Bookings = append(response.Bookings, *FromDomainBooking(b))
	}
	return response
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(s) {
	case domain.StatusConfirmed, domain.StatusWaitingList, domain.StatusCompleted,
		domain.StatusNoShow, domain.StatusLate, domain.StatusCancelled:
		return domain.BookingStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// ToDomainOutcome конвертирует строку в domain.AttendanceOutcome
func ToDomainOutcome(s string) (domain.AttendanceOutcome, error) {
	switch domain.AttendanceOutcome(s) {
	case domain.OutcomeAttended, domain.OutcomeNoShow, domain.OutcomeLate, domain.OutcomeReset:
		return domain.AttendanceOutcome(s), nil
	default:
		return "", ErrInvalidOutcome
	}
}
