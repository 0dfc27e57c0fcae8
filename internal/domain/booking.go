package domain

import (
	"time"

	"github.com/m04kA/GYM-ClassService/pkg/types"
)

// BookingStatus represents the status of a class booking
type BookingStatus string

const (
	StatusConfirmed   BookingStatus = "confirmed"
	StatusWaitingList BookingStatus = "waiting_list"
	StatusCompleted   BookingStatus = "completed"
	StatusNoShow      BookingStatus = "no_show"
	StatusLate        BookingStatus = "late"
	StatusCancelled   BookingStatus = "cancelled"
)

// AttendanceOutcome staff-recorded outcome of a class visit
type AttendanceOutcome string

const (
	OutcomeAttended AttendanceOutcome = "attended"
	OutcomeNoShow   AttendanceOutcome = "no_show"
	OutcomeLate     AttendanceOutcome = "late"
	OutcomeReset    AttendanceOutcome = "reset"
)

// Booking represents a member's reservation for a class occurrence
type Booking struct {
	ID         int64
	MemberID   int64
	TemplateID int64
	ClassDate  time.Time
	InstanceID string
	Status     BookingStatus

	// Denormalized class data for history
	ClassName       string
	CoachName       string
	StartTime       types.TimeString
	DurationMinutes int

	AttendedAt         *time.Time
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the canonical class key this booking belongs to
func (b *Booking) Key() ClassKey {
	return NewClassKey(b.TemplateID, b.ClassDate)
}

// IsActive returns true if the booking still holds or awaits a seat
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// CountsAsEnrolled returns true if the booking occupies a seat
func (b *Booking) CountsAsEnrolled() bool {
	switch b.Status {
	case StatusConfirmed, StatusCompleted, StatusNoShow, StatusLate:
		return true
	default:
		return false
	}
}

// IsWaitlisted returns true if the booking is queued for a seat
func (b *Booking) IsWaitlisted() bool {
	return b.Status == StatusWaitingList
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed || b.Status == StatusWaitingList
}

// StartAt returns the full start timestamp of the booked class in loc
func (b *Booking) StartAt(loc *time.Location) (time.Time, error) {
	return b.StartTime.At(b.ClassDate, loc)
}
