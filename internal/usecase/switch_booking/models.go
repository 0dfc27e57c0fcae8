package switch_booking

import (
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// ReasonSwitched причина отмены исходного бронирования при переносе
const ReasonSwitched = "switched"

// Request запрос на перенос бронирования на другое занятие
type Request struct {
	BookingID    int64
	ActorID      int64
	ActorRole    domain.Role
	ToInstanceID string
}

// Response результат переноса: новое бронирование
type Response struct {
	ID              int64     `json:"id"`
	MemberID        int64     `json:"memberId"`
	InstanceID      string    `json:"instanceId"`
	ClassDate       string    `json:"classDate"`
	Status          string    `json:"status"`
	ClassName       string    `json:"className"`
	CoachName       string    `json:"coachName"`
	StartTime       string    `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	CreatedAt       time.Time `json:"createdAt"`

	// CancelledBookingID исходное бронирование, закрытое переносом
	CancelledBookingID int64 `json:"cancelledBookingId"`
	// PromotedBookingID бронирование, продвинутое на освободившееся место
	PromotedBookingID *int64 `json:"promotedBookingId,omitempty"`
}
