package cancel_booking

import (
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// Причины отмены, записываемые в бронирование
const (
	ReasonCancelledByMember = "cancelled_by_member"
	ReasonCancelledByAdmin  = "cancelled_by_admin"
	ReasonLateCancellation  = "late_cancellation"
)

// Request запрос на отмену бронирования
type Request struct {
	BookingID int64
	ActorID   int64
	ActorRole domain.Role
}

// Response результат отмены
type Response struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`

	// LateCancellation отмена попала в штрафное окно
	LateCancellation bool `json:"lateCancellation"`
	// UnitRefunded занятие возвращено на абонемент или билет
	UnitRefunded bool `json:"unitRefunded"`
	// LateCancellations текущий счётчик поздних отмен (для поздней отмены по абонементу)
	LateCancellations int `json:"lateCancellations,omitempty"`
	// BlockEndDate конец блокировки, если отмена стала третьей поздней
	BlockEndDate *time.Time `json:"blockEndDate,omitempty"`

	// PromotedBookingID бронирование, продвинутое из листа ожидания
	PromotedBookingID *int64 `json:"promotedBookingId,omitempty"`
}
