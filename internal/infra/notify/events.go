package notify

import "time"

// EventType тип события жизненного цикла бронирования
type EventType string

const (
	// EventBookingCreated бронирование создано (confirmed или waiting_list)
	EventBookingCreated EventType = "booking_created"
	// EventBookingCancelled бронирование отменено участником или персоналом
	EventBookingCancelled EventType = "booking_cancelled"
	// EventWaitlistPromoted участник продвинут из листа ожидания
	EventWaitlistPromoted EventType = "waitlist_promoted"
	// EventEntitlementDepleted списана последняя единица разового билета
	EventEntitlementDepleted EventType = "entitlement_depleted"
)

// Event событие для публикации во внешний канал уведомлений.
// Потребители (push-рассылка, email) живут за пределами сервиса.
type Event struct {
	Type       EventType `json:"type"`
	MemberID   int64     `json:"member_id"`
	BookingID  int64     `json:"booking_id,omitempty"`
	InstanceID string    `json:"instance_id,omitempty"`
	ClassName  string    `json:"class_name,omitempty"`
	ClassDate  string    `json:"class_date,omitempty"`
	StartTime  string    `json:"start_time,omitempty"`
	Status     string    `json:"status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
