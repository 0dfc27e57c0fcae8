package book_class

import (
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// Request запрос на запись на занятие
// MemberID - для кого создаётся бронирование, ActorID/ActorRole - кто его
// создаёт. Персонал может записывать других участников в обход проверок.
type Request struct {
	MemberID   int64
	ActorID    int64
	ActorRole  domain.Role
	InstanceID string
	// ForceWaitlist принудительная постановка в лист ожидания (только персонал)
	ForceWaitlist bool
}

// Response созданное бронирование
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
}
