package models

import (
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// Request модели

// GetInstancesRequest запрос на получение окна расписания
// Либо weekOffset (0 - текущая неделя, 1 - следующая), либо явное окно from/days
type GetInstancesRequest struct {
	MemberID   int64
	WeekOffset *int
	From       *time.Time
	Days       *int
}

// Response модели

// InstanceResponse занятие с живыми данными о записи
type InstanceResponse struct {
	InstanceID       string   `json:"instanceId"`
	TemplateID       int64    `json:"templateId"`
	ClassDate        string   `json:"classDate"`
	Name             string   `json:"name"`
	CoachName        string   `json:"coachName"`
	StartTime        string   `json:"startTime"`
	DurationMinutes  int      `json:"durationMinutes"`
	Capacity         int      `json:"capacity"`
	RequiredTags     []string `json:"requiredTags"`
	Location         string   `json:"location,omitempty"`
	EnrolledCount    int      `json:"enrolledCount"`
	WaitlistCount    int      `json:"waitlistCount"`
	IsFull           bool     `json:"isFull"`
	RegistrationOpen bool     `json:"registrationOpen"`
}

// InstanceListResponse окно расписания
type InstanceListResponse struct {
	Instances []InstanceResponse `json:"instances"`
	// NextWeekUnlockAt момент открытия записи на следующую неделю
	NextWeekUnlockAt time.Time `json:"nextWeekUnlockAt"`
}

// FromDomainInstance конвертирует доменное занятие в response модель
func FromDomainInstance(inst *domain.AnnotatedInstance, registrationOpen bool) InstanceResponse {
	tags := inst.RequiredTags
	if tags == nil {
		tags = make([]string, 0)
	}

	return InstanceResponse{
		InstanceID:       inst.ID,
		TemplateID:       inst.Key.TemplateID,
		ClassDate:        inst.Key.DateKey(),
		Name:             inst.Name,
		CoachName:        inst.CoachName,
		StartTime:        inst.StartTime.String(),
		DurationMinutes:  inst.DurationMinutes,
		Capacity:         inst.Capacity,
		RequiredTags:     tags,
		Location:         inst.Location,
		EnrolledCount:    inst.EnrolledCount,
		WaitlistCount:    inst.WaitlistCount,
		IsFull:           inst.IsFull,
		RegistrationOpen: registrationOpen,
	}
}
