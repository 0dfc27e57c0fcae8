package classes

import (
	"sort"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

type aggKey struct {
	templateID int64
	dateKey    string
}

// Annotate обогащает занятия живыми данными о записи.
// Чистая функция: бронирования сопоставляются занятиям ТОЛЬКО по
// каноническому ключу (шаблон, дата). Записанными считаются статусы
// confirmed/completed/no_show/late, лист ожидания упорядочен FIFO
// по времени создания (при равенстве - по ID).
func Annotate(instances []domain.ClassInstance, bookings []*domain.Booking) []domain.AnnotatedInstance {
	type agg struct {
		enrolled int
		waitlist []*domain.Booking
	}

	byKey := make(map[aggKey]*agg)
	for _, b := range bookings {
		key := aggKey{templateID: b.TemplateID, dateKey: b.Key().DateKey()}

		a, ok := byKey[key]
		if !ok {
			a = &agg{}
			byKey[key] = a
		}

		switch {
		case b.CountsAsEnrolled():
			a.enrolled++
		case b.IsWaitlisted():
			a.waitlist = append(a.waitlist, b)
		}
	}

	annotated := make([]domain.AnnotatedInstance, 0, len(instances))
	for _, inst := range instances {
		a := byKey[aggKey{templateID: inst.Key.TemplateID, dateKey: inst.Key.DateKey()}]

		item := domain.AnnotatedInstance{
			ClassInstance: inst,
			WaitlistOrder: make([]int64, 0),
		}

		if a != nil {
			sort.SliceStable(a.waitlist, func(i, j int) bool {
				if !a.waitlist[i].CreatedAt.Equal(a.waitlist[j].CreatedAt) {
					return a.waitlist[i].CreatedAt.Before(a.waitlist[j].CreatedAt)
				}
				return a.waitlist[i].ID < a.waitlist[j].ID
			})

			item.EnrolledCount = a.enrolled
			item.WaitlistCount = len(a.waitlist)
			for _, b := range a.waitlist {
				item.WaitlistOrder = append(item.WaitlistOrder, b.ID)
			}
		}

		item.IsFull = item.EnrolledCount >= inst.Capacity
		annotated = append(annotated, item)
	}

	return annotated
}
