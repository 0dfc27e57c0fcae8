package classes

import (
	"sort"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// Expand разворачивает еженедельные шаблоны в конкретные занятия окна.
// Чистая функция: одно занятие на каждую пару (активный шаблон, подходящая
// дата), детерминированные ID, ничего не сохраняется. Повторное
// разворачивание пересекающихся окон даёт те же занятия.
func Expand(templates []*domain.ScheduleTemplate, windowStart time.Time, windowDays int, loc *time.Location) []domain.ClassInstance {
	instances := make([]domain.ClassInstance, 0)

	y, m, d := windowStart.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)

	for day := 0; day < windowDays; day++ {
		date := start.AddDate(0, 0, day)

		for _, tmpl := range templates {
			if !tmpl.IsActive || tmpl.DayOfWeek != date.Weekday() {
				continue
			}

			key := domain.NewClassKey(tmpl.ID, date)
			instances = append(instances, domain.ClassInstance{
				ID:              key.InstanceID(),
				Key:             key,
				Name:            tmpl.Name,
				CoachName:       tmpl.CoachName,
				StartTime:       tmpl.StartTime,
				DurationMinutes: tmpl.DurationMinutes,
				Capacity:        tmpl.Capacity,
				RequiredTags:    tmpl.RequiredTags,
				Location:        tmpl.Location,
			})
		}
	}

	sort.SliceStable(instances, func(i, j int) bool {
		if !instances[i].Key.ClassDate.Equal(instances[j].Key.ClassDate) {
			return instances[i].Key.ClassDate.Before(instances[j].Key.ClassDate)
		}
		if instances[i].StartTime != instances[j].StartTime {
			return instances[i].StartTime.IsBefore(instances[j].StartTime)
		}
		return instances[i].Key.TemplateID < instances[j].Key.TemplateID
	})

	return instances
}
