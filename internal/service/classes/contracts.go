package classes

import (
	"context"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// TemplateRepository интерфейс репозитория шаблонов расписания
type TemplateRepository interface {
	GetActive(ctx context.Context) ([]*domain.ScheduleTemplate, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Booking, error)
}

// EntitlementRepository интерфейс репозитория entitlement
type EntitlementRepository interface {
	GetCurrentByMember(ctx context.Context, memberID int64) (*domain.Entitlement, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
