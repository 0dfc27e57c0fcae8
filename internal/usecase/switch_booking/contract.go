package switch_booking

import (
	"context"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	"github.com/m04kA/GYM-ClassService/internal/infra/notify"
	entitlementRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/entitlement"
)

// ScheduleResolver интерфейс сервиса расписания
type ScheduleResolver interface {
	ResolveInstance(ctx context.Context, instanceID string) (*domain.ClassInstance, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string) error
	GetActiveByMemberAndKey(ctx context.Context, memberID int64, key domain.ClassKey) (*domain.Booking, error)
	GetByClassKey(ctx context.Context, key domain.ClassKey) ([]*domain.Booking, error)
	GetWaitlist(ctx context.Context, key domain.ClassKey) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// TemplateRepository интерфейс репозитория шаблонов расписания
type TemplateRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ScheduleTemplate, error)
}

// EntitlementRepository интерфейс репозитория entitlement
type EntitlementRepository interface {
	GetCurrentByMember(ctx context.Context, memberID int64) (*domain.Entitlement, error)
	Consume(ctx context.Context, e *domain.Entitlement, now time.Time) (*entitlementRepo.ConsumeResult, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier интерфейс шлюза уведомлений
type Notifier interface {
	Publish(ctx context.Context, event notify.Event)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
