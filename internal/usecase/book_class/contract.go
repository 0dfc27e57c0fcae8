package book_class

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
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetActiveByMemberAndKey(ctx context.Context, memberID int64, key domain.ClassKey) (*domain.Booking, error)
	GetByClassKey(ctx context.Context, key domain.ClassKey) ([]*domain.Booking, error)
}

// EntitlementRepository интерфейс репозитория entitlement
type EntitlementRepository interface {
	GetCurrentByMember(ctx context.Context, memberID int64) (*domain.Entitlement, error)
	Consume(ctx context.Context, e *domain.Entitlement, now time.Time) (*entitlementRepo.ConsumeResult, error)
}

// MemberRepository интерфейс репозитория участников
type MemberRepository interface {
	GetPenalty(ctx context.Context, memberID int64) (*domain.PenaltyRecord, error)
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
