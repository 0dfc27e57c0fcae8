package bookings

import (
	"context"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetActiveByMemberAndInstance(ctx context.Context, memberID int64, instanceID string) (*domain.Booking, error)
	GetByMemberID(ctx context.Context, memberID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	SetAttendance(ctx context.Context, id int64, status domain.BookingStatus, attendedAt *time.Time) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
