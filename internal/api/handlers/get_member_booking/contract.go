package get_member_booking

import (
	"context"

	"github.com/m04kA/GYM-ClassService/internal/service/bookings/models"
)

type BookingService interface {
	GetMemberBooking(ctx context.Context, memberID int64, instanceID string) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
