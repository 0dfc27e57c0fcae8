package switch_booking

import (
	"context"

	usecase "github.com/m04kA/GYM-ClassService/internal/usecase/switch_booking"
)

type SwitchBookingUseCase interface {
	Execute(ctx context.Context, req *usecase.Request) (*usecase.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
