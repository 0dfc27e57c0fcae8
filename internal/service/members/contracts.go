package members

import (
	"context"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

// MemberRepository интерфейс репозитория участников
type MemberRepository interface {
	GetPenalty(ctx context.Context, memberID int64) (*domain.PenaltyRecord, error)
	ResetPenalty(ctx context.Context, memberID int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
