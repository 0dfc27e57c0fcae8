package reset_penalty

import (
	"context"

	"github.com/m04kA/GYM-ClassService/internal/domain"
)

type MemberService interface {
	ResetPenalty(ctx context.Context, memberID, actorID int64, actorRole domain.Role) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
