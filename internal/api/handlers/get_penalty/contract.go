package get_penalty

import (
	"context"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	"github.com/m04kA/GYM-ClassService/internal/service/members"
)

type MemberService interface {
	GetPenalty(ctx context.Context, memberID, actorID int64, actorRole domain.Role) (*members.PenaltyResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
