package members

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	memberRepo "github.com/m04kA/GYM-ClassService/internal/infra/storage/member"
)

// PenaltyResponse штрафная запись участника
type PenaltyResponse struct {
	MemberID          int64      `json:"memberId"`
	LateCancellations int        `json:"lateCancellations"`
	BlockEndDate      *time.Time `json:"blockEndDate,omitempty"`
	IsBlocked         bool       `json:"isBlocked"`
}

// Service сервис для работы со штрафным учётом участников
type Service struct {
	memberRepo MemberRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса участников
func NewService(memberRepo MemberRepository, logger Logger) *Service {
	return &Service{
		memberRepo: memberRepo,
		logger:     logger,
	}
}

// GetPenalty получает штрафную запись участника
// Участник видит только свою запись, персонал - любые
func (s *Service) GetPenalty(ctx context.Context, memberID, actorID int64, actorRole domain.Role) (*PenaltyResponse, error) {
	if memberID != actorID && !actorRole.IsStaff() {
		s.logger.Warn("GetPenalty: access denied for actor=%d to member=%d", actorID, memberID)
		return nil, ErrAccessDenied
	}

	penalty, err := s.memberRepo.GetPenalty(ctx, memberID)
	if err != nil {
		if errors.Is(err, memberRepo.ErrMemberNotFound) {
			s.logger.Warn("GetPenalty: member=%d not found", memberID)
			return nil, ErrMemberNotFound
		}
		s.logger.Error("GetPenalty: repository error for member=%d: %v", memberID, err)
		return nil, fmt.Errorf("%w: GetPenalty - repository error: %v", ErrInternal, err)
	}

	return &PenaltyResponse{
		MemberID:          penalty.MemberID,
		LateCancellations: penalty.LateCancellations,
		BlockEndDate:      penalty.BlockEndDate,
		IsBlocked:         penalty.IsBlocked(time.Now()),
	}, nil
}

// ResetPenalty сбрасывает счётчик поздних отмен и снимает блокировку
// Доступно только персоналу
func (s *Service) ResetPenalty(ctx context.Context, memberID, actorID int64, actorRole domain.Role) error {
	s.logger.Info("ResetPenalty: resetting penalty for member=%d by actor=%d", memberID, actorID)

	if !actorRole.IsStaff() {
		s.logger.Warn("ResetPenalty: access denied for actor=%d", actorID)
		return ErrAccessDenied
	}

	if err := s.memberRepo.ResetPenalty(ctx, memberID); err != nil {
		if errors.Is(err, memberRepo.ErrMemberNotFound) {
			s.logger.Warn("ResetPenalty: member=%d not found", memberID)
			return ErrMemberNotFound
		}
		s.logger.Error("ResetPenalty: repository error for member=%d: %v", memberID, err)
		return fmt.Errorf("%w: ResetPenalty - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ResetPenalty: penalty reset for member=%d", memberID)
	return nil
}
