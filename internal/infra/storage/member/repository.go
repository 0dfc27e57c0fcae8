package member

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	"github.com/m04kA/GYM-ClassService/pkg/dbmetrics"
	"github.com/m04kA/GYM-ClassService/pkg/psqlbuilder"
)

const table = "members"

// Repository репозиторий для работы со штрафным учётом участников
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория участников
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetPenalty получает штрафную запись участника
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetPenalty(ctx context.Context, memberID int64) (*domain.PenaltyRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "late_cancellations", "block_end_date").
		From(table).
		Where(squirrel.Eq{"id": memberID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetPenalty - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.PenaltyRecord
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.MemberID,
		&p.LateCancellations,
		&p.BlockEndDate,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPenalty - scan penalty record: %v", ErrScanRow, err)
	}

	return &p, nil
}

// RegisterLateCancellation увеличивает счётчик поздних отмен участника.
// Когда счётчик достигает лимита, в том же операторе ставится временная
// блокировка; счётчик при этом не обнуляется - его сбрасывает только
// персонал через ResetPenalty. Пока блокировка действует, счётчик не
// двигается - повторные поздние отмены не продлевают её.
func (r *Repository) RegisterLateCancellation(ctx context.Context, memberID int64, limit, blockDays int) (*domain.PenaltyRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("late_cancellations", squirrel.Expr("late_cancellations + 1")).
		Set("block_end_date", squirrel.Expr(
			"CASE WHEN late_cancellations + 1 >= ? THEN NOW() + make_interval(days => ?) ELSE block_end_date END",
			limit, blockDays,
		)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": memberID}).
		Where(squirrel.Or{
			squirrel.Eq{"block_end_date": nil},
			squirrel.Expr("block_end_date <= NOW()"),
		}).
		Suffix("RETURNING late_cancellations, block_end_date").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: RegisterLateCancellation - build update query: %v", ErrBuildQuery, err)
	}

	p := domain.PenaltyRecord{MemberID: memberID}
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.LateCancellations,
		&p.BlockEndDate,
	)
	if err == sql.ErrNoRows {
		// Либо участника нет, либо он уже заблокирован
		if _, getErr := r.GetPenalty(ctx, memberID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrMemberBlocked
	}
	if err != nil {
		return nil, fmt.Errorf("%w: RegisterLateCancellation - execute update: %v", ErrExecQuery, err)
	}

	return &p, nil
}

// ResetPenalty сбрасывает счётчик поздних отмен и снимает блокировку
func (r *Repository) ResetPenalty(ctx context.Context, memberID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("late_cancellations", 0).
		Set("block_end_date", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": memberID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ResetPenalty - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ResetPenalty - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ResetPenalty - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}
