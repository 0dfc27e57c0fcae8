package entitlement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/GYM-ClassService/internal/domain"
	"github.com/m04kA/GYM-ClassService/pkg/dbmetrics"
	"github.com/m04kA/GYM-ClassService/pkg/psqlbuilder"
)

const table = "entitlements"

var columns = []string{
	"id",
	"member_id",
	"kind",
	"plan_name",
	"tier",
	"status",
	"classes_per_period",
	"classes_used",
	"period_start",
	"period_end",
	"total_sessions",
	"sessions_used",
	"expires_at",
	"tags",
	"created_at",
	"updated_at",
}

// Порядок предпочтения при выборе текущей записи участника:
// сначала активная, затем замороженная, затем исчерпанная
const statusPriority = "CASE status " +
	"WHEN 'active' THEN 0 " +
	"WHEN 'frozen' THEN 1 " +
	"WHEN 'depleted' THEN 2 " +
	"WHEN 'expired' THEN 3 " +
	"ELSE 4 END"

// Repository репозиторий для работы с абонементами и разовыми билетами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория entitlement
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetCurrentByMember получает текущую запись entitlement участника.
// Отменённые записи не учитываются. При нескольких записях приоритет
// у активной - проверки правомерности бронирования смотрят именно на неё.
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetCurrentByMember(ctx context.Context, memberID int64) (*domain.Entitlement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"member_id": memberID}).
		Where(squirrel.NotEq{"status": string(domain.EntitlementCancelled)}).
		OrderBy(statusPriority + ", created_at DESC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCurrentByMember - build select query: %v", ErrBuildQuery, err)
	}

	e, err := scanEntitlement(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEntitlementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCurrentByMember - scan entitlement: %v", ErrScanRow, err)
	}

	return e, nil
}

// GetByID получает запись entitlement по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Entitlement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	e, err := scanEntitlement(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEntitlementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan entitlement: %v", ErrScanRow, err)
	}

	return e, nil
}

// Consume атомарно списывает одну единицу с записи entitlement.
// Вся проверка (статус active, лимит не исчерпан, срок не истёк) и
// инкремент выполняются ОДНИМ условным UPDATE - параллельные списания
// не могут увести счётчик за лимит. Для разовых билетов последняя
// единица переводит запись в depleted в том же операторе.
func (r *Repository) Consume(ctx context.Context, e *domain.Entitlement, now time.Time) (*ConsumeResult, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	today := startOfDay(now)

	updateBuilder := psqlbuilder.Update(table).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     e.ID,
			"status": string(domain.EntitlementActive),
		}).
		Suffix("RETURNING status")

	if e.Kind == domain.KindTicket {
		updateBuilder = updateBuilder.
			Set("sessions_used", squirrel.Expr("sessions_used + 1")).
			Set("status", squirrel.Expr("CASE WHEN sessions_used + 1 >= total_sessions THEN 'depleted' ELSE status END")).
			Where(squirrel.Expr("sessions_used < total_sessions")).
			Where(squirrel.Or{
				squirrel.Eq{"expires_at": nil},
				squirrel.GtOrEq{"expires_at": today},
			})
	} else {
		updateBuilder = updateBuilder.
			Set("classes_used", squirrel.Expr("classes_used + 1")).
			Where(squirrel.Expr("classes_used < classes_per_period")).
			Where(squirrel.Or{
				squirrel.Eq{"period_end": nil},
				squirrel.GtOrEq{"period_end": today},
			})
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Consume - build update query: %v", ErrBuildQuery, err)
	}

	var status string
	err = executor.QueryRowContext(ctx, query, args...).Scan(&status)
	if err == sql.ErrNoRows {
		return &ConsumeResult{Outcome: ConsumeInsufficient}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Consume - execute update: %v", ErrExecQuery, err)
	}

	return &ConsumeResult{Outcome: ConsumeOK, Status: status}, nil
}

// Refund возвращает одну списанную единицу на запись entitlement.
// Используется при своевременной отмене бронирования. Разовый билет,
// исчерпанный последним списанием, возвращается в active.
func (r *Repository) Refund(ctx context.Context, e *domain.Entitlement) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(table).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": e.ID})

	if e.Kind == domain.KindTicket {
		updateBuilder = updateBuilder.
			Set("sessions_used", squirrel.Expr("GREATEST(sessions_used - 1, 0)")).
			Set("status", squirrel.Expr("CASE WHEN status = 'depleted' THEN 'active' ELSE status END"))
	} else {
		updateBuilder = updateBuilder.
			Set("classes_used", squirrel.Expr("GREATEST(classes_used - 1, 0)"))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Refund - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Refund - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Refund - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEntitlementNotFound
	}

	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntitlement(row rowScanner) (*domain.Entitlement, error) {
	var (
		e         domain.Entitlement
		tags      pq.StringArray
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&e.ID,
		&e.MemberID,
		&e.Kind,
		&e.PlanName,
		&e.Tier,
		&e.Status,
		&e.ClassesPerPeriod,
		&e.ClassesUsed,
		&e.PeriodStart,
		&e.PeriodEnd,
		&e.TotalSessions,
		&e.SessionsUsed,
		&e.ExpiresAt,
		&tags,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Tags = tags
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return &e, nil
}
