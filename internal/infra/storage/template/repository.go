package template

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

const table = "class_templates"

var columns = []string{
	"id",
	"name",
	"coach_name",
	"day_of_week",
	"start_time",
	"duration_minutes",
	"capacity",
	"required_tags",
	"location",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с шаблонами расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория шаблонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActive получает все активные шаблоны расписания
func (r *Repository) GetActive(ctx context.Context) ([]*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("day_of_week ASC, start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActive - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanTemplates(rows)
}

// GetByID получает шаблон по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	tmpl, err := r.scanTemplate(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan template: %v", ErrScanRow, err)
	}

	return tmpl, nil
}

// Update обновляет шаблон расписания (административная правка)
// Сгенерированные ранее экземпляры сохраняют детерминированные ID,
// поскольку ID зависит только от (template_id, date)
func (r *Repository) Update(ctx context.Context, tmpl *domain.ScheduleTemplate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("name", tmpl.Name).
		Set("coach_name", tmpl.CoachName).
		Set("day_of_week", int(tmpl.DayOfWeek)).
		Set("start_time", tmpl.StartTime).
		Set("duration_minutes", tmpl.DurationMinutes).
		Set("capacity", tmpl.Capacity).
		Set("required_tags", pq.StringArray(tmpl.RequiredTags)).
		Set("location", tmpl.Location).
		Set("is_active", tmpl.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": tmpl.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanTemplate(row rowScanner) (*domain.ScheduleTemplate, error) {
	var (
		tmpl       domain.ScheduleTemplate
		dayOfWeek  int
		tags       pq.StringArray
		createdAt  sql.NullTime
		updatedAt  sql.NullTime
	)

	err := row.Scan(
		&tmpl.ID,
		&tmpl.Name,
		&tmpl.CoachName,
		&dayOfWeek,
		&tmpl.StartTime,
		&tmpl.DurationMinutes,
		&tmpl.Capacity,
		&tags,
		&tmpl.Location,
		&tmpl.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tmpl.DayOfWeek = time.Weekday(dayOfWeek)
	tmpl.RequiredTags = tags
	tmpl.CreatedAt = createdAt.Time
	tmpl.UpdatedAt = updatedAt.Time

	return &tmpl, nil
}

func (r *Repository) scanTemplates(rows *sql.Rows) ([]*domain.ScheduleTemplate, error) {
	templates := make([]*domain.ScheduleTemplate, 0)

	for rows.Next() {
		tmpl, err := r.scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanTemplates - scan row: %v", ErrScanRow, err)
		}
		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanTemplates - rows error: %v", ErrScanRow, err)
	}

	return templates, nil
}
