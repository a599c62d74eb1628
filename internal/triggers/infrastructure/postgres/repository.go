package postgres

import (
	"context"
	"database/sql"
	"errors"

	triggers "github.com/mhdr/Monitoring2025-sub018/internal/triggers/domain"
)

// Repository is a Postgres repository for triggers and scheduled actions.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListEnabled returns triggers that are not disabled, ordered by id.
func (r *Repository) ListEnabled(ctx context.Context) ([]triggers.Trigger, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("trigger repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, start_expr, end_expr, is_disabled, created_at, updated_at
FROM triggers
WHERE is_disabled = FALSE
ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []triggers.Trigger
	for rows.Next() {
		var trigger triggers.Trigger
		if err := rows.Scan(
			&trigger.ID,
			&trigger.StartExpr,
			&trigger.EndExpr,
			&trigger.IsDisabled,
			&trigger.CreatedAt,
			&trigger.UpdatedAt,
		); err != nil {
			return nil, err
		}
		trigger.CreatedAt = trigger.CreatedAt.UTC()
		trigger.UpdatedAt = trigger.UpdatedAt.UTC()
		result = append(result, trigger)
	}
	return result, rows.Err()
}

// ListActions returns the actions bound to a trigger, ordered by id.
func (r *Repository) ListActions(ctx context.Context, triggerID string) ([]triggers.ScheduledAction, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("trigger repo: nil db")
	}
	if triggerID == "" {
		return nil, errors.New("trigger repo: empty trigger id")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, trigger_id, item_id, value
FROM scheduled_actions
WHERE trigger_id = $1
ORDER BY id ASC`, triggerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []triggers.ScheduledAction
	for rows.Next() {
		var action triggers.ScheduledAction
		if err := rows.Scan(&action.ID, &action.TriggerID, &action.ItemID, &action.Value); err != nil {
			return nil, err
		}
		result = append(result, action)
	}
	return result, rows.Err()
}
