package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	alarms "github.com/mhdr/Monitoring2025-sub018/internal/alarms/domain"
)

// StateRepository stores debounce pending states.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository constructs a repository.
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get fetches the pending state for an alarm id. Missing rows return nil.
func (r *StateRepository) Get(ctx context.Context, alarmID string) (*alarms.PendingState, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alarm state repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT alarm_id, pending_since, last_value, updated_at
FROM alarm_pending_states
WHERE alarm_id = $1`, alarmID)

	var state alarms.PendingState
	if err := row.Scan(
		&state.AlarmID,
		&state.PendingSince,
		&state.LastValue,
		&state.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	state.PendingSince = state.PendingSince.UTC()
	state.UpdatedAt = state.UpdatedAt.UTC()
	return &state, nil
}

// Upsert inserts or updates the pending state.
func (r *StateRepository) Upsert(ctx context.Context, state *alarms.PendingState) error {
	if r == nil || r.db == nil {
		return errors.New("alarm state repo: nil db")
	}
	if state == nil {
		return errors.New("alarm state repo: nil state")
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO alarm_pending_states (
	alarm_id, pending_since, last_value, updated_at
) VALUES (
	$1, $2, $3, $4
)
ON CONFLICT (alarm_id)
DO UPDATE SET
	pending_since = EXCLUDED.pending_since,
	last_value = EXCLUDED.last_value,
	updated_at = EXCLUDED.updated_at`,
		state.AlarmID, state.PendingSince.UTC(), state.LastValue, state.UpdatedAt.UTC())
	return err
}

// Clear removes the pending state.
func (r *StateRepository) Clear(ctx context.Context, alarmID string) error {
	if r == nil || r.db == nil {
		return errors.New("alarm state repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
DELETE FROM alarm_pending_states WHERE alarm_id = $1`, alarmID)
	return err
}
