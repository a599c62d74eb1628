package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	alarms "github.com/mhdr/Monitoring2025-sub018/internal/alarms/domain"
)

// ActiveRepository is a Postgres repository for active alarms.
// A unique index on alarm_id enforces at most one active row per definition.
type ActiveRepository struct {
	db *sql.DB
}

// NewActiveRepository constructs a repository.
func NewActiveRepository(db *sql.DB) *ActiveRepository {
	return &ActiveRepository{db: db}
}

// GetByAlarmID loads the active instance for an alarm id. Missing rows return nil.
func (r *ActiveRepository) GetByAlarmID(ctx context.Context, alarmID string) (*alarms.Active, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("active alarm repo: nil db")
	}
	if alarmID == "" {
		return nil, errors.New("active alarm repo: empty alarm id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, alarm_id, item_id, message, message_fa, activated_at, acknowledged, acked_at
FROM active_alarms
WHERE alarm_id = $1
LIMIT 1`, alarmID)
	return scanActive(row)
}

// Create inserts an active alarm.
func (r *ActiveRepository) Create(ctx context.Context, active *alarms.Active) error {
	if r == nil || r.db == nil {
		return errors.New("active alarm repo: nil db")
	}
	if active == nil {
		return errors.New("active alarm repo: nil alarm")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO active_alarms (
	id, alarm_id, item_id, message, message_fa, activated_at, acknowledged, acked_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)`, active.ID, active.AlarmID, active.ItemID, active.Message, active.MessageFa,
		active.ActivatedAt.UTC(), active.Acknowledged, nullTime(active.AckedAt))
	return err
}

// DeleteByAlarmID removes the active instance for an alarm id.
func (r *ActiveRepository) DeleteByAlarmID(ctx context.Context, alarmID string) error {
	if r == nil || r.db == nil {
		return errors.New("active alarm repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
DELETE FROM active_alarms WHERE alarm_id = $1`, alarmID)
	return err
}

// MarkAcknowledged acknowledges the active instance.
func (r *ActiveRepository) MarkAcknowledged(ctx context.Context, alarmID string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("active alarm repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE active_alarms SET acknowledged = TRUE, acked_at = $2
WHERE alarm_id = $1`, alarmID, at.UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alarms.ErrNotFound
	}
	return nil
}

// List returns all active alarms ordered by activation time.
func (r *ActiveRepository) List(ctx context.Context) ([]alarms.Active, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("active alarm repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, alarm_id, item_id, message, message_fa, activated_at, acknowledged, acked_at
FROM active_alarms
ORDER BY activated_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []alarms.Active
	for rows.Next() {
		active, err := scanActive(rows)
		if err != nil {
			return nil, err
		}
		if active != nil {
			result = append(result, *active)
		}
	}
	return result, rows.Err()
}

func scanActive(row rowScanner) (*alarms.Active, error) {
	var active alarms.Active
	var ackedAt sql.NullTime
	if err := row.Scan(
		&active.ID,
		&active.AlarmID,
		&active.ItemID,
		&active.Message,
		&active.MessageFa,
		&active.ActivatedAt,
		&active.Acknowledged,
		&ackedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	active.ActivatedAt = active.ActivatedAt.UTC()
	if ackedAt.Valid {
		active.AckedAt = ackedAt.Time.UTC()
	}
	return &active, nil
}

func nullTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value.UTC(), Valid: true}
}
