package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	alarms "github.com/mhdr/Monitoring2025-sub018/internal/alarms/domain"
)

// HistoryRepository is an append-only Postgres log of alarm activations.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository constructs a repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append adds a history entry.
func (r *HistoryRepository) Append(ctx context.Context, entry *alarms.HistoryEntry) error {
	if r == nil || r.db == nil {
		return errors.New("alarm history repo: nil db")
	}
	if entry == nil {
		return errors.New("alarm history repo: nil entry")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO alarm_history (
	id, item_id, alarm_id, occurred_at, message, message_fa
) VALUES (
	$1, $2, $3, $4, $5, $6
)`, entry.ID, entry.ItemID, entry.AlarmID, entry.Time.UTC(), entry.Message, entry.MessageFa)
	return err
}

// ListRange returns entries in [from, to] ordered by time.
func (r *HistoryRepository) ListRange(ctx context.Context, from, to time.Time) ([]alarms.HistoryEntry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alarm history repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, item_id, alarm_id, occurred_at, message, message_fa
FROM alarm_history
WHERE occurred_at >= $1 AND occurred_at <= $2
ORDER BY occurred_at ASC`, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []alarms.HistoryEntry
	for rows.Next() {
		var entry alarms.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ItemID,
			&entry.AlarmID,
			&entry.Time,
			&entry.Message,
			&entry.MessageFa,
		); err != nil {
			return nil, err
		}
		entry.Time = entry.Time.UTC()
		result = append(result, entry)
	}
	return result, rows.Err()
}
