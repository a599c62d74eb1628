package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	rate "github.com/mhdr/Monitoring2025-sub018/internal/rate/domain"
)

// ConfigRepository is a Postgres repository for window configurations.
type ConfigRepository struct {
	db *sql.DB
}

// NewConfigRepository constructs a repository.
func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// ListEnabled returns enabled window configurations ordered by id.
func (r *ConfigRepository) ListEnabled(ctx context.Context) ([]rate.WindowConfig, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("rate config repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, item_id, duration_seconds, enabled
FROM rate_windows
WHERE enabled = TRUE
ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []rate.WindowConfig
	for rows.Next() {
		var cfg rate.WindowConfig
		var seconds int64
		if err := rows.Scan(&cfg.ID, &cfg.ItemID, &seconds, &cfg.Enabled); err != nil {
			return nil, err
		}
		cfg.Duration = time.Duration(seconds) * time.Second
		result = append(result, cfg)
	}
	return result, rows.Err()
}

// SampleRepository persists window samples ordered by timestamp.
type SampleRepository struct {
	db *sql.DB
}

// NewSampleRepository constructs a repository.
func NewSampleRepository(db *sql.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

// Append inserts one sample.
func (r *SampleRepository) Append(ctx context.Context, windowID string, sample rate.Sample) error {
	if r == nil || r.db == nil {
		return errors.New("rate sample repo: nil db")
	}
	if windowID == "" {
		return errors.New("rate sample repo: empty window id")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO rate_samples (window_id, sampled_at, value)
VALUES ($1, $2, $3)`, windowID, sample.Timestamp.UTC(), sample.Value)
	return err
}

// ListSince returns samples at or after since, ordered by timestamp.
func (r *SampleRepository) ListSince(ctx context.Context, windowID string, since time.Time) ([]rate.Sample, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("rate sample repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT sampled_at, value
FROM rate_samples
WHERE window_id = $1 AND sampled_at >= $2
ORDER BY sampled_at ASC`, windowID, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []rate.Sample
	for rows.Next() {
		var sample rate.Sample
		if err := rows.Scan(&sample.Timestamp, &sample.Value); err != nil {
			return nil, err
		}
		sample.Timestamp = sample.Timestamp.UTC()
		result = append(result, sample)
	}
	return result, rows.Err()
}

// DeleteBefore prunes samples older than the cutoff.
func (r *SampleRepository) DeleteBefore(ctx context.Context, windowID string, cutoff time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("rate sample repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
DELETE FROM rate_samples WHERE window_id = $1 AND sampled_at < $2`, windowID, cutoff.UTC())
	return err
}
