package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	control "github.com/mhdr/Monitoring2025-sub018/internal/control/domain"
)

// ConfigRepository is a Postgres repository for loop configurations.
type ConfigRepository struct {
	db *sql.DB
}

// NewConfigRepository constructs a repository.
func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// ListEnabled returns enabled loop configurations ordered by id.
func (r *ConfigRepository) ListEnabled(ctx context.Context) ([]control.Config, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("pid config repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, kp, ki, kd, derivative_filter, integral_min, integral_max,
	output_min, output_max, max_slew_per_tick, digital_output,
	hysteresis_high, hysteresis_low, cascade_level, parent_id,
	pv_item_id, setpoint_item_id, setpoint, output_item_id, enabled
FROM pid_configs
WHERE enabled = TRUE
ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []control.Config
	for rows.Next() {
		var cfg control.Config
		var parentID, setpointItemID sql.NullString
		if err := rows.Scan(
			&cfg.ID,
			&cfg.Kp,
			&cfg.Ki,
			&cfg.Kd,
			&cfg.DerivativeFilter,
			&cfg.IntegralMin,
			&cfg.IntegralMax,
			&cfg.OutputMin,
			&cfg.OutputMax,
			&cfg.MaxSlewPerTick,
			&cfg.DigitalOutput,
			&cfg.HysteresisHigh,
			&cfg.HysteresisLow,
			&cfg.CascadeLevel,
			&parentID,
			&cfg.PVItemID,
			&setpointItemID,
			&cfg.Setpoint,
			&cfg.OutputItemID,
			&cfg.Enabled,
		); err != nil {
			return nil, err
		}
		if parentID.Valid {
			cfg.ParentID = parentID.String
		}
		if setpointItemID.Valid {
			cfg.SetpointItemID = setpointItemID.String
		}
		result = append(result, cfg)
	}
	return result, rows.Err()
}

// StateRepository persists loop runtime state keyed by loop id.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository constructs a repository.
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get loads the persisted state for a loop. Missing rows return nil.
func (r *StateRepository) Get(ctx context.Context, loopID string) (*control.State, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("pid state repo: nil db")
	}
	if loopID == "" {
		return nil, errors.New("pid state repo: empty loop id")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT loop_id, integral, prev_pv, filtered_derivative, prev_output,
	digital_output_state, last_update, config_hash, initialized
FROM pid_states
WHERE loop_id = $1`, loopID)

	var state control.State
	if err := row.Scan(
		&state.LoopID,
		&state.Integral,
		&state.PrevPV,
		&state.FilteredDerivative,
		&state.PrevOutput,
		&state.DigitalOutputState,
		&state.LastUpdate,
		&state.ConfigHash,
		&state.Initialized,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	state.LastUpdate = state.LastUpdate.UTC()
	return &state, nil
}

// Upsert stores the state for a loop.
func (r *StateRepository) Upsert(ctx context.Context, state *control.State) error {
	if r == nil || r.db == nil {
		return errors.New("pid state repo: nil db")
	}
	if state == nil {
		return errors.New("pid state repo: nil state")
	}
	if state.LastUpdate.IsZero() {
		state.LastUpdate = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO pid_states (
	loop_id, integral, prev_pv, filtered_derivative, prev_output,
	digital_output_state, last_update, config_hash, initialized
) VALUES (
	$1, $2, $3, $4, $5,
	$6, $7, $8, $9
)
ON CONFLICT (loop_id)
DO UPDATE SET
	integral = EXCLUDED.integral,
	prev_pv = EXCLUDED.prev_pv,
	filtered_derivative = EXCLUDED.filtered_derivative,
	prev_output = EXCLUDED.prev_output,
	digital_output_state = EXCLUDED.digital_output_state,
	last_update = EXCLUDED.last_update,
	config_hash = EXCLUDED.config_hash,
	initialized = EXCLUDED.initialized`,
		state.LoopID, state.Integral, state.PrevPV, state.FilteredDerivative, state.PrevOutput,
		state.DigitalOutputState, state.LastUpdate.UTC(), state.ConfigHash, state.Initialized)
	return err
}
