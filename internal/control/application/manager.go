package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	control "github.com/mhdr/Monitoring2025-sub018/internal/control/domain"
	"github.com/mhdr/Monitoring2025-sub018/internal/observability/metrics"
	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
)

// ConfigRepository loads loop configurations.
type ConfigRepository interface {
	ListEnabled(ctx context.Context) ([]control.Config, error)
}

// StateRepository persists loop runtime state.
type StateRepository interface {
	Get(ctx context.Context, loopID string) (*control.State, error)
	Upsert(ctx context.Context, state *control.State) error
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Manager steps every enabled control loop once per tick: it reads the
// process variable from the point store, advances the loop, writes the
// output back, and persists the new state.
type Manager struct {
	configs ConfigRepository
	states  StateRepository
	store   points.Store
	clock   Clock
	logger  *zap.Logger
}

// Option customizes the manager.
type Option func(*Manager)

// WithClock assigns a clock.
func WithClock(clock Clock) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewManager constructs a manager.
func NewManager(configs ConfigRepository, states StateRepository, store points.Store, logger *zap.Logger, opts ...Option) (*Manager, error) {
	if configs == nil || states == nil {
		return nil, errors.New("control: nil repository")
	}
	if store == nil {
		return nil, errors.New("control: nil point store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	manager := &Manager{
		configs: configs,
		states:  states,
		store:   store,
		clock:   systemClock{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager, nil
}

// Tick evaluates all loops in cascade order (outer before inner). A failure
// in one loop is logged and does not stop the rest.
func (m *Manager) Tick(ctx context.Context, now time.Time) error {
	if m == nil {
		return errors.New("control: nil manager")
	}
	if now.IsZero() {
		now = m.clock.Now()
	}
	configs, err := m.configs.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("control: list configs: %w", err)
	}

	ordered, skipped := control.Order(configs)
	for loopID, reason := range skipped {
		m.logger.Warn("control loop skipped", zap.String("loop_id", loopID), zap.Error(reason))
	}

	outputs := make(map[string]float64, len(ordered))
	for _, cfg := range ordered {
		output, err := m.stepLoop(ctx, cfg, outputs, now)
		if err != nil {
			m.logger.Warn("control loop step failed",
				zap.String("loop_id", cfg.ID),
				zap.Error(err),
			)
			continue
		}
		outputs[cfg.ID] = output
	}
	return nil
}

func (m *Manager) stepLoop(ctx context.Context, cfg control.Config, outputs map[string]float64, now time.Time) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	point, ok, err := m.store.Get(ctx, cfg.PVItemID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("control: loop %s: process variable %s absent", cfg.ID, cfg.PVItemID)
	}
	pv, err := point.Float()
	if err != nil {
		return 0, fmt.Errorf("control: loop %s: %w", cfg.ID, err)
	}

	setpoint, err := m.resolveSetpoint(ctx, cfg, outputs)
	if err != nil {
		return 0, err
	}

	// Bumpless restart: state comes from the repository, never from a zero
	// value, except for loops that have genuinely never run.
	state, err := m.states.Get(ctx, cfg.ID)
	if err != nil {
		return 0, err
	}
	if state == nil {
		state = &control.State{LoopID: cfg.ID}
	}

	output, next, reset := control.Step(cfg, *state, pv, setpoint, now)
	if reset {
		metrics.IncPIDStateReset()
		m.logger.Info("control loop state reset on configuration change",
			zap.String("loop_id", cfg.ID),
		)
	}

	kind := points.KindAnalogOutput
	value := strconv.FormatFloat(output, 'g', -1, 64)
	if cfg.DigitalOutput {
		kind = points.KindDigitalOutput
		value = "0"
		if next.DigitalOutputState {
			value = "1"
		}
	}
	if err := m.store.Set(ctx, points.Point{
		ID:        cfg.OutputItemID,
		Kind:      kind,
		Value:     value,
		Timestamp: now.Unix(),
	}); err != nil {
		return 0, err
	}

	if err := m.states.Upsert(ctx, &next); err != nil {
		return 0, err
	}
	return output, nil
}

// resolveSetpoint picks the setpoint source: an inner loop follows its
// parent's output from the same tick, otherwise a setpoint item or the
// configured constant is used.
func (m *Manager) resolveSetpoint(ctx context.Context, cfg control.Config, outputs map[string]float64) (float64, error) {
	if cfg.CascadeLevel == control.LevelInner {
		parentOutput, ok := outputs[cfg.ParentID]
		if !ok {
			return 0, fmt.Errorf("control: loop %s: parent %s output unavailable this tick", cfg.ID, cfg.ParentID)
		}
		return parentOutput, nil
	}
	if cfg.SetpointItemID != "" {
		point, ok, err := m.store.Get(ctx, cfg.SetpointItemID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("control: loop %s: setpoint item %s absent", cfg.ID, cfg.SetpointItemID)
		}
		return point.Float()
	}
	return cfg.Setpoint, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
