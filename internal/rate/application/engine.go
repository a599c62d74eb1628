package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
	rate "github.com/mhdr/Monitoring2025-sub018/internal/rate/domain"
)

// ConfigRepository loads monitored window configurations.
type ConfigRepository interface {
	ListEnabled(ctx context.Context) ([]rate.WindowConfig, error)
}

// SampleRepository persists window samples so restarts recover the window.
type SampleRepository interface {
	Append(ctx context.Context, windowID string, sample rate.Sample) error
	ListSince(ctx context.Context, windowID string, since time.Time) ([]rate.Sample, error)
	DeleteBefore(ctx context.Context, windowID string, cutoff time.Time) error
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Engine maintains one sliding window per monitored quantity and computes
// instantaneous rate of change. It is read-only against the point store.
type Engine struct {
	configs ConfigRepository
	samples SampleRepository
	store   points.Store
	clock   Clock
	logger  *zap.Logger

	mu      sync.Mutex
	windows map[string]*rate.Window
	loaded  map[string]bool
}

// Option customizes the engine.
type Option func(*Engine)

// WithClock assigns a clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine constructs a rate engine.
func NewEngine(configs ConfigRepository, samples SampleRepository, store points.Store, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if configs == nil || samples == nil {
		return nil, errors.New("rate: nil repository")
	}
	if store == nil {
		return nil, errors.New("rate: nil point store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		configs: configs,
		samples: samples,
		store:   store,
		clock:   systemClock{},
		logger:  logger,
		windows: make(map[string]*rate.Window),
		loaded:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Tick samples every enabled window's point once. A failure in one window
// is logged and does not stop the rest.
func (e *Engine) Tick(ctx context.Context, now time.Time) error {
	if e == nil {
		return errors.New("rate: nil engine")
	}
	if now.IsZero() {
		now = e.clock.Now()
	}
	configs, err := e.configs.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("rate: list configs: %w", err)
	}
	for _, cfg := range configs {
		if err := e.sampleWindow(ctx, cfg, now); err != nil {
			e.logger.Warn("rate window sampling failed",
				zap.String("window_id", cfg.ID),
				zap.String("item_id", cfg.ItemID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// AddSample appends a sample to a window. Out-of-order timestamps are
// rejected with rate.ErrOutOfOrder.
func (e *Engine) AddSample(ctx context.Context, windowID string, timestamp time.Time, value float64) error {
	if e == nil {
		return errors.New("rate: nil engine")
	}
	if windowID == "" {
		return errors.New("rate: empty window id")
	}
	window, err := e.window(ctx, windowID)
	if err != nil {
		return err
	}
	sample := rate.Sample{Timestamp: timestamp, Value: value}

	e.mu.Lock()
	err = window.Append(sample)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.samples.Append(ctx, windowID, sample)
}

// ComputeRate evicts samples older than the window duration, then computes
// the rate. Fewer than two remaining samples report rate.ErrInsufficientData.
func (e *Engine) ComputeRate(ctx context.Context, windowID string, windowDuration time.Duration, now time.Time) (float64, error) {
	if e == nil {
		return 0, errors.New("rate: nil engine")
	}
	if windowDuration <= 0 {
		return 0, errors.New("rate: non-positive window duration")
	}
	if now.IsZero() {
		now = e.clock.Now()
	}
	window, err := e.window(ctx, windowID)
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-windowDuration)

	e.mu.Lock()
	evicted := window.EvictBefore(cutoff)
	value, err := window.Rate()
	e.mu.Unlock()

	if evicted > 0 {
		if pruneErr := e.samples.DeleteBefore(ctx, windowID, cutoff); pruneErr != nil {
			e.logger.Warn("rate sample prune failed",
				zap.String("window_id", windowID),
				zap.Error(pruneErr),
			)
		}
	}
	return value, err
}

func (e *Engine) sampleWindow(ctx context.Context, cfg rate.WindowConfig, now time.Time) error {
	point, ok, err := e.store.Get(ctx, cfg.ItemID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	value, err := point.Float()
	if err != nil {
		return err
	}
	err = e.AddSample(ctx, cfg.ID, time.Unix(point.Timestamp, 0).UTC(), value)
	if errors.Is(err, rate.ErrOutOfOrder) {
		// The point has not advanced since the last tick.
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := e.ComputeRate(ctx, cfg.ID, cfg.Duration, now); err != nil && !errors.Is(err, rate.ErrInsufficientData) {
		return err
	}
	return nil
}

// window returns the in-memory window for an id, hydrating it from the
// sample repository on first use so restarts continue the window.
func (e *Engine) window(ctx context.Context, windowID string) (*rate.Window, error) {
	e.mu.Lock()
	window, ok := e.windows[windowID]
	if !ok {
		window = &rate.Window{}
		e.windows[windowID] = window
	}
	hydrated := e.loaded[windowID]
	e.loaded[windowID] = true
	e.mu.Unlock()

	if hydrated {
		return window, nil
	}
	persisted, err := e.samples.ListSince(ctx, windowID, time.Time{})
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, sample := range persisted {
		if err := window.Append(sample); err != nil {
			// Persisted rows out of order mean the table was tampered with;
			// start the window over rather than guessing.
			window.Clear()
			break
		}
	}
	return window, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
