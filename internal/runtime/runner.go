package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mhdr/Monitoring2025-sub018/internal/observability/metrics"
)

// Ticker is one periodically-evaluated engine.
type Ticker interface {
	Tick(ctx context.Context, now time.Time) error
}

type task struct {
	name     string
	ticker   Ticker
	interval time.Duration
}

// Runner drives each registered engine on its own fixed interval. Engines
// never call each other; they only share the point store, so their loops
// are independent goroutines with a common stop signal.
type Runner struct {
	tasks  []task
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewRunner constructs a runner.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Register adds an engine loop.
func (r *Runner) Register(name string, ticker Ticker, interval time.Duration) error {
	if r == nil {
		return errors.New("runtime: nil runner")
	}
	if name == "" || ticker == nil {
		return errors.New("runtime: invalid task")
	}
	if interval <= 0 {
		return errors.New("runtime: non-positive interval")
	}
	r.tasks = append(r.tasks, task{name: name, ticker: ticker, interval: interval})
	return nil
}

// Start launches one goroutine per registered engine. Loops exit promptly
// when ctx is cancelled; an in-flight tick is allowed to finish so no
// entity is left half-written.
func (r *Runner) Start(ctx context.Context) {
	if r == nil {
		return
	}
	for _, item := range r.tasks {
		r.wg.Add(1)
		go r.loop(ctx, item)
	}
}

// Wait blocks until every loop has exited.
func (r *Runner) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, item task) {
	defer r.wg.Done()

	ticker := time.NewTicker(item.interval)
	defer ticker.Stop()

	r.logger.Info("engine loop started",
		zap.String("engine", item.name),
		zap.Duration("interval", item.interval),
	)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("engine loop stopped", zap.String("engine", item.name))
			return
		case now := <-ticker.C:
			r.runTick(ctx, item, now.UTC())
		}
	}
}

// runTick isolates one tick: a panic or error in this interval must not
// kill the loop.
func (r *Runner) runTick(ctx context.Context, item task, now time.Time) {
	started := time.Now()
	var err error
	defer func() {
		if recovered := recover(); recovered != nil {
			err = errors.New("runtime: tick panicked")
			r.logger.Error("engine tick panicked",
				zap.String("engine", item.name),
				zap.Any("panic", recovered),
			)
		}
		metrics.ObserveTick(item.name, started, err)
	}()

	if err = item.ticker.Tick(ctx, now); err != nil {
		r.logger.Warn("engine tick failed",
			zap.String("engine", item.name),
			zap.Error(err),
		)
	}
}
