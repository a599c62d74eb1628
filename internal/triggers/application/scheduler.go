package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mhdr/Monitoring2025-sub018/internal/observability/metrics"
	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
	triggers "github.com/mhdr/Monitoring2025-sub018/internal/triggers/domain"
)

// TriggerRepository loads triggers and their bound actions.
type TriggerRepository interface {
	ListEnabled(ctx context.Context) ([]triggers.Trigger, error)
	ListActions(ctx context.Context, triggerID string) ([]triggers.ScheduledAction, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Scheduler evaluates trigger windows once per tick and executes the bound
// write actions through the point store.
type Scheduler struct {
	repo   TriggerRepository
	store  points.Store
	loc    *time.Location
	clock  Clock
	logger *zap.Logger
}

// Option customizes the scheduler.
type Option func(*Scheduler)

// WithClock assigns a clock.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewScheduler constructs a scheduler. Windows are evaluated in loc.
func NewScheduler(repo TriggerRepository, store points.Store, loc *time.Location, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	if repo == nil {
		return nil, errors.New("triggers: nil repository")
	}
	if store == nil {
		return nil, errors.New("triggers: nil point store")
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	scheduler := &Scheduler{
		repo:   repo,
		store:  store,
		loc:    loc,
		clock:  systemClock{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(scheduler)
	}
	return scheduler, nil
}

// Due returns the actions of every trigger active at now. A malformed
// trigger is logged and skipped without affecting the rest.
func (s *Scheduler) Due(ctx context.Context, now time.Time) ([]triggers.ScheduledAction, error) {
	if s == nil {
		return nil, errors.New("triggers: nil scheduler")
	}
	if now.IsZero() {
		now = s.clock.Now()
	}
	list, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("triggers: list: %w", err)
	}

	var due []triggers.ScheduledAction
	for _, trigger := range list {
		if trigger.IsDisabled {
			continue
		}
		active, err := trigger.Active(now, s.loc)
		if err != nil {
			s.logger.Warn("trigger evaluation failed",
				zap.String("trigger_id", trigger.ID),
				zap.Error(err),
			)
			continue
		}
		if !active {
			continue
		}
		actions, err := s.repo.ListActions(ctx, trigger.ID)
		if err != nil {
			s.logger.Warn("trigger action load failed",
				zap.String("trigger_id", trigger.ID),
				zap.Error(err),
			)
			continue
		}
		due = append(due, actions...)
	}
	return due, nil
}

// Tick executes every due action. Store failures on one action are logged
// and retried naturally on the next tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) error {
	if now.IsZero() {
		now = s.clock.Now()
	}
	due, err := s.Due(ctx, now)
	if err != nil {
		return err
	}
	for _, action := range due {
		err := s.execute(ctx, action, now)
		metrics.IncTriggerAction(err)
		if err != nil {
			s.logger.Warn("scheduled action failed",
				zap.String("trigger_id", action.TriggerID),
				zap.String("item_id", action.ItemID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (s *Scheduler) execute(ctx context.Context, action triggers.ScheduledAction, now time.Time) error {
	kind := points.KindAnalogOutput
	if existing, ok, err := s.store.Get(ctx, action.ItemID); err == nil && ok {
		kind = existing.Kind
	}
	return s.store.Set(ctx, points.Point{
		ID:        action.ItemID,
		Kind:      kind,
		Value:     action.Value,
		Timestamp: now.Unix(),
	})
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
