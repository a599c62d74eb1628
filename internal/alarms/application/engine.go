package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	alarms "github.com/mhdr/Monitoring2025-sub018/internal/alarms/domain"
	"github.com/mhdr/Monitoring2025-sub018/internal/observability/metrics"
	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
)

const (
	EventActivated = "activated"
	EventCleared   = "cleared"
)

// Event is one alarm lifecycle transition produced by evaluation.
type Event struct {
	Type      string    `json:"type"`
	AlarmID   string    `json:"alarm_id"`
	ItemID    string    `json:"item_id"`
	Message   string    `json:"message"`
	MessageFa string    `json:"message_fa"`
	At        time.Time `json:"at"`
}

// DefinitionRepository persists alarm definitions.
type DefinitionRepository interface {
	ListEnabled(ctx context.Context) ([]alarms.Definition, error)
	GetByID(ctx context.Context, id string) (*alarms.Definition, error)
	Create(ctx context.Context, def *alarms.Definition) error
	Update(ctx context.Context, def *alarms.Definition) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// ActiveRepository persists currently-triggered alarms.
type ActiveRepository interface {
	GetByAlarmID(ctx context.Context, alarmID string) (*alarms.Active, error)
	Create(ctx context.Context, active *alarms.Active) error
	DeleteByAlarmID(ctx context.Context, alarmID string) error
	MarkAcknowledged(ctx context.Context, alarmID string, at time.Time) error
	List(ctx context.Context) ([]alarms.Active, error)
}

// HistoryRepository appends immutable activation records.
type HistoryRepository interface {
	Append(ctx context.Context, entry *alarms.HistoryEntry) error
	ListRange(ctx context.Context, from, to time.Time) ([]alarms.HistoryEntry, error)
}

// StateRepository persists debounce pending states.
type StateRepository interface {
	Get(ctx context.Context, alarmID string) (*alarms.PendingState, error)
	Upsert(ctx context.Context, state *alarms.PendingState) error
	Clear(ctx context.Context, alarmID string) error
}

// Notifier publishes alarm lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Engine evaluates alarm definitions against the point store.
type Engine struct {
	definitions DefinitionRepository
	actives     ActiveRepository
	history     HistoryRepository
	states      StateRepository
	store       points.Store
	notifier    Notifier
	clock       Clock
	logger      *zap.Logger
}

// Option customizes the engine.
type Option func(*Engine)

// WithNotifier assigns a notifier.
func WithNotifier(notifier Notifier) Option {
	return func(e *Engine) {
		e.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine constructs an alarm engine.
func NewEngine(definitions DefinitionRepository, actives ActiveRepository, history HistoryRepository, states StateRepository, store points.Store, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if definitions == nil || actives == nil || history == nil || states == nil {
		return nil, errors.New("alarms: nil repository")
	}
	if store == nil {
		return nil, errors.New("alarms: nil point store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		definitions: definitions,
		actives:     actives,
		history:     history,
		states:      states,
		store:       store,
		clock:       systemClock{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Tick runs one evaluation pass. Satisfies the runtime Ticker contract.
func (e *Engine) Tick(ctx context.Context, now time.Time) error {
	_, err := e.EvaluateTick(ctx, now)
	return err
}

// EvaluateTick evaluates every enabled definition once and returns the
// lifecycle transitions it produced. A failure in one definition is logged
// and does not stop the rest.
func (e *Engine) EvaluateTick(ctx context.Context, now time.Time) ([]Event, error) {
	if e == nil {
		return nil, errors.New("alarms: nil engine")
	}
	if now.IsZero() {
		now = e.clock.Now()
	}
	defs, err := e.definitions.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("alarms: list definitions: %w", err)
	}

	var events []Event
	for _, def := range defs {
		event, err := e.evaluateDefinition(ctx, def, now)
		if err != nil {
			e.logger.Warn("alarm evaluation failed",
				zap.String("alarm_id", def.ID),
				zap.String("item_id", def.ItemID),
				zap.Error(err),
			)
			continue
		}
		if event != nil {
			events = append(events, *event)
		}
	}
	return events, nil
}

// AckAlarm acknowledges an active alarm.
func (e *Engine) AckAlarm(ctx context.Context, alarmID string) error {
	if e == nil {
		return errors.New("alarms: nil engine")
	}
	if alarmID == "" {
		return errors.New("alarms: alarm id required")
	}
	active, err := e.actives.GetByAlarmID(ctx, alarmID)
	if err != nil {
		return err
	}
	if active == nil {
		return alarms.ErrNotFound
	}
	if active.Acknowledged {
		return nil
	}
	return e.actives.MarkAcknowledged(ctx, alarmID, e.clock.Now())
}

// CreateDefinition inserts a definition. A duplicate id is a no-op failure.
func (e *Engine) CreateDefinition(ctx context.Context, def *alarms.Definition) error {
	if e == nil {
		return errors.New("alarms: nil engine")
	}
	if def == nil {
		return errors.New("alarms: nil definition")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	existing, err := e.definitions.GetByID(ctx, def.ID)
	if err != nil && !errors.Is(err, alarms.ErrNotFound) {
		return err
	}
	if existing != nil {
		return alarms.ErrDuplicateID
	}
	now := e.clock.Now()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	def.UpdatedAt = now
	return e.definitions.Create(ctx, def)
}

// UpdateDefinition updates a definition. Editing a soft-deleted definition
// is a no-op failure.
func (e *Engine) UpdateDefinition(ctx context.Context, def *alarms.Definition) error {
	if e == nil {
		return errors.New("alarms: nil engine")
	}
	if def == nil {
		return errors.New("alarms: nil definition")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	existing, err := e.definitions.GetByID(ctx, def.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return alarms.ErrNotFound
	}
	if existing.IsDeleted {
		return alarms.ErrDeleted
	}
	def.CreatedAt = existing.CreatedAt
	def.UpdatedAt = e.clock.Now()
	return e.definitions.Update(ctx, def)
}

// DeleteDefinition soft-deletes a definition: it is never evaluated again,
// but existing active and history records are retained.
func (e *Engine) DeleteDefinition(ctx context.Context, id string) error {
	if e == nil {
		return errors.New("alarms: nil engine")
	}
	if id == "" {
		return errors.New("alarms: alarm id required")
	}
	existing, err := e.definitions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return alarms.ErrNotFound
	}
	if existing.IsDeleted {
		return alarms.ErrDeleted
	}
	return e.definitions.SoftDelete(ctx, id, e.clock.Now())
}

func (e *Engine) evaluateDefinition(ctx context.Context, def alarms.Definition, now time.Time) (*Event, error) {
	if def.IsDisabled || def.IsDeleted {
		return nil, nil
	}

	point, ok, err := e.store.Get(ctx, def.ItemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var condition bool
	switch def.Type {
	case alarms.TypeTimeout:
		condition = alarms.TimedOut(def, point, now)
	case alarms.TypeComparative:
		condition, err = alarms.Condition(def, point)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("alarms: definition %s: invalid type %q", def.ID, def.Type)
	}

	active, err := e.actives.GetByAlarmID(ctx, def.ID)
	if err != nil {
		return nil, err
	}

	if !condition {
		_ = e.states.Clear(ctx, def.ID)
		if active == nil {
			return nil, nil
		}
		// No debounce on clear: a momentary recovery deactivates at once.
		return e.clearAlarm(ctx, def, active, now)
	}

	// Re-evaluating a sustained condition against an existing active alarm
	// is a no-op.
	if active != nil {
		return nil, nil
	}

	if def.DelaySeconds > 0 {
		state, err := e.states.Get(ctx, def.ID)
		if err != nil {
			return nil, err
		}
		if state == nil {
			pending := alarms.PendingState{
				AlarmID:      def.ID,
				PendingSince: now,
				LastValue:    point.Value,
				UpdatedAt:    now,
			}
			return nil, e.states.Upsert(ctx, &pending)
		}
		delay := time.Duration(def.DelaySeconds) * time.Second
		if now.Sub(state.PendingSince) < delay {
			state.LastValue = point.Value
			state.UpdatedAt = now
			return nil, e.states.Upsert(ctx, state)
		}
		_ = e.states.Clear(ctx, def.ID)
	}

	return e.activateAlarm(ctx, def, point, now)
}

func (e *Engine) activateAlarm(ctx context.Context, def alarms.Definition, point points.Point, now time.Time) (*Event, error) {
	message, messageFa := alarms.Messages(def, point.Kind.Digital())

	active := &alarms.Active{
		ID:          uuid.NewString(),
		AlarmID:     def.ID,
		ItemID:      def.ItemID,
		Message:     message,
		MessageFa:   messageFa,
		ActivatedAt: now,
	}
	if err := e.actives.Create(ctx, active); err != nil {
		return nil, err
	}

	entry := &alarms.HistoryEntry{
		ID:        uuid.NewString(),
		ItemID:    def.ItemID,
		AlarmID:   def.ID,
		Time:      now,
		Message:   message,
		MessageFa: messageFa,
	}
	if err := e.history.Append(ctx, entry); err != nil {
		return nil, err
	}

	event := Event{
		Type:      EventActivated,
		AlarmID:   def.ID,
		ItemID:    def.ItemID,
		Message:   message,
		MessageFa: messageFa,
		At:        now,
	}
	e.publish(ctx, event)
	return &event, nil
}

func (e *Engine) clearAlarm(ctx context.Context, def alarms.Definition, active *alarms.Active, now time.Time) (*Event, error) {
	if err := e.actives.DeleteByAlarmID(ctx, def.ID); err != nil {
		return nil, err
	}
	// Clearing is not historized; history records activation instances only.
	event := Event{
		Type:      EventCleared,
		AlarmID:   def.ID,
		ItemID:    def.ItemID,
		Message:   active.Message,
		MessageFa: active.MessageFa,
		At:        now,
	}
	e.publish(ctx, event)
	return &event, nil
}

func (e *Engine) publish(ctx context.Context, event Event) {
	metrics.IncAlarmEvent(event.Type)
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, event)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
