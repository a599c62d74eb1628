package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	alarms "github.com/mhdr/Monitoring2025-sub018/internal/alarms/domain"
)

// DefinitionRepository is an in-memory definition repository.
type DefinitionRepository struct {
	mu   sync.RWMutex
	data map[string]alarms.Definition
}

// NewDefinitionRepository constructs a repository.
func NewDefinitionRepository() *DefinitionRepository {
	return &DefinitionRepository{data: make(map[string]alarms.Definition)}
}

// ListEnabled returns definitions that are neither disabled nor deleted.
func (r *DefinitionRepository) ListEnabled(ctx context.Context) ([]alarms.Definition, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []alarms.Definition
	for _, def := range r.data {
		if def.IsDisabled || def.IsDeleted {
			continue
		}
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetByID loads a definition by id.
func (r *DefinitionRepository) GetByID(ctx context.Context, id string) (*alarms.Definition, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	copied := def
	return &copied, nil
}

// Create inserts a definition.
func (r *DefinitionRepository) Create(ctx context.Context, def *alarms.Definition) error {
	_ = ctx
	if def == nil {
		return errors.New("memory definition repo: nil definition")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[def.ID]; ok {
		return alarms.ErrDuplicateID
	}
	r.data[def.ID] = *def
	return nil
}

// Update replaces a definition.
func (r *DefinitionRepository) Update(ctx context.Context, def *alarms.Definition) error {
	_ = ctx
	if def == nil {
		return errors.New("memory definition repo: nil definition")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[def.ID]; !ok {
		return alarms.ErrNotFound
	}
	r.data[def.ID] = *def
	return nil
}

// SoftDelete marks a definition disabled and deleted.
func (r *DefinitionRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.data[id]
	if !ok {
		return alarms.ErrNotFound
	}
	def.IsDisabled = true
	def.IsDeleted = true
	def.UpdatedAt = at
	r.data[id] = def
	return nil
}

// ActiveRepository is an in-memory active alarm repository.
type ActiveRepository struct {
	mu   sync.RWMutex
	data map[string]alarms.Active
}

// NewActiveRepository constructs a repository.
func NewActiveRepository() *ActiveRepository {
	return &ActiveRepository{data: make(map[string]alarms.Active)}
}

// GetByAlarmID loads the active instance for an alarm id.
func (r *ActiveRepository) GetByAlarmID(ctx context.Context, alarmID string) (*alarms.Active, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	active, ok := r.data[alarmID]
	if !ok {
		return nil, nil
	}
	copied := active
	return &copied, nil
}

// Create inserts an active alarm; at most one per alarm id.
func (r *ActiveRepository) Create(ctx context.Context, active *alarms.Active) error {
	_ = ctx
	if active == nil {
		return errors.New("memory active repo: nil alarm")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[active.AlarmID]; ok {
		return alarms.ErrDuplicateID
	}
	r.data[active.AlarmID] = *active
	return nil
}

// DeleteByAlarmID removes the active instance for an alarm id.
func (r *ActiveRepository) DeleteByAlarmID(ctx context.Context, alarmID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, alarmID)
	return nil
}

// MarkAcknowledged acknowledges the active instance.
func (r *ActiveRepository) MarkAcknowledged(ctx context.Context, alarmID string, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	active, ok := r.data[alarmID]
	if !ok {
		return alarms.ErrNotFound
	}
	active.Acknowledged = true
	active.AckedAt = at
	r.data[alarmID] = active
	return nil
}

// List returns all active alarms ordered by activation time.
func (r *ActiveRepository) List(ctx context.Context) ([]alarms.Active, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]alarms.Active, 0, len(r.data))
	for _, active := range r.data {
		result = append(result, active)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ActivatedAt.Before(result[j].ActivatedAt) })
	return result, nil
}

// HistoryRepository is an in-memory append-only history log.
type HistoryRepository struct {
	mu      sync.RWMutex
	entries []alarms.HistoryEntry
}

// NewHistoryRepository constructs a repository.
func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

// Append adds a history entry.
func (r *HistoryRepository) Append(ctx context.Context, entry *alarms.HistoryEntry) error {
	_ = ctx
	if entry == nil {
		return errors.New("memory history repo: nil entry")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// ListRange returns entries in [from, to] ordered by time.
func (r *HistoryRepository) ListRange(ctx context.Context, from, to time.Time) ([]alarms.HistoryEntry, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []alarms.HistoryEntry
	for _, entry := range r.entries {
		if entry.Time.Before(from) || entry.Time.After(to) {
			continue
		}
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Time.Before(result[j].Time) })
	return result, nil
}

// StateRepository is an in-memory debounce state repository.
type StateRepository struct {
	mu   sync.RWMutex
	data map[string]alarms.PendingState
}

// NewStateRepository constructs a repository.
func NewStateRepository() *StateRepository {
	return &StateRepository{data: make(map[string]alarms.PendingState)}
}

// Get loads the pending state for an alarm id.
func (r *StateRepository) Get(ctx context.Context, alarmID string) (*alarms.PendingState, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.data[alarmID]
	if !ok {
		return nil, nil
	}
	copied := state
	return &copied, nil
}

// Upsert stores the pending state.
func (r *StateRepository) Upsert(ctx context.Context, state *alarms.PendingState) error {
	_ = ctx
	if state == nil {
		return errors.New("memory state repo: nil state")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[state.AlarmID] = *state
	return nil
}

// Clear removes the pending state.
func (r *StateRepository) Clear(ctx context.Context, alarmID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, alarmID)
	return nil
}
