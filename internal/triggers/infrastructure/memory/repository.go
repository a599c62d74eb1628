package memory

import (
	"context"
	"sort"
	"sync"

	triggers "github.com/mhdr/Monitoring2025-sub018/internal/triggers/domain"
)

// Repository is an in-memory trigger repository.
type Repository struct {
	mu       sync.RWMutex
	triggers map[string]triggers.Trigger
	actions  map[string][]triggers.ScheduledAction
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{
		triggers: make(map[string]triggers.Trigger),
		actions:  make(map[string][]triggers.ScheduledAction),
	}
}

// PutTrigger stores a trigger.
func (r *Repository) PutTrigger(trigger triggers.Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers[trigger.ID] = trigger
}

// PutAction binds an action to its trigger.
func (r *Repository) PutAction(action triggers.ScheduledAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[action.TriggerID] = append(r.actions[action.TriggerID], action)
}

// ListEnabled returns triggers that are not disabled, ordered by id.
func (r *Repository) ListEnabled(ctx context.Context) ([]triggers.Trigger, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []triggers.Trigger
	for _, trigger := range r.triggers {
		if trigger.IsDisabled {
			continue
		}
		result = append(result, trigger)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListActions returns the actions bound to a trigger.
func (r *Repository) ListActions(ctx context.Context, triggerID string) ([]triggers.ScheduledAction, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]triggers.ScheduledAction(nil), r.actions[triggerID]...), nil
}
