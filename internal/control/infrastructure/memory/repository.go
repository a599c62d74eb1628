package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	control "github.com/mhdr/Monitoring2025-sub018/internal/control/domain"
)

// ConfigRepository is an in-memory loop configuration repository.
type ConfigRepository struct {
	mu   sync.RWMutex
	data map[string]control.Config
}

// NewConfigRepository constructs a repository.
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{data: make(map[string]control.Config)}
}

// Put stores a configuration.
func (r *ConfigRepository) Put(cfg control.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[cfg.ID] = cfg
}

// ListEnabled returns enabled configurations ordered by id.
func (r *ConfigRepository) ListEnabled(ctx context.Context) ([]control.Config, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []control.Config
	for _, cfg := range r.data {
		if !cfg.Enabled {
			continue
		}
		result = append(result, cfg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// StateRepository is an in-memory loop state repository.
type StateRepository struct {
	mu   sync.RWMutex
	data map[string]control.State
}

// NewStateRepository constructs a repository.
func NewStateRepository() *StateRepository {
	return &StateRepository{data: make(map[string]control.State)}
}

// Get loads the state for a loop.
func (r *StateRepository) Get(ctx context.Context, loopID string) (*control.State, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.data[loopID]
	if !ok {
		return nil, nil
	}
	copied := state
	return &copied, nil
}

// Upsert stores the state for a loop.
func (r *StateRepository) Upsert(ctx context.Context, state *control.State) error {
	_ = ctx
	if state == nil {
		return errors.New("memory pid state repo: nil state")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[state.LoopID] = *state
	return nil
}
