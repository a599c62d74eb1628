package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	variables "github.com/mhdr/Monitoring2025-sub018/internal/variables/domain"
)

// Repository is an in-memory global variable repository.
type Repository struct {
	mu   sync.RWMutex
	data map[string]variables.GlobalVariable
}

// NewRepository constructs a repository.
func NewRepository() *Repository {
	return &Repository{data: make(map[string]variables.GlobalVariable)}
}

// Get loads a variable by id.
func (r *Repository) Get(ctx context.Context, id string) (*variables.GlobalVariable, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	variable, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	copied := variable
	return &copied, nil
}

// Upsert stores a variable.
func (r *Repository) Upsert(ctx context.Context, variable *variables.GlobalVariable) error {
	_ = ctx
	if variable == nil {
		return errors.New("memory variable repo: nil variable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[variable.ID] = *variable
	return nil
}

// List returns all variables ordered by id.
func (r *Repository) List(ctx context.Context) ([]variables.GlobalVariable, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]variables.GlobalVariable, 0, len(r.data))
	for _, variable := range r.data {
		result = append(result, variable)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
