package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
)

// Store is an in-memory point store for tests and single-process mode.
type Store struct {
	mu   sync.RWMutex
	data map[string]points.Point
}

// NewStore constructs a store.
func NewStore() *Store {
	return &Store{data: make(map[string]points.Point)}
}

// Get returns the latest point for an item.
func (s *Store) Get(ctx context.Context, itemID string) (points.Point, bool, error) {
	_ = ctx
	if itemID == "" {
		return points.Point{}, false, errors.New("memory point store: empty item id")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	point, ok := s.data[itemID]
	return point, ok, nil
}

// Set stores a point, keeping the newest timestamp per id.
func (s *Store) Set(ctx context.Context, point points.Point) error {
	_ = ctx
	if point.ID == "" {
		return errors.New("memory point store: empty item id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.data[point.ID]; ok && existing.Timestamp > point.Timestamp {
		return nil
	}
	s.data[point.ID] = point
	return nil
}

// List returns all points ordered by id.
func (s *Store) List(ctx context.Context) ([]points.Point, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]points.Point, 0, len(s.data))
	for _, point := range s.data {
		result = append(result, point)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
