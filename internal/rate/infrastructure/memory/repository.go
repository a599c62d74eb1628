package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	rate "github.com/mhdr/Monitoring2025-sub018/internal/rate/domain"
)

// ConfigRepository is an in-memory window configuration repository.
type ConfigRepository struct {
	mu   sync.RWMutex
	data map[string]rate.WindowConfig
}

// NewConfigRepository constructs a repository.
func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{data: make(map[string]rate.WindowConfig)}
}

// Put stores a configuration.
func (r *ConfigRepository) Put(cfg rate.WindowConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[cfg.ID] = cfg
}

// ListEnabled returns enabled configurations ordered by id.
func (r *ConfigRepository) ListEnabled(ctx context.Context) ([]rate.WindowConfig, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []rate.WindowConfig
	for _, cfg := range r.data {
		if !cfg.Enabled {
			continue
		}
		result = append(result, cfg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SampleRepository is an in-memory sample log.
type SampleRepository struct {
	mu   sync.RWMutex
	data map[string][]rate.Sample
}

// NewSampleRepository constructs a repository.
func NewSampleRepository() *SampleRepository {
	return &SampleRepository{data: make(map[string][]rate.Sample)}
}

// Append adds one sample.
func (r *SampleRepository) Append(ctx context.Context, windowID string, sample rate.Sample) error {
	_ = ctx
	if windowID == "" {
		return errors.New("memory rate sample repo: empty window id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[windowID] = append(r.data[windowID], sample)
	return nil
}

// ListSince returns samples at or after since, ordered by timestamp.
func (r *SampleRepository) ListSince(ctx context.Context, windowID string, since time.Time) ([]rate.Sample, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []rate.Sample
	for _, sample := range r.data[windowID] {
		if sample.Timestamp.Before(since) {
			continue
		}
		result = append(result, sample)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

// DeleteBefore prunes samples older than the cutoff.
func (r *SampleRepository) DeleteBefore(ctx context.Context, windowID string, cutoff time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.data[windowID][:0:0]
	for _, sample := range r.data[windowID] {
		if sample.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, sample)
	}
	r.data[windowID] = kept
	return nil
}
