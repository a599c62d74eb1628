package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/mhdr/Monitoring2025-sub018/internal/observability/metrics"
	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
)

// Store is a Redis-backed point store. Points are JSON-encoded under
// keyPrefix + itemID. Last-write-wins is enforced with a read-compare-write
// under a process-wide mutex; multi-process deployments rely on disjoint
// writer key sets per engine.
type Store struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewStore constructs a Redis point store.
func NewStore(client *redis.Client, keyPrefix string, logger *zap.Logger) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis point store: nil client")
	}
	if keyPrefix == "" {
		keyPrefix = "monitoring:point:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, keyPrefix: keyPrefix, logger: logger}, nil
}

// Get returns the latest point for an item.
func (s *Store) Get(ctx context.Context, itemID string) (points.Point, bool, error) {
	if s == nil || s.client == nil {
		return points.Point{}, false, errors.New("redis point store: nil client")
	}
	if itemID == "" {
		return points.Point{}, false, errors.New("redis point store: empty item id")
	}
	raw, err := s.client.Get(ctx, s.keyPrefix+itemID).Result()
	if err == redis.Nil {
		metrics.IncPointRead(nil)
		return points.Point{}, false, nil
	}
	if err != nil {
		metrics.IncPointRead(err)
		return points.Point{}, false, fmt.Errorf("redis point store: get: %w", err)
	}
	var point points.Point
	if err := json.Unmarshal([]byte(raw), &point); err != nil {
		metrics.IncPointRead(err)
		return points.Point{}, false, fmt.Errorf("redis point store: decode: %w", err)
	}
	metrics.IncPointRead(nil)
	return point, true, nil
}

// Set stores a point, keeping the newest timestamp per id.
func (s *Store) Set(ctx context.Context, point points.Point) error {
	if s == nil || s.client == nil {
		return errors.New("redis point store: nil client")
	}
	if point.ID == "" {
		return errors.New("redis point store: empty item id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok, err := s.Get(ctx, point.ID)
	if err != nil {
		metrics.IncPointWrite(err)
		return err
	}
	if ok && existing.Timestamp > point.Timestamp {
		metrics.IncStaleWrite()
		s.logger.Debug("stale point write dropped",
			zap.String("item_id", point.ID),
			zap.Int64("stored_ts", existing.Timestamp),
			zap.Int64("write_ts", point.Timestamp),
		)
		return nil
	}

	encoded, err := json.Marshal(point)
	if err != nil {
		metrics.IncPointWrite(err)
		return fmt.Errorf("redis point store: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+point.ID, encoded, 0).Err(); err != nil {
		metrics.IncPointWrite(err)
		return fmt.Errorf("redis point store: set: %w", err)
	}
	metrics.IncPointWrite(nil)
	return nil
}

// List returns every stored point by scanning the key prefix.
func (s *Store) List(ctx context.Context) ([]points.Point, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("redis point store: nil client")
	}
	var result []points.Point
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis point store: scan get: %w", err)
		}
		var point points.Point
		if err := json.Unmarshal([]byte(raw), &point); err != nil {
			s.logger.Warn("skipping undecodable point", zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		result = append(result, point)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis point store: scan: %w", err)
	}
	return result, nil
}
