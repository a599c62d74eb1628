package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"

	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewStore(client, "test:point:", nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	point := points.Point{ID: "p1", Kind: points.KindAnalogInput, Value: "42.5", Timestamp: 1000}
	if err := store.Set(ctx, point); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected point present")
	}
	if got != point {
		t.Fatalf("got %+v, want %+v", got, point)
	}
}

func TestMissingKey(t *testing.T) {
	store := newTestStore(t)
	if _, ok, err := store.Get(context.Background(), "absent"); err != nil || ok {
		t.Fatalf("absent point: ok=%v err=%v", ok, err)
	}
}

func TestStaleWriteDropped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, points.Point{ID: "p1", Kind: points.KindAnalogInput, Value: "1", Timestamp: 1000}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, points.Point{ID: "p1", Kind: points.KindAnalogInput, Value: "2", Timestamp: 999}); err != nil {
		t.Fatalf("stale set: %v", err)
	}
	got, _, _ := store.Get(ctx, "p1")
	if got.Value != "1" {
		t.Fatalf("stale write applied: %+v", got)
	}

	if err := store.Set(ctx, points.Point{ID: "p1", Kind: points.KindAnalogInput, Value: "3", Timestamp: 1001}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _, _ = store.Get(ctx, "p1")
	if got.Value != "3" || got.Timestamp != 1001 {
		t.Fatalf("newer write dropped: %+v", got)
	}
}

func TestListScansPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, points.Point{ID: id, Kind: points.KindAnalogInput, Value: "0", Timestamp: 1}); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
}
