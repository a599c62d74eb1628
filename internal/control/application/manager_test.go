package application

import (
	"context"
	"testing"
	"time"

	control "github.com/mhdr/Monitoring2025-sub018/internal/control/domain"
	controlmemory "github.com/mhdr/Monitoring2025-sub018/internal/control/infrastructure/memory"
	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
	pointmemory "github.com/mhdr/Monitoring2025-sub018/internal/points/infrastructure/memory"
)

func setAnalog(t *testing.T, store *pointmemory.Store, id, value string, ts int64) {
	t.Helper()
	err := store.Set(context.Background(), points.Point{
		ID:        id,
		Kind:      points.KindAnalogInput,
		Value:     value,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("set point: %v", err)
	}
}

func readValue(t *testing.T, store *pointmemory.Store, id string) string {
	t.Helper()
	point, ok, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get point: %v", err)
	}
	if !ok {
		t.Fatalf("point %s absent", id)
	}
	return point.Value
}

func TestCascadeInnerFollowsParentOutputSameTick(t *testing.T) {
	configs := controlmemory.NewConfigRepository()
	states := controlmemory.NewStateRepository()
	store := pointmemory.NewStore()

	// Pure proportional loops keep the arithmetic easy to follow. The ids
	// deliberately sort the inner loop first: cascade order must win over
	// listing order.
	configs.Put(control.Config{
		ID:           "a_inner",
		Kp:           1,
		OutputMin:    0,
		OutputMax:    100,
		CascadeLevel: control.LevelInner,
		ParentID:     "z_outer",
		PVItemID:     "pv_inner",
		OutputItemID: "out_inner",
		Enabled:      true,
	})
	configs.Put(control.Config{
		ID:           "z_outer",
		Kp:           1,
		OutputMin:    0,
		OutputMax:    100,
		CascadeLevel: control.LevelOuter,
		PVItemID:     "pv_outer",
		Setpoint:     50,
		OutputItemID: "out_outer",
		Enabled:      true,
	})

	setAnalog(t, store, "pv_outer", "40", 1000)
	setAnalog(t, store, "pv_inner", "4", 1000)

	manager, err := NewManager(configs, states, store, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := manager.Tick(context.Background(), time.Unix(1000, 0).UTC()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	// Outer: err = 50-40 = 10, output = 10. Inner setpoint is that output
	// from the same tick: err = 10-4 = 6, output = 6.
	if got := readValue(t, store, "out_outer"); got != "10" {
		t.Fatalf("outer output = %q, want 10", got)
	}
	if got := readValue(t, store, "out_inner"); got != "6" {
		t.Fatalf("inner output = %q, want 6", got)
	}
}

func TestSetpointItemOverridesConstant(t *testing.T) {
	configs := controlmemory.NewConfigRepository()
	states := controlmemory.NewStateRepository()
	store := pointmemory.NewStore()

	configs.Put(control.Config{
		ID:             "loop1",
		Kp:             1,
		OutputMin:      0,
		OutputMax:      100,
		PVItemID:       "pv1",
		SetpointItemID: "sp1",
		Setpoint:       99,
		OutputItemID:   "out1",
		Enabled:        true,
	})
	setAnalog(t, store, "pv1", "20", 1000)
	setAnalog(t, store, "sp1", "30", 1000)

	manager, err := NewManager(configs, states, store, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := manager.Tick(context.Background(), time.Unix(1000, 0).UTC()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := readValue(t, store, "out1"); got != "10" {
		t.Fatalf("output = %q, want 10 from setpoint item", got)
	}
}

func TestDigitalLoopWritesBooleanPoint(t *testing.T) {
	configs := controlmemory.NewConfigRepository()
	states := controlmemory.NewStateRepository()
	store := pointmemory.NewStore()

	configs.Put(control.Config{
		ID:             "heater",
		DigitalOutput:  true,
		HysteresisHigh: 2,
		HysteresisLow:  2,
		PVItemID:       "temp",
		Setpoint:       50,
		OutputItemID:   "relay",
		Enabled:        true,
	})
	setAnalog(t, store, "temp", "45", 1000)

	manager, err := NewManager(configs, states, store, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := manager.Tick(context.Background(), time.Unix(1000, 0).UTC()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := readValue(t, store, "relay"); got != "1" {
		t.Fatalf("relay = %q, want 1", got)
	}

	point, _, _ := store.Get(context.Background(), "relay")
	if point.Kind != points.KindDigitalOutput {
		t.Fatalf("relay kind = %q, want digital output", point.Kind)
	}
}

func TestFaultedLoopDoesNotStopOthers(t *testing.T) {
	configs := controlmemory.NewConfigRepository()
	states := controlmemory.NewStateRepository()
	store := pointmemory.NewStore()

	// loop1 has no process variable point; loop2 is healthy.
	configs.Put(control.Config{
		ID:           "loop1",
		Kp:           1,
		PVItemID:     "missing",
		OutputItemID: "out1",
		Enabled:      true,
	})
	configs.Put(control.Config{
		ID:           "loop2",
		Kp:           1,
		PVItemID:     "pv2",
		Setpoint:     10,
		OutputItemID: "out2",
		Enabled:      true,
	})
	setAnalog(t, store, "pv2", "4", 1000)

	manager, err := NewManager(configs, states, store, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := manager.Tick(context.Background(), time.Unix(1000, 0).UTC()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := readValue(t, store, "out2"); got != "6" {
		t.Fatalf("healthy loop output = %q, want 6", got)
	}
	if _, ok, _ := store.Get(context.Background(), "out1"); ok {
		t.Fatal("faulted loop must not write an output")
	}
}

func TestStatePersistsAcrossTicks(t *testing.T) {
	configs := controlmemory.NewConfigRepository()
	states := controlmemory.NewStateRepository()
	store := pointmemory.NewStore()

	cfg := control.Config{
		ID:           "loop1",
		Ki:           1,
		IntegralMin:  -100,
		IntegralMax:  100,
		OutputMin:    0,
		OutputMax:    100,
		PVItemID:     "pv1",
		Setpoint:     10,
		OutputItemID: "out1",
		Enabled:      true,
	}
	configs.Put(cfg)
	setAnalog(t, store, "pv1", "5", 1000)

	manager, err := NewManager(configs, states, store, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	base := time.Unix(1000, 0).UTC()
	for i := 0; i < 3; i++ {
		if err := manager.Tick(context.Background(), base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	state, err := states.Get(context.Background(), "loop1")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state == nil {
		t.Fatal("state must be persisted")
	}
	// err = 5 with dt = 1 on every tick.
	if state.Integral != 15 {
		t.Fatalf("integral = %v, want 15", state.Integral)
	}
	if state.ConfigHash != cfg.Hash() {
		t.Fatal("config hash must be persisted")
	}
}
