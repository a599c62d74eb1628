package control

import (
	"math"
	"testing"
	"time"
)

func basicConfig() Config {
	return Config{
		ID:           "loop1",
		Kp:           2.0,
		Ki:           0.5,
		Kd:           0.1,
		IntegralMin:  -100,
		IntegralMax:  100,
		OutputMin:    0,
		OutputMax:    100,
		PVItemID:     "pv1",
		OutputItemID: "out1",
		Enabled:      true,
	}
}

func TestStepIsDeterministic(t *testing.T) {
	cfg := basicConfig()
	now := time.Unix(1000, 0).UTC()
	state := State{LoopID: cfg.ID, ConfigHash: cfg.Hash()}

	out1, next1, _ := Step(cfg, state, 20, 50, now)
	out2, next2, _ := Step(cfg, state, 20, 50, now)
	if out1 != out2 {
		t.Fatalf("same inputs produced different outputs: %v vs %v", out1, out2)
	}
	if next1 != next2 {
		t.Fatalf("same inputs produced different states: %+v vs %+v", next1, next2)
	}
}

func TestBumplessRestartContinuesSequence(t *testing.T) {
	cfg := basicConfig()
	now := time.Unix(1000, 0).UTC()

	// Run a few ticks in one "process lifetime".
	state := State{LoopID: cfg.ID, ConfigHash: cfg.Hash()}
	for i := 0; i < 3; i++ {
		_, state, _ = Step(cfg, state, 20+float64(i), 50, now.Add(time.Duration(i)*time.Second))
	}
	wantOut, wantState, _ := Step(cfg, state, 25, 50, now.Add(3*time.Second))

	// Restarting means feeding the persisted state back in. A copy of the
	// state is what storage would hand back after a round trip.
	restored := state
	gotOut, gotState, reset := Step(cfg, restored, 25, 50, now.Add(3*time.Second))
	if reset {
		t.Fatal("restart with unchanged config must not reset")
	}
	if gotOut != wantOut {
		t.Fatalf("restart output = %v, want %v", gotOut, wantOut)
	}
	if gotState != wantState {
		t.Fatalf("restart state = %+v, want %+v", gotState, wantState)
	}
}

func TestRestartResumesFromPersistedIntegral(t *testing.T) {
	cfg := basicConfig()
	cfg.Kd = 0
	cfg.MaxSlewPerTick = 10
	now := time.Unix(1000, 0).UTC()

	state := State{
		LoopID:      cfg.ID,
		Integral:    5.0,
		PrevPV:      48,
		PrevOutput:  60,
		LastUpdate:  now.Add(-time.Second),
		ConfigHash:  cfg.Hash(),
		Initialized: true,
	}

	out, next, reset := Step(cfg, state, 48, 50, now)
	if reset {
		t.Fatal("unchanged config must not reset")
	}
	// err=2, integral=5+2*1=7, output=2*2+0.5*7=7.5, then slew-clamped
	// to PrevOutput-10 = 50.
	if out != 50 {
		t.Fatalf("output = %v, want 50", out)
	}
	if next.Integral != 7 {
		t.Fatalf("integral = %v, want 7", next.Integral)
	}
}

func TestConfigChangeResetsAccumulators(t *testing.T) {
	cfg := basicConfig()
	now := time.Unix(1000, 0).UTC()

	state := State{
		LoopID:      cfg.ID,
		Integral:    40,
		PrevPV:      20,
		PrevOutput:  50,
		LastUpdate:  now.Add(-time.Second),
		ConfigHash:  cfg.Hash(),
		Initialized: true,
	}

	retuned := cfg
	retuned.Ki = 1.0
	_, next, reset := Step(retuned, state, 20, 50, now)
	if !reset {
		t.Fatal("retuning must reset state")
	}
	if next.ConfigHash != retuned.Hash() {
		t.Fatal("new hash must be persisted")
	}
	// Integral restarts from zero: err=30, dt=1 so integral is 30, not 70.
	if next.Integral != 30 {
		t.Fatalf("integral = %v, want 30", next.Integral)
	}
}

func TestHashChangesWithEachTunable(t *testing.T) {
	base := basicConfig()
	mutations := map[string]func(*Config){
		"kp":        func(c *Config) { c.Kp++ },
		"ki":        func(c *Config) { c.Ki++ },
		"kd":        func(c *Config) { c.Kd++ },
		"filter":    func(c *Config) { c.DerivativeFilter = 0.5 },
		"imin":      func(c *Config) { c.IntegralMin-- },
		"imax":      func(c *Config) { c.IntegralMax++ },
		"omin":      func(c *Config) { c.OutputMin-- },
		"omax":      func(c *Config) { c.OutputMax++ },
		"slew":      func(c *Config) { c.MaxSlewPerTick = 5 },
		"hyst_high": func(c *Config) { c.HysteresisHigh = 1 },
		"hyst_low":  func(c *Config) { c.HysteresisLow = 1 },
		"digital":   func(c *Config) { c.DigitalOutput = true },
	}
	for name, mutate := range mutations {
		mutated := base
		mutate(&mutated)
		if mutated.Hash() == base.Hash() {
			t.Fatalf("%s: hash unchanged after mutation", name)
		}
	}

	// Non-tunable fields do not affect the hash.
	renamed := base
	renamed.ID = "other"
	renamed.PVItemID = "pv2"
	if renamed.Hash() != base.Hash() {
		t.Fatal("identity fields must not affect the hash")
	}
}

func TestSlewLimitBoundsConsecutiveOutputs(t *testing.T) {
	cfg := basicConfig()
	cfg.MaxSlewPerTick = 3
	now := time.Unix(1000, 0).UTC()

	state := State{LoopID: cfg.ID, ConfigHash: cfg.Hash()}
	var out, prev float64
	for i := 0; i < 10; i++ {
		out, state, _ = Step(cfg, state, 20, 80, now.Add(time.Duration(i)*time.Second))
		if i > 0 {
			if delta := math.Abs(out - prev); delta > cfg.MaxSlewPerTick+1e-9 {
				t.Fatalf("tick %d: slew %v exceeds limit %v", i, delta, cfg.MaxSlewPerTick)
			}
		}
		prev = out
	}
}

func TestIntegralClamp(t *testing.T) {
	cfg := basicConfig()
	cfg.IntegralMax = 10
	cfg.IntegralMin = -10
	now := time.Unix(1000, 0).UTC()

	state := State{LoopID: cfg.ID, ConfigHash: cfg.Hash()}
	for i := 0; i < 20; i++ {
		_, state, _ = Step(cfg, state, 0, 100, now.Add(time.Duration(i)*time.Second))
	}
	if state.Integral != 10 {
		t.Fatalf("integral = %v, want clamped to 10", state.Integral)
	}
}

func TestDigitalHysteresisHoldsInsideBand(t *testing.T) {
	cfg := basicConfig()
	cfg.DigitalOutput = true
	cfg.HysteresisHigh = 2
	cfg.HysteresisLow = 2
	now := time.Unix(1000, 0).UTC()
	setpoint := 50.0

	state := State{LoopID: cfg.ID, ConfigHash: cfg.Hash()}

	// Below the band: on.
	out, state, _ := Step(cfg, state, 47, setpoint, now)
	if out != 1 {
		t.Fatalf("below band: output = %v, want 1", out)
	}
	// Inside the band: hold last state.
	out, state, _ = Step(cfg, state, 51, setpoint, now.Add(time.Second))
	if out != 1 {
		t.Fatalf("inside band: output = %v, want held at 1", out)
	}
	// Above the band: off.
	out, state, _ = Step(cfg, state, 53, setpoint, now.Add(2*time.Second))
	if out != 0 {
		t.Fatalf("above band: output = %v, want 0", out)
	}
	// Inside the band again: still off.
	out, _, _ = Step(cfg, state, 49, setpoint, now.Add(3*time.Second))
	if out != 0 {
		t.Fatalf("inside band after off: output = %v, want held at 0", out)
	}
}

func TestValidate(t *testing.T) {
	cfg := basicConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	inner := cfg
	inner.CascadeLevel = LevelInner
	if err := inner.Validate(); err == nil {
		t.Fatal("inner loop without parent must be rejected")
	}
	inner.ParentID = "outer1"
	if err := inner.Validate(); err != nil {
		t.Fatalf("inner loop with parent rejected: %v", err)
	}

	bad := cfg
	bad.DerivativeFilter = 1
	if err := bad.Validate(); err == nil {
		t.Fatal("derivative filter of 1 must be rejected")
	}
}
