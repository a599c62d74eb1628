package control

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Cascade levels.
const (
	LevelStandalone = 0
	LevelOuter      = 1
	LevelInner      = 2
)

// Config holds the tunable parameters of one control loop.
// DerivativeFilter is the low-pass blend factor in [0,1): 0 disables
// filtering, values near 1 smooth harder. HysteresisHigh/Low are offsets
// around the setpoint used when DigitalOutput is set.
type Config struct {
	ID               string
	Kp               float64
	Ki               float64
	Kd               float64
	DerivativeFilter float64
	IntegralMin      float64
	IntegralMax      float64
	OutputMin        float64
	OutputMax        float64
	MaxSlewPerTick   float64
	DigitalOutput    bool
	HysteresisHigh   float64
	HysteresisLow    float64
	CascadeLevel     int
	ParentID         string
	PVItemID         string
	SetpointItemID   string
	Setpoint         float64
	OutputItemID     string
	Enabled          bool
}

// State is the persisted runtime state of one control loop. It is loaded
// from storage on process start so restarts continue without a
// discontinuity.
type State struct {
	LoopID             string
	Integral           float64
	PrevPV             float64
	FilteredDerivative float64
	PrevOutput         float64
	DigitalOutputState bool
	LastUpdate         time.Time
	ConfigHash         string
	Initialized        bool
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if c.ID == "" {
		return errors.New("pid config: empty id")
	}
	if c.PVItemID == "" {
		return errors.New("pid config: empty process variable item")
	}
	if c.OutputItemID == "" {
		return errors.New("pid config: empty output item")
	}
	if c.DerivativeFilter < 0 || c.DerivativeFilter >= 1 {
		return errors.New("pid config: derivative filter out of range")
	}
	switch c.CascadeLevel {
	case LevelStandalone, LevelOuter:
	case LevelInner:
		if c.ParentID == "" {
			return errors.New("pid config: inner loop requires parent id")
		}
	default:
		return errors.New("pid config: invalid cascade level")
	}
	return nil
}

// Hash computes a stable digest over the ordered tunable parameters. Any
// change to a tunable changes the hash, which forces a state reset on the
// next step.
func (c Config) Hash() string {
	fields := []float64{
		c.Kp, c.Ki, c.Kd,
		c.DerivativeFilter,
		c.IntegralMin, c.IntegralMax,
		c.OutputMin, c.OutputMax,
		c.MaxSlewPerTick,
		c.HysteresisHigh, c.HysteresisLow,
	}
	var b strings.Builder
	for _, field := range fields {
		b.WriteString(strconv.FormatFloat(field, 'g', -1, 64))
		b.WriteByte('|')
	}
	if c.DigitalOutput {
		b.WriteString("digital")
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Step advances one loop by one tick. It is a pure function of its inputs,
// which is what makes restart bumpless: feeding the persisted state back in
// continues the sequence exactly.
//
// A config-hash mismatch zeroes the integral and filtered derivative before
// computing, so accumulated error never transfers across a retuning event.
// The returned reset flag reports that recovery path for observability.
func Step(cfg Config, state State, processVariable, setpoint float64, now time.Time) (output float64, next State, reset bool) {
	next = state
	next.LoopID = cfg.ID

	hash := cfg.Hash()
	if state.ConfigHash != hash {
		next.Integral = 0
		next.FilteredDerivative = 0
		next.ConfigHash = hash
		reset = true
	}

	dt := 1.0
	if next.Initialized && !state.LastUpdate.IsZero() {
		if delta := now.Sub(state.LastUpdate).Seconds(); delta > 0 {
			dt = delta
		}
	}

	err := setpoint - processVariable

	integral := next.Integral + err*dt
	integral = clamp(integral, cfg.IntegralMin, cfg.IntegralMax)

	// Derivative on measurement, low-pass filtered against noise.
	var raw float64
	if next.Initialized {
		raw = -(processVariable - state.PrevPV) / dt
	}
	filtered := cfg.DerivativeFilter*next.FilteredDerivative + (1-cfg.DerivativeFilter)*raw

	output = cfg.Kp*err + cfg.Ki*integral + cfg.Kd*filtered
	output = clamp(output, cfg.OutputMin, cfg.OutputMax)

	if cfg.MaxSlewPerTick > 0 && next.Initialized {
		output = clamp(output, state.PrevOutput-cfg.MaxSlewPerTick, state.PrevOutput+cfg.MaxSlewPerTick)
	}

	if cfg.DigitalOutput {
		on := next.DigitalOutputState
		switch {
		case processVariable < setpoint-cfg.HysteresisLow:
			on = true
		case processVariable > setpoint+cfg.HysteresisHigh:
			on = false
		}
		next.DigitalOutputState = on
		output = 0
		if on {
			output = 1
		}
	}

	next.Integral = integral
	next.PrevPV = processVariable
	next.FilteredDerivative = filtered
	next.PrevOutput = output
	next.LastUpdate = now
	next.Initialized = true
	return output, next, reset
}

func clamp(value, min, max float64) float64 {
	if max <= min {
		return value
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
