package rate

import (
	"errors"
	"time"
)

var (
	// ErrInsufficientData means fewer than two samples remain in range.
	ErrInsufficientData = errors.New("rate: insufficient data")
	// ErrOutOfOrder means a sample does not advance the window's time order.
	ErrOutOfOrder = errors.New("rate: sample out of order")
)

// Sample is one (timestamp, value) observation.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// WindowConfig names a monitored quantity and its sliding window span.
type WindowConfig struct {
	ID       string
	ItemID   string
	Duration time.Duration
	Enabled  bool
}

// Window is a bounded FIFO of strictly time-ordered samples. Appends are
// cheap so large windows stay usable; old samples are evicted before each
// rate computation instead of recomputing from a full history.
type Window struct {
	samples []Sample
}

// Append adds a sample. Timestamps must strictly increase.
func (w *Window) Append(sample Sample) error {
	if n := len(w.samples); n > 0 && !sample.Timestamp.After(w.samples[n-1].Timestamp) {
		return ErrOutOfOrder
	}
	w.samples = append(w.samples, sample)
	return nil
}

// EvictBefore drops samples older than the cutoff and reports how many.
func (w *Window) EvictBefore(cutoff time.Time) int {
	idx := 0
	for idx < len(w.samples) && w.samples[idx].Timestamp.Before(cutoff) {
		idx++
	}
	if idx == 0 {
		return 0
	}
	w.samples = append(w.samples[:0:0], w.samples[idx:]...)
	return idx
}

// Rate computes (newest value - oldest value) / elapsed seconds over the
// samples currently in the window.
func (w *Window) Rate() (float64, error) {
	if len(w.samples) < 2 {
		return 0, ErrInsufficientData
	}
	oldest := w.samples[0]
	newest := w.samples[len(w.samples)-1]
	elapsed := newest.Timestamp.Sub(oldest.Timestamp).Seconds()
	if elapsed <= 0 {
		return 0, ErrInsufficientData
	}
	return (newest.Value - oldest.Value) / elapsed, nil
}

// Len reports the current sample count.
func (w *Window) Len() int { return len(w.samples) }

// Clear empties the window.
func (w *Window) Clear() { w.samples = nil }
