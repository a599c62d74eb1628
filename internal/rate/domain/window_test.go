package rate

import (
	"errors"
	"testing"
	"time"
)

func at(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func TestAppendRejectsOutOfOrder(t *testing.T) {
	var w Window
	if err := w.Append(Sample{Timestamp: at(100), Value: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Append(Sample{Timestamp: at(100), Value: 2}); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("equal timestamp: got %v, want ErrOutOfOrder", err)
	}
	if err := w.Append(Sample{Timestamp: at(99), Value: 2}); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("older timestamp: got %v, want ErrOutOfOrder", err)
	}
	if w.Len() != 1 {
		t.Fatalf("rejected samples must not be stored, len = %d", w.Len())
	}
	if err := w.Append(Sample{Timestamp: at(101), Value: 2}); err != nil {
		t.Fatalf("newer timestamp rejected: %v", err)
	}
}

func TestRateNeedsTwoSamples(t *testing.T) {
	var w Window
	if _, err := w.Rate(); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("empty window: got %v, want ErrInsufficientData", err)
	}
	if err := w.Append(Sample{Timestamp: at(100), Value: 10}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := w.Rate(); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("single sample: got %v, want ErrInsufficientData", err)
	}
}

func TestRateValue(t *testing.T) {
	var w Window
	for _, s := range []Sample{
		{Timestamp: at(100), Value: 10},
		{Timestamp: at(105), Value: 12},
		{Timestamp: at(110), Value: 20},
	} {
		if err := w.Append(s); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	rate, err := w.Rate()
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	// (20 - 10) / 10s
	if rate != 1.0 {
		t.Fatalf("rate = %v, want 1.0", rate)
	}
}

func TestEvictBefore(t *testing.T) {
	var w Window
	for sec := int64(100); sec <= 160; sec += 10 {
		if err := w.Append(Sample{Timestamp: at(sec), Value: float64(sec)}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	evicted := w.EvictBefore(at(130))
	if evicted != 3 {
		t.Fatalf("evicted = %d, want 3", evicted)
	}
	if w.Len() != 4 {
		t.Fatalf("len = %d, want 4", w.Len())
	}
	// Sample exactly at the cutoff is retained.
	rate, err := w.Rate()
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rate != 1.0 {
		t.Fatalf("rate after eviction = %v, want 1.0", rate)
	}

	if evicted := w.EvictBefore(at(130)); evicted != 0 {
		t.Fatalf("second eviction = %d, want 0", evicted)
	}

	w.EvictBefore(at(161))
	if _, err := w.Rate(); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("fully evicted window: got %v, want ErrInsufficientData", err)
	}
}
