package points

import (
	"context"
	"errors"
	"strconv"
)

// Kind identifies the I/O class of a point.
type Kind string

const (
	KindAnalogInput   Kind = "analog_input"
	KindAnalogOutput  Kind = "analog_output"
	KindDigitalInput  Kind = "digital_input"
	KindDigitalOutput Kind = "digital_output"
)

// ErrNotFound indicates a missing point.
var ErrNotFound = errors.New("points: not found")

// Point is the latest known value of one monitored quantity.
// Values are string-encoded; Timestamp is unix seconds.
type Point struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

// Store is the shared live-value cache. Set is last-write-wins by timestamp:
// a write older than the stored timestamp must be dropped.
type Store interface {
	Get(ctx context.Context, itemID string) (Point, bool, error)
	Set(ctx context.Context, point Point) error
	List(ctx context.Context) ([]Point, error)
}

// Valid reports whether the kind is supported.
func (k Kind) Valid() bool {
	switch k {
	case KindAnalogInput, KindAnalogOutput, KindDigitalInput, KindDigitalOutput:
		return true
	default:
		return false
	}
}

// Digital reports whether the point carries a two-state value.
func (k Kind) Digital() bool {
	return k == KindDigitalInput || k == KindDigitalOutput
}

// Float parses the point value as a float64.
func (p Point) Float() (float64, error) {
	value, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0, errors.New("points: value is not numeric")
	}
	return value, nil
}

// On reports whether a digital point reads as switched on.
func (p Point) On() bool {
	return p.Value == "1" || p.Value == "true"
}
