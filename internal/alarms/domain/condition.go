package alarms

import (
	"strconv"
	"time"

	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
)

type conditionKey struct {
	digital bool
	compare CompareType
}

type conditionFunc func(def Definition, point points.Point) (bool, error)

// conditionTable dispatches {item kind class x compare type} to a pure
// evaluator. Missing entries mean the combination is unsupported.
var conditionTable = map[conditionKey]conditionFunc{
	{false, CompareEqual}:    analogCompare(func(v, v1, _ float64) bool { return v == v1 }),
	{false, CompareNotEqual}: analogCompare(func(v, v1, _ float64) bool { return v != v1 }),
	{false, CompareHigher}:   analogCompare(func(v, v1, _ float64) bool { return v > v1 }),
	{false, CompareLower}:    analogCompare(func(v, v1, _ float64) bool { return v < v1 }),
	{false, CompareBetween}:  analogCompare(func(v, v1, v2 float64) bool { return v >= v1 && v <= v2 }),
	{true, CompareEqual}:     digitalCompare(true),
	{true, CompareNotEqual}:  digitalCompare(false),
}

// Condition reports whether a comparative definition matches the point value.
// Returns ErrUnknownCompare for combinations with no evaluator.
func Condition(def Definition, point points.Point) (bool, error) {
	eval, ok := conditionTable[conditionKey{digital: point.Kind.Digital(), compare: def.Compare}]
	if !ok {
		return false, ErrUnknownCompare
	}
	return eval(def, point)
}

// TimedOut reports whether a timeout definition fires: no update received
// within TimeoutSeconds of now.
func TimedOut(def Definition, point points.Point, now time.Time) bool {
	if def.TimeoutSeconds <= 0 {
		return false
	}
	elapsed := now.Unix() - point.Timestamp
	return elapsed > int64(def.TimeoutSeconds)
}

func analogCompare(match func(v, v1, v2 float64) bool) conditionFunc {
	return func(def Definition, point points.Point) (bool, error) {
		value, err := point.Float()
		if err != nil {
			return false, err
		}
		v1, err := strconv.ParseFloat(def.Value1, 64)
		if err != nil {
			return false, ErrUnknownCompare
		}
		var v2 float64
		if def.Compare == CompareBetween {
			v2, err = strconv.ParseFloat(def.Value2, 64)
			if err != nil {
				return false, ErrUnknownCompare
			}
		}
		return match(value, v1, v2), nil
	}
}

func digitalCompare(equal bool) conditionFunc {
	return func(def Definition, point points.Point) (bool, error) {
		want := def.Value1 == "1" || def.Value1 == "true"
		if equal {
			return point.On() == want, nil
		}
		return point.On() != want, nil
	}
}
