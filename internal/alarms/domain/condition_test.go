package alarms

import (
	"errors"
	"testing"
	"time"

	points "github.com/mhdr/Monitoring2025-sub018/internal/points/domain"
)

func analogPoint(id, value string) points.Point {
	return points.Point{ID: id, Kind: points.KindAnalogInput, Value: value, Timestamp: 1000}
}

func digitalPoint(id, value string) points.Point {
	return points.Point{ID: id, Kind: points.KindDigitalInput, Value: value, Timestamp: 1000}
}

func TestConditionAnalogComparisons(t *testing.T) {
	cases := []struct {
		name    string
		compare CompareType
		value1  string
		value2  string
		point   string
		want    bool
	}{
		{"equal match", CompareEqual, "10", "", "10", true},
		{"equal miss", CompareEqual, "10", "", "10.5", false},
		{"not equal", CompareNotEqual, "10", "", "11", true},
		{"higher", CompareHigher, "40", "", "45", true},
		{"higher at threshold", CompareHigher, "40", "", "40", false},
		{"lower", CompareLower, "5", "", "4.9", true},
		{"between inside", CompareBetween, "10", "20", "15", true},
		{"between outside", CompareBetween, "10", "20", "25", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := Definition{
				ID:      "a1",
				ItemID:  "p1",
				Type:    TypeComparative,
				Compare: tc.compare,
				Value1:  tc.value1,
				Value2:  tc.value2,
			}
			got, err := Condition(def, analogPoint("p1", tc.point))
			if err != nil {
				t.Fatalf("condition: %v", err)
			}
			if got != tc.want {
				t.Fatalf("condition = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConditionBetweenInclusiveBounds(t *testing.T) {
	def := Definition{
		ID:      "a1",
		ItemID:  "p1",
		Type:    TypeComparative,
		Compare: CompareBetween,
		Value1:  "10",
		Value2:  "20",
	}
	for _, value := range []string{"10", "20"} {
		got, err := Condition(def, analogPoint("p1", value))
		if err != nil {
			t.Fatalf("condition: %v", err)
		}
		if !got {
			t.Fatalf("between should include bound %s", value)
		}
	}
}

func TestConditionDigital(t *testing.T) {
	def := Definition{
		ID:      "a1",
		ItemID:  "d1",
		Type:    TypeComparative,
		Compare: CompareEqual,
		Value1:  "1",
	}
	got, err := Condition(def, digitalPoint("d1", "1"))
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !got {
		t.Fatal("digital equal on-state should match")
	}

	def.Compare = CompareNotEqual
	got, err = Condition(def, digitalPoint("d1", "0"))
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	if !got {
		t.Fatal("digital not-equal off-state should match")
	}
}

func TestConditionUnsupportedCombination(t *testing.T) {
	def := Definition{
		ID:      "a1",
		ItemID:  "d1",
		Type:    TypeComparative,
		Compare: CompareBetween,
		Value1:  "0",
		Value2:  "1",
	}
	if _, err := Condition(def, digitalPoint("d1", "1")); !errors.Is(err, ErrUnknownCompare) {
		t.Fatalf("expected ErrUnknownCompare, got %v", err)
	}
}

func TestTimedOut(t *testing.T) {
	def := Definition{
		ID:             "a1",
		ItemID:         "p1",
		Type:           TypeTimeout,
		TimeoutSeconds: 30,
	}
	now := time.Unix(2000, 0)
	stale := points.Point{ID: "p1", Kind: points.KindAnalogInput, Value: "1", Timestamp: 1900}
	if !TimedOut(def, stale, now) {
		t.Fatal("stale point should time out")
	}
	fresh := points.Point{ID: "p1", Kind: points.KindAnalogInput, Value: "1", Timestamp: 1980}
	if TimedOut(def, fresh, now) {
		t.Fatal("fresh point should not time out")
	}
}
