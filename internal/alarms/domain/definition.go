package alarms

import (
	"errors"
	"time"
)

// Type distinguishes value-comparison alarms from staleness alarms.
type Type string

const (
	TypeComparative Type = "comparative"
	TypeTimeout     Type = "timeout"
)

// CompareType is the comparison applied by a comparative alarm.
type CompareType string

const (
	CompareEqual    CompareType = "equal"
	CompareNotEqual CompareType = "not_equal"
	CompareHigher   CompareType = "higher"
	CompareLower    CompareType = "lower"
	CompareBetween  CompareType = "between"
)

// Definition is the rule for flagging abnormal point values.
// Value2 is only meaningful when Compare is CompareBetween. DelaySeconds is
// the debounce applied before activation; TimeoutSeconds is the staleness
// threshold used by timeout alarms.
type Definition struct {
	ID             string
	ItemID         string
	ItemName       string
	ItemNameFa     string
	Type           Type
	Compare        CompareType
	Value1         string
	Value2         string
	DelaySeconds   int
	TimeoutSeconds int
	Priority       string
	Message        string
	MessageFa      string
	OnText         string
	OffText        string
	OnTextFa       string
	OffTextFa      string
	IsDisabled     bool
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Active is a currently-triggered instance of a definition.
// At most one exists per alarm id at a time.
type Active struct {
	ID           string
	AlarmID      string
	ItemID       string
	Message      string
	MessageFa    string
	ActivatedAt  time.Time
	Acknowledged bool
	AckedAt      time.Time
}

// HistoryEntry is an immutable record of one alarm activation.
type HistoryEntry struct {
	ID        string
	ItemID    string
	AlarmID   string
	Time      time.Time
	Message   string
	MessageFa string
}

// PendingState tracks a condition that is true but still inside its
// debounce delay.
type PendingState struct {
	AlarmID      string
	PendingSince time.Time
	LastValue    string
	UpdatedAt    time.Time
}

// Validate checks definition invariants.
func (d Definition) Validate() error {
	if d.ID == "" {
		return errors.New("alarm definition: empty id")
	}
	if d.ItemID == "" {
		return errors.New("alarm definition: empty item id")
	}
	switch d.Type {
	case TypeComparative:
		if !d.Compare.Valid() {
			return errors.New("alarm definition: invalid compare type")
		}
		if d.Value1 == "" {
			return errors.New("alarm definition: empty value1")
		}
		if d.Compare == CompareBetween && d.Value2 == "" {
			return errors.New("alarm definition: between requires value2")
		}
	case TypeTimeout:
		if d.TimeoutSeconds <= 0 {
			return errors.New("alarm definition: timeout requires positive seconds")
		}
	default:
		return errors.New("alarm definition: invalid type")
	}
	if d.DelaySeconds < 0 {
		return errors.New("alarm definition: negative delay")
	}
	return nil
}

// Valid reports whether the compare type is supported.
func (c CompareType) Valid() bool {
	switch c {
	case CompareEqual, CompareNotEqual, CompareHigher, CompareLower, CompareBetween:
		return true
	default:
		return false
	}
}
