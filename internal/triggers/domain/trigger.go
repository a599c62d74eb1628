package triggers

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger defines a daily active window bounded by two cron expressions.
type Trigger struct {
	ID         string
	StartExpr  string
	EndExpr    string
	IsDisabled bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ScheduledAction is a write bound to a trigger. While the trigger is
// active the value is re-written every tick (continuous enforcement, not
// edge-triggered).
type ScheduledAction struct {
	ID        string
	TriggerID string
	ItemID    string
	Value     string
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks trigger invariants.
func (t Trigger) Validate() error {
	if t.ID == "" {
		return errors.New("trigger: empty id")
	}
	if _, err := cronParser.Parse(t.StartExpr); err != nil {
		return fmt.Errorf("trigger %s: start expression: %w", t.ID, err)
	}
	if _, err := cronParser.Parse(t.EndExpr); err != nil {
		return fmt.Errorf("trigger %s: end expression: %w", t.ID, err)
	}
	return nil
}

// Window computes today's start and end instants: the next occurrence of
// each cron expression anchored at local midnight.
func (t Trigger) Window(now time.Time, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	startSched, err := cronParser.Parse(t.StartExpr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("trigger %s: start expression: %w", t.ID, err)
	}
	endSched, err := cronParser.Parse(t.EndExpr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("trigger %s: end expression: %w", t.ID, err)
	}
	local := now.In(loc)
	// Next is exclusive of its anchor, so back off one second to keep an
	// occurrence at exactly 00:00.
	anchor := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).Add(-time.Second)
	return startSched.Next(anchor), endSched.Next(anchor), nil
}

// Active reports whether now falls inside [start, end], inclusive on both
// ends. Windows whose end precedes their start (crossing midnight) are
// reported inactive; that shape is unsupported.
func (t Trigger) Active(now time.Time, loc *time.Location) (bool, error) {
	start, end, err := t.Window(now, loc)
	if err != nil {
		return false, err
	}
	if end.Before(start) {
		return false, nil
	}
	if now.Before(start) || now.After(end) {
		return false, nil
	}
	return true, nil
}
