package alarms

import "errors"

var (
	// ErrNotFound indicates a missing alarm record.
	ErrNotFound = errors.New("alarm: not found")
	// ErrDuplicateID indicates an insert with an already-used definition id.
	ErrDuplicateID = errors.New("alarm: duplicate id")
	// ErrDeleted indicates an edit against a soft-deleted definition.
	ErrDeleted = errors.New("alarm: definition deleted")
	// ErrUnknownCompare indicates a compare type with no evaluator.
	ErrUnknownCompare = errors.New("alarm: unknown compare type")
)
