package game

import "errors"

// Store errors. Callers match them with errors.Is; the store wraps them with
// the offending tag or id.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrCapacityExceeded   = errors.New("arena is full")
	ErrInvalidDimension   = errors.New("maze dimension must be positive")
	ErrEmptyTag           = errors.New("tank tag is empty")
	ErrEmptyID            = errors.New("projectile id is empty")
)
