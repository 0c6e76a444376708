package domain

import "errors"

var (
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInput marks a malformed or out-of-range parameter, rejected
	// before any computation takes place.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAssignmentConflict marks an attempt to cover a slot that already has
	// an active assignment. The caller must cancel the existing one first.
	ErrAssignmentConflict = errors.New("slot already has an active assignment")
)
