package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotTaken is the repository's translation of a duplicate-key error
	// from the partial unique indexes. It means a live booking already holds
	// the slot; it is never raised for any other storage failure.
	ErrSlotTaken = errors.New("slot already held by a live booking")
)
