package errors

import "errors"

var (
	ErrNotFound = errors.New("tenant not found")

	ErrInvalidID = errors.New("invalid tenant ID format")

	ErrOfferingNotFound = errors.New("service offering not found")
)
