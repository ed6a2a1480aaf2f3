package edgeserve

import "errors"

var (
	// ErrNotFound is returned when an object or display name does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
