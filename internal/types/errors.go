package types

import "errors"

var (
	// ErrNotFound signals that the targeted row does not exist. Handlers map
	// it to 404.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals bad input, including referential violations
	// surfaced by the store (a review or event pointing at a missing place).
	// Handlers map it to 400.
	ErrValidation = errors.New("validation failed")
)
