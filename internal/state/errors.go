package state

import "errors"

// Errors returned by state operations.
var (
	// ErrInvalidSelection indicates selection endpoints that do not resolve
	// in the document.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrMismatchedTransaction indicates a transaction built on a
	// different document than the state it is applied to.
	ErrMismatchedTransaction = errors.New("transaction does not start at the state's document")
)
