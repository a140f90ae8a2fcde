package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid matches every ValidationError.
	ErrInvalid = errors.New("invalid configuration")

	// ErrNoBus is returned when reloads cannot be published.
	ErrNoBus = errors.New("config: reloader has no event bus")
)

// ValidationError describes one rejected setting.
type ValidationError struct {
	// Path is the dotted setting path, such as "history.depth".
	Path    string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is allows errors.Is to match ValidationError with ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}
