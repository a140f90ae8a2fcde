package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrHostClosed is returned by a Host after Close.
	ErrHostClosed = errors.New("plugin host is closed")

	// ErrInvalidRule is returned for rule declarations without a name,
	// a pattern or an action, or with a pattern that does not compile.
	ErrInvalidRule = errors.New("invalid input rule")
)

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
