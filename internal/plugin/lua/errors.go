package lua

import (
	"errors"
	"fmt"
)

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrTimeout is returned when a call runs longer than the state's
	// timeout.
	ErrTimeout = errors.New("lua execution timeout")
)

// ScriptError reports a failure inside a chunk or function.
type ScriptError struct {
	// Chunk names the file or string that was running.
	Chunk string
	Err   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("lua %s: %v", e.Chunk, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }
