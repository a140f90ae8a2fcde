package transform

import (
	"errors"
	"fmt"

	"github.com/dshills/folio/internal/model"
)

// ErrUnknownStep is returned when decoding a step record of an unknown type.
var ErrUnknownStep = errors.New("unknown step type")

// StepError reports a step that could not be applied.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step.ToRecord().StepType, e.Err)
}

// Unwrap returns the underlying model error.
func (e *StepError) Unwrap() error {
	return e.Err
}

func failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidReplace, fmt.Sprintf(format, args...))
}
