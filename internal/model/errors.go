package model

import (
	"errors"
	"fmt"
)

// Errors returned by model operations.
var (
	// ErrSchema indicates an invalid schema declaration. It is fatal to
	// the schema being built.
	ErrSchema = errors.New("schema error")

	// ErrSchemaViolation indicates a node or mark combination the schema forbids.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrInvalidReplace indicates a replace that has no legal splice point.
	ErrInvalidReplace = errors.New("invalid replace")

	// ErrOutOfRange indicates a position outside the document.
	ErrOutOfRange = errors.New("position out of range")

	// ErrDeserialization indicates an interchange record or markup that
	// cannot be turned into a document.
	ErrDeserialization = errors.New("deserialization error")
)

// SchemaError describes a problem found while building a schema.
type SchemaError struct {
	Type    string // node or mark type the problem was found on
	Message string
}

func (e *SchemaError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("schema error: %s", e.Message)
	}
	return fmt.Sprintf("schema error: %s: %s", e.Type, e.Message)
}

// Unwrap returns ErrSchema.
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

func schemaErrorf(typeName, format string, args ...any) error {
	return &SchemaError{Type: typeName, Message: fmt.Sprintf(format, args...)}
}

// DeserializationError describes a record or markup element that could not
// be turned into a node or mark.
type DeserializationError struct {
	Path    string // location inside the input, e.g. "content[1].marks[0]"
	Message string
	Err     error
}

func (e *DeserializationError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path == "" {
		return fmt.Sprintf("deserialization error: %s", msg)
	}
	return fmt.Sprintf("deserialization error at %s: %s", e.Path, msg)
}

// Is reports ErrDeserialization as a match.
func (e *DeserializationError) Is(target error) bool {
	return target == ErrDeserialization
}

// Unwrap returns the underlying error, if any.
func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func violationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...))
}

func replaceErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidReplace, fmt.Sprintf(format, args...))
}

func rangeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOutOfRange, fmt.Sprintf(format, args...))
}
