package markup

import "errors"

// Errors returned by the serializer.
var (
	// ErrNoRenderer indicates a node or mark type without a render spec.
	ErrNoRenderer = errors.New("type has no renderer")

	// ErrNoContentHole indicates a render spec for a node with content
	// that does not say where the content goes.
	ErrNoContentHole = errors.New("render spec has no content hole")
)
