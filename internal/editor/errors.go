package editor

import "errors"

// Errors returned by editor operations.
var (
	// ErrUnknownCommand indicates no command is registered under a name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrReadOnly indicates a document change was attempted on a
	// read-only editor.
	ErrReadOnly = errors.New("editor is read-only")

	// ErrNoSchema indicates neither a schema nor a document was configured.
	ErrNoSchema = errors.New("a schema or a document is required")
)
