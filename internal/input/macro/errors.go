package macro

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGesture is returned for malformed gestures.
	ErrInvalidGesture = errors.New("invalid gesture")

	// ErrNotRecording is returned by Stop without a recording.
	ErrNotRecording = errors.New("not recording")

	// ErrAlreadyRecording is returned by Start during a recording.
	ErrAlreadyRecording = errors.New("already recording")

	// ErrAlreadyPlaying is returned when Play is called during playback.
	ErrAlreadyPlaying = errors.New("already playing a macro")

	// ErrEmptyMacro is returned when there is nothing to play.
	ErrEmptyMacro = errors.New("macro is empty")
)

// ScriptError reports a malformed line in a script.
type ScriptError struct {
	Line int
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// PlaybackError reports the gesture that failed during playback.
type PlaybackError struct {
	Index   int
	Gesture Gesture
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("gesture %d (%s): %v", e.Index+1, e.Gesture, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }
