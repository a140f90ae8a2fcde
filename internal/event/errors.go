package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus.
var (
	// ErrBusClosed is returned by operations on a closed bus.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrInvalidEvent is returned when an event does not carry a topic.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidTopic is returned when a topic is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrHandlerPanic matches every PanicError.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// HandlerError wraps an error returned by a handler.
type HandlerError struct {
	SubscriptionID string
	Topic          string
	Err            error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s on %s: %v", e.SubscriptionID, e.Topic, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// PanicError reports a recovered handler panic.
type PanicError struct {
	SubscriptionID string
	Topic          string
	Value          any
	Stack          string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s on %s panicked: %v", e.SubscriptionID, e.Topic, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
