package event

import "context"

// Priority orders handlers; lower values run first.
type Priority int

const (
	// PriorityCritical is for handlers that keep views consistent with the state.
	PriorityCritical Priority = 0

	// PriorityHigh is for editor-internal bookkeeping.
	PriorityHigh Priority = 100

	// PriorityNormal is the default, used by scripts and embedders.
	PriorityNormal Priority = 200

	// PriorityLow is for logging handlers that observe everything else.
	PriorityLow Priority = 300
)

func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler receives published events.
type Handler interface {
	// Handle processes an event. Handlers type-assert the event value.
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// TypedHandlerFunc handles events with a known payload type.
type TypedHandlerFunc[T any] func(ctx context.Context, event Event[T]) error

// AsHandler adapts fn to Handler. Events of other payload types are
// skipped.
func AsHandler[T any](fn TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, ev any) error {
		if e, ok := ev.(Event[T]); ok {
			return fn(ctx, e)
		}
		return nil
	})
}

// FilterFunc decides whether an event reaches a handler.
type FilterFunc func(event any) bool

// Stats reports bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	HandlersExecuted  uint64
	HandlerErrors     uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// PanicHandler is told about every recovered handler panic.
type PanicHandler func(event any, err *PanicError)
