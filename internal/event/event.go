package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/folio/internal/event/topic"
)

// Event is a typed notification. Events are values; the With methods
// return modified copies.
type Event[T any] struct {
	// Type is the topic the event is published on.
	Type topic.Topic

	// Payload carries the event data.
	Payload T

	// Metadata carries identity and provenance.
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	// ID identifies this event instance.
	ID uuid.UUID

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source names the component that published the event.
	Source string

	// CorrelationID links the event to the operation that caused it,
	// such as the id of the transaction whose application it reports.
	CorrelationID string
}

// NewEvent creates an event with fresh metadata.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.New(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic implements TopicProvider.
func (e Event[T]) EventTopic() topic.Topic { return e.Type }

// EventMetadata implements MetadataProvider.
func (e Event[T]) EventMetadata() Metadata { return e.Metadata }

// Envelope implements EnvelopeProvider.
func (e Event[T]) Envelope() Envelope { return NewEnvelope(e) }

// WithCorrelation returns a copy with the correlation id set.
func (e Event[T]) WithCorrelation(id string) Event[T] {
	e.Metadata.CorrelationID = id
	return e
}

// WithSource returns a copy with a different source.
func (e Event[T]) WithSource(source string) Event[T] {
	e.Metadata.Source = source
	return e
}

// TopicProvider is implemented by anything that can be published.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by events that carry metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}

// Envelope is the type-erased view of an event.
type Envelope struct {
	Topic    topic.Topic
	Payload  any
	Metadata Metadata
}

// NewEnvelope erases the payload type of e.
func NewEnvelope[T any](e Event[T]) Envelope {
	return Envelope{Topic: e.Type, Payload: e.Payload, Metadata: e.Metadata}
}

// EventTopic implements TopicProvider.
func (e Envelope) EventTopic() topic.Topic { return e.Topic }

// EventMetadata implements MetadataProvider.
func (e Envelope) EventMetadata() Metadata { return e.Metadata }

// EnvelopeProvider is implemented by events that can erase their own
// payload type.
type EnvelopeProvider interface {
	Envelope() Envelope
}

// ToEnvelope converts a published value to an Envelope. Typed events
// carry their bare payload; other topic providers are their own payload.
// The Envelope is zero when ev has no topic.
func ToEnvelope(ev any) Envelope {
	switch e := ev.(type) {
	case Envelope:
		return e
	case EnvelopeProvider:
		return e.Envelope()
	}
	tp, ok := ev.(TopicProvider)
	if !ok {
		return Envelope{}
	}
	env := Envelope{Topic: tp.EventTopic(), Payload: ev}
	if mp, ok := ev.(MetadataProvider); ok {
		env.Metadata = mp.EventMetadata()
	}
	return env
}
