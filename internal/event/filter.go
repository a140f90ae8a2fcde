package event

import (
	"strings"

	"github.com/dshills/folio/internal/event/topic"
)

func metadataOf(ev any) (Metadata, bool) {
	mp, ok := ev.(MetadataProvider)
	if !ok {
		return Metadata{}, false
	}
	return mp.EventMetadata(), true
}

// FilterBySource accepts events published by source.
func FilterBySource(source string) FilterFunc {
	return func(ev any) bool {
		m, ok := metadataOf(ev)
		return ok && m.Source == source
	}
}

// FilterBySourcePrefix accepts events whose source starts with prefix.
func FilterBySourcePrefix(prefix string) FilterFunc {
	return func(ev any) bool {
		m, ok := metadataOf(ev)
		return ok && strings.HasPrefix(m.Source, prefix)
	}
}

// FilterByTopic accepts events whose topic matches pattern.
func FilterByTopic(pattern topic.Topic) FilterFunc {
	return func(ev any) bool {
		tp, ok := ev.(TopicProvider)
		return ok && tp.EventTopic().Matches(pattern)
	}
}

// FilterByCorrelation accepts events correlated with id.
func FilterByCorrelation(id string) FilterFunc {
	return func(ev any) bool {
		m, ok := metadataOf(ev)
		return ok && m.CorrelationID == id
	}
}

// FilterPayload accepts events of payload type T that satisfy predicate.
func FilterPayload[T any](predicate func(T) bool) FilterFunc {
	return func(ev any) bool {
		switch e := ev.(type) {
		case Event[T]:
			return predicate(e.Payload)
		case Envelope:
			p, ok := e.Payload.(T)
			return ok && predicate(p)
		}
		return false
	}
}

// FilterAnd accepts events accepted by every filter.
func FilterAnd(filters ...FilterFunc) FilterFunc {
	return func(ev any) bool {
		for _, f := range filters {
			if !f(ev) {
				return false
			}
		}
		return true
	}
}

// FilterOr accepts events accepted by any filter.
func FilterOr(filters ...FilterFunc) FilterFunc {
	return func(ev any) bool {
		for _, f := range filters {
			if f(ev) {
				return true
			}
		}
		return false
	}
}

// FilterNot inverts filter.
func FilterNot(filter FilterFunc) FilterFunc {
	return func(ev any) bool { return !filter(ev) }
}
