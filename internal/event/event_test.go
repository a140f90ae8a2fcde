package event

import (
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/folio/internal/event/topic"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent(topic.ConfigReloaded, change{1}, "config")
	if e.Metadata.ID == uuid.Nil {
		t.Error("missing id")
	}
	if e.Metadata.Timestamp.IsZero() {
		t.Error("missing timestamp")
	}
	other := NewEvent(topic.ConfigReloaded, change{1}, "config")
	if other.Metadata.ID == e.Metadata.ID {
		t.Error("ids should be unique")
	}

	c := e.WithCorrelation("tr-1").WithSource("watcher")
	if c.Metadata.CorrelationID != "tr-1" || c.Metadata.Source != "watcher" {
		t.Errorf("metadata = %+v", c.Metadata)
	}
	if e.Metadata.CorrelationID != "" {
		t.Error("WithCorrelation modified the original")
	}
}

func TestEnvelope(t *testing.T) {
	e := NewEvent(topic.StateChanged, change{3}, "editor")
	env := ToEnvelope(e)
	if env.Topic != topic.StateChanged || env.Metadata.ID != e.Metadata.ID {
		t.Errorf("envelope = %+v", env)
	}
	if p, ok := env.Payload.(change); !ok || p.version != 3 {
		t.Errorf("envelope payload = %#v, want the bare change", env.Payload)
	}
	if ToEnvelope(env).Topic != topic.StateChanged {
		t.Error("envelope should pass through")
	}
	if ToEnvelope("x").Topic != "" {
		t.Error("non-event should yield empty envelope")
	}
	typed := NewEnvelope(e)
	if typed.Payload.(change).version != 3 {
		t.Errorf("payload = %v", typed.Payload)
	}
	if !FilterPayload(func(c change) bool { return c.version == 3 })(typed) {
		t.Error("payload filter should see through envelopes")
	}
}

func TestFilters(t *testing.T) {
	e := NewEvent(topic.StateChanged, change{}, "editor.core").WithCorrelation("c")
	tests := []struct {
		name   string
		filter FilterFunc
		want   bool
	}{
		{"source", FilterBySource("editor.core"), true},
		{"source mismatch", FilterBySource("editor"), false},
		{"source prefix", FilterBySourcePrefix("editor."), true},
		{"topic", FilterByTopic("state.*"), true},
		{"topic mismatch", FilterByTopic("config.*"), false},
		{"correlation", FilterByCorrelation("c"), true},
		{"and", FilterAnd(FilterBySource("editor.core"), FilterByTopic("config.*")), false},
		{"or", FilterOr(FilterBySource("x"), FilterByTopic("state.changed")), true},
		{"not", FilterNot(FilterBySource("x")), true},
	}
	for _, tt := range tests {
		if got := tt.filter(e); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
	if FilterBySource("")(5) {
		t.Error("values without metadata should be rejected")
	}
}

func TestPriorityString(t *testing.T) {
	tests := map[Priority]string{
		PriorityCritical: "critical",
		PriorityHigh:     "high",
		50:               "high",
		PriorityNormal:   "normal",
		PriorityLow:      "low",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Priority(%d) = %q, want %q", int(p), got, want)
		}
	}
}
