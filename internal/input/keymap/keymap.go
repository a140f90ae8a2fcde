package keymap

import (
	"errors"
	"fmt"

	"github.com/dshills/folio/internal/input/key"
)

// Layer priorities.
const (
	PriorityBase    = 0
	PriorityDefault = 10
	PriorityUser    = 100
)

// UserKeymapName names the keymap built from configured bindings.
const UserKeymapName = "user"

// Binding maps one chord to a command name.
type Binding struct {
	// Keys is a chord spec understood by key.Parse.
	Keys   string `json:"keys" yaml:"keys"`
	Action string `json:"action" yaml:"action"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Keymap is one named layer of bindings. Bindings sharing a chord are
// tried in slice order.
type Keymap struct {
	Name     string `json:"name" yaml:"name"`
	Priority int    `json:"priority,omitempty" yaml:"priority,omitempty"`
	// Source records where the layer came from: "default", "config",
	// "file:<path>" or a script path.
	Source   string    `json:"source,omitempty" yaml:"source,omitempty"`
	Bindings []Binding `json:"bindings" yaml:"bindings"`
}

// New creates an empty layer.
func New(name string, priority int) *Keymap {
	return &Keymap{Name: name, Priority: priority}
}

// Bind appends a binding and returns k for chaining.
func (k *Keymap) Bind(keys, action string) *Keymap {
	k.Bindings = append(k.Bindings, Binding{Keys: keys, Action: action})
	return k
}

// Validate reports every binding with a missing field or a chord that
// does not parse.
func (k *Keymap) Validate() error {
	var errs []error
	for i, b := range k.Bindings {
		switch {
		case b.Keys == "":
			errs = append(errs, fmt.Errorf("binding %d: empty keys", i))
		case b.Action == "":
			errs = append(errs, fmt.Errorf("binding %d (%s): empty action", i, b.Keys))
		default:
			if _, err := key.Parse(b.Keys); err != nil {
				errs = append(errs, fmt.Errorf("binding %d (%s): %w", i, b.Keys, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Clone returns a copy that shares nothing with k.
func (k *Keymap) Clone() *Keymap {
	c := *k
	c.Bindings = append([]Binding(nil), k.Bindings...)
	return &c
}

// ParsedKeymap is a keymap with its chords resolved for one platform.
type ParsedKeymap struct {
	*Keymap
	ParsedBindings []ParsedBinding
}

// ParsedBinding is a binding with its canonical chord.
type ParsedBinding struct {
	Binding
	Event key.Event
	Chord string

	order int
}

// Match reports whether ev is this binding's chord.
func (pb *ParsedBinding) Match(ev key.Event) bool {
	return pb != nil && pb.Chord == ev.Chord()
}

// Parse resolves every chord. mac selects the meaning of "Mod".
func (k *Keymap) Parse(mac bool) (*ParsedKeymap, error) {
	out := &ParsedKeymap{Keymap: k, ParsedBindings: make([]ParsedBinding, 0, len(k.Bindings))}
	for i, b := range k.Bindings {
		if b.Action == "" {
			return nil, fmt.Errorf("binding %q: empty action", b.Keys)
		}
		ev, err := key.ParseFor(b.Keys, mac)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Keys, err)
		}
		out.ParsedBindings = append(out.ParsedBindings, ParsedBinding{Binding: b, Event: ev, Chord: ev.Chord(), order: i})
	}
	return out, nil
}

// BindingMatch is a binding found by a registry lookup.
type BindingMatch struct {
	*ParsedBinding
	Keymap *Keymap

	// fallback ranks how the chord was reached: 0 for the exact chord,
	// higher for relaxed forms such as the event without Shift.
	fallback int
	// seq is the negated registration sequence so later layers sort
	// first among equal priorities.
	seq int
}

// less orders matches by layer priority, then exact chords before
// relaxed ones, then later layers, then declaration order.
func (bm BindingMatch) less(other BindingMatch) bool {
	if bm.Keymap.Priority != other.Keymap.Priority {
		return bm.Keymap.Priority > other.Keymap.Priority
	}
	if bm.fallback != other.fallback {
		return bm.fallback < other.fallback
	}
	if bm.seq != other.seq {
		return bm.seq < other.seq
	}
	return bm.order < other.order
}
