package macro

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/folio/internal/input/key"
)

// Kind identifies a gesture. The values double as script keywords.
type Kind string

const (
	KindKey   Kind = "key"
	KindText  Kind = "type"
	KindPaste Kind = "paste"
	KindExec  Kind = "exec"
	KindUndo  Kind = "undo"
	KindRedo  Kind = "redo"
)

func (k Kind) valid() bool {
	switch k {
	case KindKey, KindText, KindPaste, KindExec, KindUndo, KindRedo:
		return true
	}
	return false
}

// takesValue reports whether gestures of kind k carry a value.
func (k Kind) takesValue() bool {
	return k != KindUndo && k != KindRedo
}

// Gesture is one recorded user action. Value is the chord, text,
// markup or command name, depending on Kind.
type Gesture struct {
	Kind  Kind   `json:"kind" yaml:"kind"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Key returns a key gesture for ev.
func Key(ev key.Event) Gesture { return Gesture{Kind: KindKey, Value: ev.Chord()} }

// Text returns a typing gesture.
func Text(s string) Gesture { return Gesture{Kind: KindText, Value: s} }

// Paste returns a paste gesture for markup.
func Paste(html string) Gesture { return Gesture{Kind: KindPaste, Value: html} }

// Exec returns a command gesture.
func Exec(command string) Gesture { return Gesture{Kind: KindExec, Value: command} }

// Undo returns an undo gesture.
func Undo() Gesture { return Gesture{Kind: KindUndo} }

// Redo returns a redo gesture.
func Redo() Gesture { return Gesture{Kind: KindRedo} }

// Validate checks the kind and, for key gestures, the chord.
func (g Gesture) Validate() error {
	if !g.Kind.valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidGesture, g.Kind)
	}
	if g.Kind.takesValue() && g.Value == "" {
		return fmt.Errorf("%w: %s needs a value", ErrInvalidGesture, g.Kind)
	}
	if g.Kind == KindKey {
		if _, err := key.Parse(g.Value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGesture, err)
		}
	}
	return nil
}

// String renders g as a script line. Values that would not survive a
// round trip through ParseScript are quoted.
func (g Gesture) String() string {
	if !g.Kind.takesValue() {
		return string(g.Kind)
	}
	v := g.Value
	if needsQuote(v) {
		v = strconv.Quote(v)
	}
	return string(g.Kind) + " " + v
}

func needsQuote(v string) bool {
	return v == "" || strings.TrimSpace(v) != v || strings.ContainsAny(v, "\n\r\t") || strings.HasPrefix(v, `"`)
}
