package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Event is one key press.
type Event struct {
	Key Key
	// Rune is the character when Key is KeyRune.
	Rune      rune
	Modifiers Modifier
}

// NewRuneEvent creates a character key event.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent creates a named key event.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// IsRune reports whether the event carries a character.
func (e Event) IsRune() bool { return e.Key == KeyRune && e.Rune != 0 }

// IsChar reports whether the event carries a printable character.
func (e Event) IsChar() bool { return e.IsRune() && unicode.IsPrint(e.Rune) }

// IsModified reports whether a command modifier is held. Shift alone
// does not count for characters since it only selects the character.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// Normalize rewrites an upper-case letter as Shift plus the lower-case
// letter.
func (e Event) Normalize() Event {
	if e.IsRune() && unicode.IsUpper(e.Rune) {
		e.Rune = unicode.ToLower(e.Rune)
		e.Modifiers |= ModShift
	}
	return e
}

// Chord returns the canonical chord, e.g. "Ctrl-b", "Alt-ArrowUp" or
// "Ctrl-Shift-z". Keymaps index bindings by it.
func (e Event) Chord() string {
	n := e.Normalize()
	name := n.Key.String()
	if n.Key == KeyRune {
		name = string(n.Rune)
		if n.Rune == ' ' {
			name = "Space"
		}
	}
	return strings.Join(append(n.Modifiers.names(), name), "-")
}

func (e Event) String() string { return e.Chord() }

// Equal reports whether both events are the same chord.
func (e Event) Equal(other Event) bool {
	a, b := e.Normalize(), other.Normalize()
	return a.Key == b.Key && a.Rune == b.Rune && a.Modifiers == b.Modifiers
}

// GoString implements fmt.GoStringer.
func (e Event) GoString() string {
	return fmt.Sprintf("key.Event{%s %q %s}", e.Key, e.Rune, e.Modifiers)
}
