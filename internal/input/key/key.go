package key

import (
	"fmt"
	"strings"
)

// Key names a non-character key. Character keys use KeyRune with the
// character in Event.Rune.
type Key uint16

// Named keys.
const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyRune
)

// keyNames holds the canonical chord name of each key, following the
// browser KeyboardEvent.key values.
var keyNames = [...]string{
	KeyNone:       "None",
	KeyEscape:     "Escape",
	KeyEnter:      "Enter",
	KeyTab:        "Tab",
	KeyBackspace:  "Backspace",
	KeyDelete:     "Delete",
	KeyInsert:     "Insert",
	KeyHome:       "Home",
	KeyEnd:        "End",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyArrowUp:    "ArrowUp",
	KeyArrowDown:  "ArrowDown",
	KeyArrowLeft:  "ArrowLeft",
	KeyArrowRight: "ArrowRight",
	KeyRune:       "Rune",
}

func (k Key) String() string {
	switch {
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", k-KeyF1+1)
	case int(k) < len(keyNames) && keyNames[k] != "":
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsArrow reports whether k is one of the four arrow keys.
func (k Key) IsArrow() bool { return k >= KeyArrowUp && k <= KeyArrowRight }

// keyAliases are alternative spellings accepted by Parse.
var keyAliases = map[string]Key{
	"esc": KeyEscape, "return": KeyEnter, "cr": KeyEnter, "bs": KeyBackspace,
	"del": KeyDelete, "ins": KeyInsert, "pgup": KeyPageUp, "pgdn": KeyPageDown,
	"up": KeyArrowUp, "down": KeyArrowDown, "left": KeyArrowLeft, "right": KeyArrowRight,
}

// runeAliases name character keys that are awkward to write in a spec.
var runeAliases = map[string]rune{
	"space": ' ', "lt": '<', "gt": '>', "bar": '|', "bslash": '\\', "minus": '-', "plus": '+',
}

// lookupKey resolves a key name case-insensitively. Rune names are not
// handled here.
func lookupKey(name string) (Key, bool) {
	lower := strings.ToLower(name)
	if k, ok := keyAliases[lower]; ok {
		return k, true
	}
	for k := KeyEscape; k < KeyRune; k++ {
		if strings.ToLower(k.String()) == lower {
			return k, true
		}
	}
	return KeyNone, false
}
