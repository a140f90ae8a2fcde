package key

import (
	"runtime"
	"strings"
)

// Modifier is a set of held modifier keys.
type Modifier uint8

// Modifier bits. ModNone is the empty set.
const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta

	ModNone Modifier = 0
)

// Mac selects the macOS meaning of "Mod" for Parse.
var Mac = runtime.GOOS == "darwin"

// PrimaryModifier returns the modifier "Mod" stands for: Meta (Cmd) on
// macOS, Ctrl elsewhere.
func PrimaryModifier(mac bool) Modifier {
	if mac {
		return ModMeta
	}
	return ModCtrl
}

// chordOrder is the order modifiers are written in a canonical chord.
var chordOrder = [...]struct {
	mod  Modifier
	name string
}{
	{ModAlt, "Alt"},
	{ModCtrl, "Ctrl"},
	{ModMeta, "Meta"},
	{ModShift, "Shift"},
}

// Has reports whether every modifier in mod is held.
func (m Modifier) Has(mod Modifier) bool { return m&mod == mod && mod != ModNone }

// String joins the held modifiers in chord order, e.g. "Alt-Ctrl-Shift".
func (m Modifier) String() string {
	return strings.Join(m.names(), "-")
}

func (m Modifier) names() []string {
	var out []string
	for _, c := range chordOrder {
		if m.Has(c.mod) {
			out = append(out, c.name)
		}
	}
	return out
}

// modifierAliases maps the lower-case spellings accepted in chord specs.
// Single letters serve the bracket notation ("<C-s>", "<D-b>").
var modifierAliases = map[string]Modifier{
	"shift": ModShift, "s": ModShift,
	"ctrl": ModCtrl, "control": ModCtrl, "c": ModCtrl,
	"alt": ModAlt, "option": ModAlt, "opt": ModAlt, "a": ModAlt,
	"meta": ModMeta, "cmd": ModMeta, "command": ModMeta, "super": ModMeta, "m": ModMeta, "d": ModMeta,
}

// lookupModifier resolves a modifier name; "Mod" depends on mac.
func lookupModifier(name string, mac bool) (Modifier, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "mod" {
		return PrimaryModifier(mac), true
	}
	m, ok := modifierAliases[name]
	return m, ok
}
