package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors.
var (
	ErrEmptySpec        = errors.New("empty key specification")
	ErrInvalidSpec      = errors.New("invalid key specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in key specification")
)

// Parse reads a chord spec, resolving "Mod" for the current platform.
//
// A spec is a key name or character, optionally preceded by modifiers
// joined with "-" or "+", or the same wrapped in angle brackets:
// "a", "Space", "Mod-b", "Shift-Ctrl-8", "Mod--", "Ctrl+S", "<C-s>",
// "<CR>". An upper-case letter implies Shift only when written alone;
// "Ctrl+S" is Ctrl-s.
func Parse(spec string) (Event, error) {
	return ParseFor(spec, Mac)
}

// ParseFor is Parse with an explicit platform for "Mod".
func ParseFor(spec string, mac bool) (Event, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "":
		return Event{}, ErrEmptySpec
	case len(spec) > 2 && spec[0] == '<':
		if !strings.HasSuffix(spec, ">") {
			return Event{}, fmt.Errorf("%w: %q", ErrUnmatchedBracket, spec)
		}
		return parseChord(spec[1:len(spec)-1], "-", mac)
	}
	// A separator in first position is the key itself.
	if i := strings.IndexAny(spec[1:], "-+"); i >= 0 {
		return parseChord(spec, spec[i+1:i+2], mac)
	}
	return parseKey(spec, ModNone)
}

func parseChord(spec, sep string, mac bool) (Event, error) {
	parts := strings.Split(spec, sep)
	last := len(parts) - 1
	keyName := parts[last]
	if keyName == "" {
		// "Mod--" splits into "Mod", "", "".
		if last < 2 || parts[last-1] != "" {
			return Event{}, fmt.Errorf("%w: missing key in %q", ErrInvalidSpec, spec)
		}
		keyName, last = sep, last-1
	}

	var mods Modifier
	for _, name := range parts[:last] {
		m, ok := lookupModifier(name, mac)
		if !ok {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, name)
		}
		mods |= m
	}
	return parseKey(keyName, mods)
}

func parseKey(name string, mods Modifier) (Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Event{}, ErrInvalidSpec
	}
	if k, ok := lookupKey(name); ok {
		return NewSpecialEvent(k, mods), nil
	}
	if r, ok := runeAliases[strings.ToLower(name)]; ok {
		return NewRuneEvent(r, mods), nil
	}

	runes := []rune(name)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, name)
	}
	r := runes[0]
	if mods != ModNone {
		r = unicode.ToLower(r)
	}
	return NewRuneEvent(r, mods).Normalize(), nil
}

// MustParse is Parse for specs known to be valid. It panics on error.
func MustParse(spec string) Event {
	ev, err := Parse(spec)
	if err != nil {
		panic(fmt.Sprintf("key: MustParse(%q): %v", spec, err))
	}
	return ev
}

// NormalizeSpec returns the canonical chord of a spec.
func NormalizeSpec(spec string) (string, error) {
	ev, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return ev.Chord(), nil
}
