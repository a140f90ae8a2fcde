// Package key provides key chords for the editor keymaps.
//
// An Event is one key press: a Key (a named key or KeyRune) plus the
// active modifiers. Chords are written in several notations:
//
//   - Hyphen style: "Mod-b", "Shift-Ctrl-8", "Alt-ArrowUp", "Mod--"
//   - Plus style: "Ctrl+S", "Alt+F4"
//   - Bracket style: "<C-s>", "<A-Up>", "<CR>"
//
// "Mod" is the platform's primary modifier: Meta on macOS, Ctrl
// elsewhere. Every event has a canonical Chord string that keymaps use
// as their lookup key.
//
// FromTcell converts terminal key events into Events.
package key
