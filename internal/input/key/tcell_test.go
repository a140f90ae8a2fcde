package key

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestFromTcell(t *testing.T) {
	tests := []struct {
		name  string
		ev    *tcell.EventKey
		chord string
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), "x"},
		{"upper rune", tcell.NewEventKey(tcell.KeyRune, 'X', tcell.ModNone), "Shift-x"},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModAlt), "Alt-b"},
		{"alt arrow", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModAlt), "Alt-ArrowUp"},
		{"shift enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModShift), "Shift-Enter"},
		{"backtab", tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), "Shift-Tab"},
		{"f5", tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), "F5"},
		{"delete", tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone), "Delete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTcell(tt.ev).Chord(); got != tt.chord {
				t.Errorf("FromTcell() = %q, want %q", got, tt.chord)
			}
		})
	}
}

func TestFromTcellControlLetter(t *testing.T) {
	ev := FromTcell(tcell.NewEventKey(tcell.KeyCtrlB, 0, tcell.ModCtrl))
	if ev.Key != KeyRune || ev.Rune != 'b' || !ev.Modifiers.Has(ModCtrl) {
		t.Errorf("FromTcell(Ctrl-B) = %#v", ev)
	}
}

func TestFromTcellControlPunctuation(t *testing.T) {
	if got := FromTcell(tcell.NewEventKey(tcell.KeyCtrlUnderscore, 0, tcell.ModCtrl)).Chord(); got != "Ctrl-_" {
		t.Errorf("FromTcell(Ctrl-_) = %q", got)
	}
	if got := FromTcell(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone)).Chord(); got != "Tab" {
		t.Errorf("FromTcell(Tab) = %q", got)
	}
}
