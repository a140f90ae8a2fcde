package key

import "testing"

func TestEventChord(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewRuneEvent('b', ModCtrl), "Ctrl-b"},
		{NewRuneEvent('Z', ModCtrl), "Ctrl-Shift-z"},
		{NewRuneEvent('z', ModShift|ModMeta), "Meta-Shift-z"},
		{NewRuneEvent(' ', ModNone), "Space"},
		{NewRuneEvent('-', ModCtrl), "Ctrl--"},
		{NewSpecialEvent(KeyArrowUp, ModAlt), "Alt-ArrowUp"},
		{NewSpecialEvent(KeyEnter, ModShift), "Shift-Enter"},
		{NewSpecialEvent(KeyBackspace, ModNone), "Backspace"},
	}
	for _, tt := range tests {
		if got := tt.event.Chord(); got != tt.want {
			t.Errorf("%#v.Chord() = %q, want %q", tt.event, got, tt.want)
		}
		if got := tt.event.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.event, got, tt.want)
		}
	}
}

func TestEventPredicates(t *testing.T) {
	a := NewRuneEvent('A', ModShift)
	if !a.IsRune() || !a.IsChar() || a.IsModified() {
		t.Errorf("shifted letter misclassified: %#v", a)
	}
	if !NewRuneEvent('a', ModAlt).IsModified() {
		t.Error("Alt-a should be modified")
	}
	if !NewSpecialEvent(KeyTab, ModShift).IsModified() {
		t.Error("Shift-Tab should be modified")
	}
	if NewRuneEvent('\x01', ModNone).IsChar() {
		t.Error("control character reported as printable")
	}
}

func TestEventEqual(t *testing.T) {
	if !NewRuneEvent('Z', ModCtrl).Equal(NewRuneEvent('z', ModCtrl|ModShift)) {
		t.Error("upper-case letter should equal Shift plus lower-case")
	}
	if NewRuneEvent('z', ModCtrl).Equal(NewRuneEvent('z', ModAlt)) {
		t.Error("different modifiers compare equal")
	}
	e := NewRuneEvent('b', PrimaryModifier(Mac))
	if !e.Equal(MustParse("Mod-b")) {
		t.Errorf("%v should equal Mod-b", e)
	}
}
