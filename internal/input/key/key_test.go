package key

import "testing"

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{KeyEscape, "Escape"},
		{KeyBackspace, "Backspace"},
		{KeyArrowRight, "ArrowRight"},
		{KeyF1, "F1"},
		{KeyF12, "F12"},
		{KeyRune, "Rune"},
		{Key(999), "Key(999)"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key(%d).String() = %q, want %q", tt.key, got, tt.want)
		}
	}
	if !KeyArrowLeft.IsArrow() || KeyHome.IsArrow() {
		t.Error("IsArrow misclassifies keys")
	}
}

func TestLookupKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
		ok   bool
	}{
		{"ArrowUp", KeyArrowUp, true},
		{"up", KeyArrowUp, true},
		{"ESC", KeyEscape, true},
		{"cr", KeyEnter, true},
		{"pgdn", KeyPageDown, true},
		{"f10", KeyF10, true},
		{"space", KeyNone, false},
		{"rune", KeyNone, false},
	}
	for _, tt := range tests {
		got, ok := lookupKey(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("lookupKey(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
