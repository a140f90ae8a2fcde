package key

import "testing"

func TestModifierString(t *testing.T) {
	tests := []struct {
		mod  Modifier
		want string
	}{
		{ModNone, ""},
		{ModCtrl, "Ctrl"},
		{ModShift | ModCtrl, "Ctrl-Shift"},
		{ModMeta | ModAlt | ModShift, "Alt-Meta-Shift"},
	}
	for _, tt := range tests {
		if got := tt.mod.String(); got != tt.want {
			t.Errorf("Modifier(%d).String() = %q, want %q", tt.mod, got, tt.want)
		}
	}
}

func TestModifierHas(t *testing.T) {
	m := ModCtrl | ModShift
	if !m.Has(ModCtrl) || !m.Has(ModCtrl|ModShift) || m.Has(ModAlt) || m.Has(ModCtrl|ModAlt) {
		t.Errorf("Has misreports for %v", m)
	}
	if m.Has(ModNone) {
		t.Error("no modifier set is held")
	}
}

func TestLookupModifier(t *testing.T) {
	tests := []struct {
		name string
		mac  bool
		want Modifier
		ok   bool
	}{
		{"Ctrl", false, ModCtrl, true},
		{" control ", false, ModCtrl, true},
		{"Cmd", false, ModMeta, true},
		{"option", false, ModAlt, true},
		{"D", false, ModMeta, true},
		{"Mod", false, ModCtrl, true},
		{"Mod", true, ModMeta, true},
		{"hyper", false, ModNone, false},
	}
	for _, tt := range tests {
		got, ok := lookupModifier(tt.name, tt.mac)
		if got != tt.want || ok != tt.ok {
			t.Errorf("lookupModifier(%q, %v) = %v, %v", tt.name, tt.mac, got, ok)
		}
	}
	if PrimaryModifier(true) != ModMeta || PrimaryModifier(false) != ModCtrl {
		t.Error("PrimaryModifier returns the wrong modifier")
	}
}
