package key

import (
	"errors"
	"testing"
)

func TestParseFor(t *testing.T) {
	tests := []struct {
		spec  string
		mac   bool
		chord string
	}{
		{"a", false, "a"},
		{"A", false, "Shift-a"},
		{"@", false, "@"},
		{"Space", false, "Space"},
		{"enter", false, "Enter"},
		{"ArrowUp", false, "ArrowUp"},
		{"Mod-b", false, "Ctrl-b"},
		{"Mod-b", true, "Meta-b"},
		{"Shift-Mod-z", false, "Ctrl-Shift-z"},
		{"Mod-Z", false, "Ctrl-z"},
		{"Shift-Ctrl-8", false, "Ctrl-Shift-8"},
		{"Shift-Ctrl-\\", false, "Ctrl-Shift-\\"},
		{"Ctrl->", false, "Ctrl->"},
		{"Mod--", false, "Ctrl--"},
		{"Mod-_", false, "Ctrl-_"},
		{"Mod-[", true, "Meta-["},
		{"Mod-`", false, "Ctrl-`"},
		{"Alt-ArrowUp", false, "Alt-ArrowUp"},
		{"Ctrl+S", false, "Ctrl-s"},
		{"Ctrl+Shift+P", false, "Ctrl-Shift-p"},
		{"Alt+F4", false, "Alt-F4"},
		{"Ctrl++", false, "Ctrl-+"},
		{"<C-s>", false, "Ctrl-s"},
		{"<A-Up>", false, "Alt-ArrowUp"},
		{"<CR>", false, "Enter"},
		{"<lt>", false, "<"},
		{"<", false, "<"},
		{"-", false, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			ev, err := ParseFor(tt.spec, tt.mac)
			if err != nil {
				t.Fatalf("ParseFor(%q) error = %v", tt.spec, err)
			}
			if got := ev.Chord(); got != tt.chord {
				t.Errorf("ParseFor(%q).Chord() = %q, want %q", tt.spec, got, tt.chord)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		spec string
		want error
	}{
		{"", ErrEmptySpec},
		{"   ", ErrEmptySpec},
		{"<C-s", ErrUnmatchedBracket},
		{"Hyper-a", ErrInvalidSpec},
		{"Ctrl-", ErrInvalidSpec},
		{"Ctrl-nosuchkey", ErrInvalidSpec},
		{"<X-a>", ErrInvalidSpec},
	}
	for _, tt := range tests {
		if _, err := ParseFor(tt.spec, false); !errors.Is(err, tt.want) {
			t.Errorf("ParseFor(%q) error = %v, want %v", tt.spec, err, tt.want)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse did not panic on an invalid spec")
		}
	}()
	MustParse("Hyper-a")
}

func TestNormalizeSpec(t *testing.T) {
	a, err := NormalizeSpec("<C-S-p>")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NormalizeSpec("Shift-Ctrl-p")
	if err != nil {
		t.Fatal(err)
	}
	if a != b || a != "Ctrl-Shift-p" {
		t.Errorf("NormalizeSpec gave %q and %q", a, b)
	}
}
