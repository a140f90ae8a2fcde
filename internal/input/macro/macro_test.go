package macro_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/input/key"
	"github.com/dshills/folio/internal/input/macro"
)

const script = `
# make a heading, then a bold word
exec setHeading1
type Title
key Enter
key Mod-b
type "  bold  "
paste <p>pasted</p>
undo
redo
`

func TestParseScript(t *testing.T) {
	got, err := macro.ParseScript(strings.NewReader(script))
	if err != nil {
		t.Fatal(err)
	}
	want := []macro.Gesture{
		macro.Exec("setHeading1"),
		macro.Text("Title"),
		{Kind: macro.KindKey, Value: "Enter"},
		{Kind: macro.KindKey, Value: "Mod-b"},
		macro.Text("  bold  "),
		macro.Paste("<p>pasted</p>"),
		macro.Undo(),
		macro.Redo(),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseScript() = %v, want %v", got, want)
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unknown keyword", "type a\njump b", 2},
		{"missing value", "exec", 1},
		{"undo with value", "\n\nundo twice", 3},
		{"bad chord", "key Hyper-Nope-x", 1},
		{"bad quote", `type "open`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := macro.ParseScript(strings.NewReader(tt.src))
			var se *macro.ScriptError
			if !errors.As(err, &se) {
				t.Fatalf("expected ScriptError, got %v", err)
			}
			if se.Line != tt.line {
				t.Errorf("Line = %d, want %d", se.Line, tt.line)
			}
			if !errors.Is(err, macro.ErrInvalidGesture) {
				t.Errorf("expected ErrInvalidGesture, got %v", err)
			}
		})
	}
}

func TestScriptRoundTrip(t *testing.T) {
	gestures := []macro.Gesture{
		macro.Text("plain"),
		macro.Text(" padded "),
		macro.Text("two\nlines"),
		macro.Key(key.MustParse("Ctrl-Shift-z")),
		macro.Undo(),
	}
	var b strings.Builder
	if err := macro.WriteScript(&b, gestures); err != nil {
		t.Fatal(err)
	}
	back, err := macro.ParseScript(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ParseScript(%q): %v", b.String(), err)
	}
	if !reflect.DeepEqual(back, gestures) {
		t.Errorf("round trip = %v, want %v", back, gestures)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	m := &macro.Macro{Name: "demo", Gestures: []macro.Gesture{macro.Text("hi"), macro.Exec("toggleStrong")}}
	for _, name := range []string{"demo.yaml", "demo.json", "demo.keys"} {
		path := filepath.Join(dir, "nested", name)
		if err := macro.SaveFile(m, path); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		back, err := macro.LoadFile(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !reflect.DeepEqual(back, m) {
			t.Errorf("%s: loaded %+v", name, back)
		}
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("gestures:\n  - kind: dance\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := macro.LoadFile(bad); !errors.Is(err, macro.ErrInvalidGesture) {
		t.Errorf("expected ErrInvalidGesture, got %v", err)
	}
}

func newEditor(t *testing.T) *editor.Editor {
	t.Helper()
	ed, err := editor.New(editor.WithMac(false))
	if err != nil {
		t.Fatal(err)
	}
	return ed
}

func TestPlayOnEditor(t *testing.T) {
	ed := newEditor(t)
	m := &macro.Macro{Name: "demo"}
	var err error
	m.Gestures, err = macro.ParseScript(strings.NewReader(`
exec setHeading1
type Title
key Enter
type body
`))
	if err != nil {
		t.Fatal(err)
	}

	rep, err := macro.NewPlayer(macro.WithPlatform(false)).Play(context.Background(), m, 1, ed)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Played != 4 || len(rep.Ignored) != 0 {
		t.Errorf("report = %+v", rep)
	}
	html, err := ed.HTML()
	if err != nil {
		t.Fatal(err)
	}
	if html != "<h1>Title</h1><p>body</p>" {
		t.Errorf("HTML = %s", html)
	}
}

func TestPlayTypesKeystrokes(t *testing.T) {
	ed := newEditor(t)
	m := &macro.Macro{Name: "rules", Gestures: []macro.Gesture{macro.Text("# **bold** x")}}
	if _, err := macro.NewPlayer().Play(context.Background(), m, 1, ed); err != nil {
		t.Fatal(err)
	}
	html, err := ed.HTML()
	if err != nil {
		t.Fatal(err)
	}
	if html != "<h1><strong>bold</strong> x</h1>" {
		t.Errorf("HTML = %s", html)
	}
}

func TestPlayReportsIgnored(t *testing.T) {
	ed := newEditor(t)
	m := &macro.Macro{Name: "noop", Gestures: []macro.Gesture{macro.Undo(), macro.Text("x"), macro.Exec("liftListItem")}}

	rep, err := macro.NewPlayer().Play(context.Background(), m, 2, ed)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Played != 6 {
		t.Errorf("Played = %d", rep.Played)
	}
	// The first undo has nothing to revert; the second reverts the first "x".
	if len(rep.Ignored) != 3 {
		t.Errorf("Ignored = %v", rep.Ignored)
	}

	_, err = macro.NewPlayer(macro.Strict()).Play(context.Background(), m, 1, newEditor(t))
	var pe *macro.PlaybackError
	if !errors.As(err, &pe) || pe.Index != 0 {
		t.Errorf("expected failure at the first gesture, got %v", err)
	}
}

func TestPlayErrors(t *testing.T) {
	ed := newEditor(t)
	p := macro.NewPlayer()
	if _, err := p.Play(context.Background(), &macro.Macro{}, 1, ed); !errors.Is(err, macro.ErrEmptyMacro) {
		t.Errorf("expected ErrEmptyMacro, got %v", err)
	}

	m := &macro.Macro{Gestures: []macro.Gesture{macro.Exec("noSuchCommand")}}
	if _, err := p.Play(context.Background(), m, 1, ed); !errors.Is(err, editor.ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m = &macro.Macro{Gestures: []macro.Gesture{macro.Text("x")}}
	if _, err := p.Play(ctx, m, 1, ed); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if p.IsPlaying() {
		t.Error("player still marked as playing")
	}
}

func TestRecorder(t *testing.T) {
	ed := newEditor(t)
	rec := macro.NewRecorder()
	target := rec.Wrap(ed)

	if _, err := rec.Stop(); !errors.Is(err, macro.ErrNotRecording) {
		t.Errorf("expected ErrNotRecording, got %v", err)
	}
	if err := rec.Start("greeting"); err != nil {
		t.Fatal(err)
	}
	if err := rec.Start("other"); !errors.Is(err, macro.ErrAlreadyRecording) {
		t.Errorf("expected ErrAlreadyRecording, got %v", err)
	}
	for _, r := range "hi" {
		if err := target.HandleTextInput(string(r)); err != nil {
			t.Fatal(err)
		}
	}
	target.HandleKey(key.MustParse("Ctrl-a"))
	target.Undo()
	m, err := rec.Stop()
	if err != nil {
		t.Fatal(err)
	}
	want := []macro.Gesture{macro.Text("hi"), macro.Key(key.MustParse("Ctrl-a")), macro.Undo()}
	if !reflect.DeepEqual(m.Gestures, want) {
		t.Errorf("recorded %v, want %v", m.Gestures, want)
	}
	if got := rec.Names(); len(got) != 1 || got[0] != "greeting" {
		t.Errorf("Names() = %v", got)
	}

	// Gestures outside a recording are forwarded but not kept.
	if err := target.HandleTextInput("!"); err != nil {
		t.Fatal(err)
	}
	if len(rec.Get("greeting").Gestures) != 3 {
		t.Error("gesture recorded outside a recording")
	}

	replay := newEditor(t)
	if _, err := macro.NewPlayer(macro.WithPlatform(false)).Play(context.Background(), rec.Get("greeting"), 1, replay); err != nil {
		t.Fatal(err)
	}
	if replay.Doc().TextContent() != "" {
		t.Errorf("replay left %q", replay.Doc().TextContent())
	}
}
