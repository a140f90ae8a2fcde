package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/input/key"
	"github.com/dshills/folio/internal/inputrules"
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/schemas/markdown"
	"github.com/dshills/folio/internal/state"
)

var schema = markdown.Schema()

func node(name string, attrs model.Attrs, children ...*model.Node) *model.Node {
	n, err := schema.Node(name, attrs, children...)
	if err != nil {
		panic(err)
	}
	return n
}

func doc(children ...*model.Node) *model.Node { return node("doc", nil, children...) }
func p(children ...*model.Node) *model.Node   { return node("paragraph", nil, children...) }
func li(children ...*model.Node) *model.Node  { return node("list_item", nil, children...) }
func ol(order int, children ...*model.Node) *model.Node {
	return node("ordered_list", model.Attrs{"order": order}, children...)
}
func txt(s string, marks ...*model.Mark) *model.Node { return schema.Text(s, marks...) }

func mark(name string) *model.Mark {
	m, err := schema.Mark(name, nil)
	if err != nil {
		panic(err)
	}
	return m
}

func newEditor(t *testing.T, opts ...editor.Option) *editor.Editor {
	t.Helper()
	ed, err := editor.New(append([]editor.Option{editor.WithMac(false)}, opts...)...)
	require.NoError(t, err)
	return ed
}

// typeKeys sends each rune as a key press.
func typeKeys(t *testing.T, ed *editor.Editor, text string) {
	t.Helper()
	for _, r := range text {
		require.True(t, ed.HandleKey(key.NewRuneEvent(r, key.ModNone)), "key %q not handled", r)
	}
}

func press(t *testing.T, ed *editor.Editor, chord string) bool {
	t.Helper()
	ev, err := key.ParseFor(chord, false)
	require.NoError(t, err)
	return ed.HandleKey(ev)
}

func requireDoc(t *testing.T, want *model.Node, ed *editor.Editor) {
	t.Helper()
	got := ed.Doc()
	require.True(t, want.Eq(got), "want %s\ngot  %s", want, got)
	require.NoError(t, got.Check())
}

func TestTypingAndHistory(t *testing.T) {
	ed := newEditor(t)
	requireDoc(t, doc(p()), ed)
	assert.False(t, ed.Can("undo"))

	typeKeys(t, ed, "hello")
	requireDoc(t, doc(p(txt("hello"))), ed)
	assert.Equal(t, 6, ed.State().Selection.Head().Pos)

	// Adjacent typing is one undo step.
	require.True(t, ed.Undo())
	requireDoc(t, doc(p()), ed)
	assert.False(t, ed.Undo())

	require.True(t, ed.Redo())
	requireDoc(t, doc(p(txt("hello"))), ed)
	assert.False(t, ed.Can("redo"))
}

func TestOrderedListRule(t *testing.T) {
	ed := newEditor(t)
	typeKeys(t, ed, "1. ")
	requireDoc(t, doc(ol(1, li(p()))), ed)

	typeKeys(t, ed, "a")
	requireDoc(t, doc(ol(1, li(p(txt("a"))))), ed)
}

func TestBlockRuleAfterHardBreak(t *testing.T) {
	ed := newEditor(t)
	require.True(t, press(t, ed, "Shift-Enter"))
	typeKeys(t, ed, "- ")
	requireDoc(t, doc(p(node("hard_break", nil), txt("- "))), ed)
}

func TestBackspaceRevertsInputRule(t *testing.T) {
	ed := newEditor(t)
	typeKeys(t, ed, "1. ")
	requireDoc(t, doc(ol(1, li(p()))), ed)

	require.True(t, press(t, ed, "Backspace"))
	requireDoc(t, doc(p(txt("1. "))), ed)
}

func TestMarkingRule(t *testing.T) {
	ed := newEditor(t)
	typeKeys(t, ed, "**hello**")
	typeKeys(t, ed, "x")
	requireDoc(t, doc(p(txt("hello", mark("strong")), txt("x"))), ed)
}

func TestToggleMarkShortcut(t *testing.T) {
	ed := newEditor(t)
	require.True(t, press(t, ed, "Ctrl-b"))
	typeKeys(t, ed, "x")
	requireDoc(t, doc(p(txt("x", mark("strong")))), ed)
}

func TestSelectAllDelete(t *testing.T) {
	ed := newEditor(t)
	typeKeys(t, ed, "abc")
	require.True(t, press(t, ed, "Enter"))
	typeKeys(t, ed, "def")
	requireDoc(t, doc(p(txt("abc")), p(txt("def"))), ed)

	require.True(t, press(t, ed, "Ctrl-a"))
	_, isAll := ed.State().Selection.(*state.AllSelection)
	require.True(t, isAll)
	require.True(t, press(t, ed, "Backspace"))
	requireDoc(t, doc(p()), ed)
}

func TestTabIsSwallowed(t *testing.T) {
	ed := newEditor(t)
	calls := 0
	ed.OnChange(func(editor.StateChange) { calls++ })
	before := ed.State()
	assert.True(t, press(t, ed, "Tab"))
	assert.Same(t, before, ed.State())
	assert.Zero(t, calls)
}

func TestUnboundModifiedKey(t *testing.T) {
	ed := newEditor(t)
	assert.False(t, press(t, ed, "Ctrl-Alt-q"))
	requireDoc(t, doc(p()), ed)
}

func TestExec(t *testing.T) {
	ed := newEditor(t)
	_, err := ed.Exec("nope")
	assert.True(t, errors.Is(err, editor.ErrUnknownCommand))
	_, err = ed.Exec("toggleStrnog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean toggleStrong")

	typeKeys(t, ed, "title")
	ok, err := ed.Exec("setHeading2")
	require.NoError(t, err)
	require.True(t, ok)
	requireDoc(t, doc(node("heading", model.Attrs{"level": 2}, txt("title"))), ed)

	// Retyping is its own undo step.
	require.True(t, ed.Undo())
	requireDoc(t, doc(p(txt("title"))), ed)

	assert.False(t, ed.Can("liftListItem"))
	assert.True(t, ed.Can("wrapBulletList"))
}

func TestApplyAndListeners(t *testing.T) {
	bus := event.NewBus()
	var published []editor.StateChange
	_, err := bus.Subscribe(topic.StateChanged, event.AsHandler(func(_ context.Context, ev event.Event[editor.StateChange]) error {
		published = append(published, ev.Payload)
		return nil
	}))
	require.NoError(t, err)

	ed := newEditor(t, editor.WithBus(bus))
	var seen []editor.StateChange
	remove := ed.OnChange(func(c editor.StateChange) {
		// Listeners run outside the lock.
		assert.Same(t, c.New, ed.State())
		seen = append(seen, c)
	})

	tr := ed.State().Tr()
	require.NoError(t, tr.InsertText("hi", 1, 1))
	d, sel, err := ed.Apply(tr)
	require.NoError(t, err)
	assert.True(t, doc(p(txt("hi"))).Eq(d))
	assert.Equal(t, 3, sel.Head().Pos)

	require.Len(t, seen, 1)
	require.Len(t, published, 1)
	assert.True(t, seen[0].DocChanged())
	assert.Same(t, tr, published[0].Transaction)

	remove()
	typeKeys(t, ed, "!")
	assert.Len(t, seen, 1)
	assert.Len(t, published, 2)
}

func TestRejectedTransactionLeavesState(t *testing.T) {
	bus := event.NewBus()
	var rejected []editor.Rejection
	_, err := bus.Subscribe(topic.TransactionRejected, event.AsHandler(func(_ context.Context, ev event.Event[editor.Rejection]) error {
		rejected = append(rejected, ev.Payload)
		return nil
	}))
	require.NoError(t, err)
	ed := newEditor(t, editor.WithBus(bus))

	stale := ed.State().Tr()
	require.NoError(t, stale.InsertText("a", 1, 1))
	typeKeys(t, ed, "b")
	before := ed.State()

	_, _, err = ed.Apply(stale)
	require.Error(t, err)
	assert.Same(t, before, ed.State())
	require.Len(t, rejected, 1)
	assert.Same(t, stale, rejected[0].Transaction)
}

func TestReadOnly(t *testing.T) {
	ed := newEditor(t, editor.WithReadOnly())
	err := ed.HandleTextInput("x")
	assert.True(t, errors.Is(err, editor.ErrReadOnly))
	requireDoc(t, doc(p()), ed)

	// Selection changes still apply.
	require.True(t, press(t, ed, "Ctrl-a"))
}

func TestPaste(t *testing.T) {
	ed := newEditor(t)
	typeKeys(t, ed, "x")
	require.NoError(t, ed.PasteHTML(`<p>a</p><p>b</p>`))
	requireDoc(t, doc(p(txt("xa")), p(txt("b"))), ed)

	require.True(t, ed.Undo())
	requireDoc(t, doc(p(txt("x"))), ed)

	require.NoError(t, ed.PasteText("one\n\ntwo"))
	requireDoc(t, doc(p(txt("xone")), p(txt("two"))), ed)
}

func TestPasteUnknownMarkup(t *testing.T) {
	ed := newEditor(t)
	err := ed.PasteHTML(`<p><blink>x</blink></p>`)
	assert.True(t, errors.Is(err, model.ErrDeserialization))
	requireDoc(t, doc(p()), ed)
}

func TestUserBindingsAndDisabledRules(t *testing.T) {
	ed := newEditor(t,
		editor.WithUserBindings(map[string]string{"Ctrl-e": "setCodeBlock"}),
		editor.WithDisabledRules("orderedList"),
	)
	typeKeys(t, ed, "1. ")
	requireDoc(t, doc(p(txt("1. "))), ed)

	require.True(t, press(t, ed, "Ctrl-e"))
	requireDoc(t, doc(node("code_block", nil, txt("1. "))), ed)
}

func TestReconfigure(t *testing.T) {
	ed := newEditor(t)
	ed.InputRules().Register(inputrules.StringRule("arrow", `->$`, "→"))

	settings := ed.Settings()
	settings.MaxUndoEntries = 2
	settings.DisabledRules = []string{"orderedList"}
	settings.UserBindings = map[string]string{"Ctrl-e": "setCodeBlock"}
	require.NoError(t, ed.Reconfigure(settings))
	assert.Equal(t, 2, ed.History().MaxEntries())

	typeKeys(t, ed, "1. ->")
	requireDoc(t, doc(p(txt("1. →"))), ed)
	require.True(t, press(t, ed, "Ctrl-e"))
	assert.Equal(t, "code_block", ed.Doc().Child(0).Type.Name)

	settings.InputRules = false
	settings.UserBindings = nil
	require.NoError(t, ed.Reconfigure(settings))
	assert.False(t, press(t, ed, "Ctrl-e"))
	assert.Nil(t, ed.Keymaps().Get("user"))

	bad := ed.Settings()
	bad.UserBindings = map[string]string{"Ctrl-": "undo"}
	bad.MaxUndoEntries = 7
	require.Error(t, ed.Reconfigure(bad))
	assert.Equal(t, 2, ed.History().MaxEntries(), "a rejected reconfigure changes nothing")
}

func TestHTMLRoundTrip(t *testing.T) {
	ed := newEditor(t)
	require.NoError(t, ed.SetHTML(`<h1>T</h1><p>a <em>b</em></p>`))
	assert.False(t, ed.Can("undo"))
	out, err := ed.HTML()
	require.NoError(t, err)
	assert.Equal(t, `<h1>T</h1><p>a <em>b</em></p>`, out)
}

func TestConcurrentTyping(t *testing.T) {
	ed := newEditor(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = ed.HandleTextInput("a")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 200, ed.Doc().Child(0).Content.Size())
}
