package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/commands"
	"github.com/dshills/folio/internal/input/keymap"
	"github.com/dshills/folio/internal/state"
)

func TestChainReturnsFirstApplicable(t *testing.T) {
	st := cursorState(t, doc(p(txt("ab"))), 2)
	calls := 0
	never := func(*state.State) *state.Transaction { calls++; return nil }
	cmd := commands.Chain(never, commands.SelectAll, never)
	tr := cmd(st)
	require.NotNil(t, tr)
	assert.Equal(t, 1, calls)
	_, all := tr.Selection().(*state.AllSelection)
	assert.True(t, all)

	assert.Nil(t, commands.Chain(never, never)(st))
	assert.Nil(t, commands.Chain()(st))
}

func TestRegistry(t *testing.T) {
	r := commands.NewRegistry()
	r.Register("selectAll", commands.SelectAll)
	r.Register("", commands.SelectAll)
	r.Register("nil", nil)
	r.RegisterAll(map[string]commands.Command{"lift": commands.Lift, "skip": nil})

	assert.Equal(t, []string{"lift", "selectAll"}, r.Names())
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Has("lift"))

	cmd, ok := r.Get("selectAll")
	require.True(t, ok)
	assert.NotNil(t, cmd(cursorState(t, doc(p()), 1)))

	r.Unregister("lift")
	_, ok = r.Get("lift")
	assert.False(t, ok)
}

func TestBuiltinCoversDefaultKeymaps(t *testing.T) {
	cmds := commands.Builtin(schema, 6)
	editorOwned := map[string]bool{"undo": true, "redo": true, "undoInputRule": true}
	for _, km := range []*keymap.Keymap{keymap.DefaultBaseKeymap(), keymap.DefaultEditingKeymap(6, false), keymap.DefaultEditingKeymap(6, true)} {
		for _, b := range km.Bindings {
			if editorOwned[b.Action] {
				continue
			}
			assert.Contains(t, cmds, b.Action, "keymap %s binds %s", km.Name, b.Keys)
		}
	}
	assert.Contains(t, cmds, "setHeading6")
	assert.NotContains(t, commands.Builtin(schema, 2), "setHeading3")
}

func TestDeleteSelection(t *testing.T) {
	st := textState(t, doc(p(txt("hello"))), 2, 4)
	next := run(t, commands.DeleteSelection, st)
	requireDoc(t, doc(p(txt("hlo"))), next.Doc)
	assert.Equal(t, 2, next.Selection.Head().Pos)

	assert.Nil(t, commands.DeleteSelection(cursorState(t, doc(p(txt("a"))), 1)))
}

func TestJoinBackward(t *testing.T) {
	t.Run("joins paragraphs", func(t *testing.T) {
		next := run(t, commands.JoinBackward, cursorState(t, doc(p(txt("ab")), p(txt("cd"))), 5))
		requireDoc(t, doc(p(txt("abcd"))), next.Doc)
		assert.Equal(t, 3, next.Selection.Head().Pos)
	})
	t.Run("removes empty block before", func(t *testing.T) {
		next := run(t, commands.JoinBackward, cursorState(t, doc(p(), p(txt("cd"))), 3))
		requireDoc(t, doc(p(txt("cd"))), next.Doc)
	})
	t.Run("moves paragraph into preceding list", func(t *testing.T) {
		d := doc(ul(li(p(txt("a")))), p(txt("b")))
		next := run(t, commands.JoinBackward, cursorState(t, d, 8))
		requireDoc(t, doc(ul(li(p(txt("a"))), li(p(txt("b"))))), next.Doc)
	})
	t.Run("lifts out of blockquote at its start", func(t *testing.T) {
		next := run(t, commands.JoinBackward, cursorState(t, doc(bq(p(txt("a")))), 2))
		requireDoc(t, doc(p(txt("a"))), next.Doc)
	})
	t.Run("does not apply mid-text or at document start", func(t *testing.T) {
		d := doc(p(txt("ab")))
		assert.Nil(t, commands.JoinBackward(cursorState(t, d, 2)))
		assert.Nil(t, commands.JoinBackward(cursorState(t, d, 1)))
	})
}

func TestJoinForward(t *testing.T) {
	next := run(t, commands.JoinForward, cursorState(t, doc(p(txt("ab")), p(txt("cd"))), 3))
	requireDoc(t, doc(p(txt("abcd"))), next.Doc)

	next = run(t, commands.JoinForward, cursorState(t, doc(p(txt("ab")), hr()), 3))
	requireDoc(t, doc(p(txt("ab"))), next.Doc)

	assert.Nil(t, commands.JoinForward(cursorState(t, doc(p(txt("ab"))), 3)))
}

func TestDeleteCharByGrapheme(t *testing.T) {
	flag := "\U0001F1EB\U0001F1F7"

	next := run(t, commands.DeleteCharBackward, cursorState(t, doc(p(txt("a"+flag))), 4))
	requireDoc(t, doc(p(txt("a"))), next.Doc)

	next = run(t, commands.DeleteCharForward, cursorState(t, doc(p(txt(flag+"b"))), 1))
	requireDoc(t, doc(p(txt("b"))), next.Doc)

	next = run(t, commands.DeleteCharBackward, cursorState(t, doc(p(txt("a"), br())), 3))
	requireDoc(t, doc(p(txt("a"))), next.Doc)

	assert.Nil(t, commands.DeleteCharBackward(cursorState(t, doc(p(txt("a"))), 1)))
	assert.Nil(t, commands.DeleteCharForward(cursorState(t, doc(p(txt("a"))), 2)))
}

func TestBackspaceChain(t *testing.T) {
	backspace := commands.Chain(commands.DeleteSelection, commands.JoinBackward, commands.DeleteCharBackward)
	st := cursorState(t, doc(p(txt("ab")), p(txt("c"))), 6)
	st = run(t, backspace, st)
	requireDoc(t, doc(p(txt("ab")), p()), st.Doc)
	st = run(t, backspace, st)
	requireDoc(t, doc(p(txt("ab"))), st.Doc)
	assert.Equal(t, 3, st.Selection.Head().Pos)
}

func TestNewlineInCodeAndExitCode(t *testing.T) {
	d := doc(code(txt("ab")))
	next := run(t, commands.NewlineInCode, cursorState(t, d, 2))
	requireDoc(t, doc(code(txt("a\nb"))), next.Doc)

	assert.Nil(t, commands.NewlineInCode(cursorState(t, doc(p(txt("ab"))), 2)))

	next = run(t, commands.ExitCode, cursorState(t, d, 3))
	requireDoc(t, doc(code(txt("ab")), p()), next.Doc)
	assert.Equal(t, 5, next.Selection.Head().Pos)
}

func TestSplitBlock(t *testing.T) {
	t.Run("middle of paragraph", func(t *testing.T) {
		next := run(t, commands.SplitBlock, cursorState(t, doc(p(txt("abcd"))), 3))
		requireDoc(t, doc(p(txt("ab")), p(txt("cd"))), next.Doc)
		assert.Equal(t, 5, next.Selection.Head().Pos)
	})
	t.Run("end of heading makes paragraph", func(t *testing.T) {
		next := run(t, commands.SplitBlock, cursorState(t, doc(h(1, txt("ab"))), 3))
		requireDoc(t, doc(h(1, txt("ab")), p()), next.Doc)
	})
	t.Run("start of heading leaves paragraph above", func(t *testing.T) {
		next := run(t, commands.SplitBlock, cursorState(t, doc(h(1, txt("ab"))), 1))
		requireDoc(t, doc(p(), h(1, txt("ab"))), next.Doc)
	})
	t.Run("deletes selected text", func(t *testing.T) {
		next := run(t, commands.SplitBlock, textState(t, doc(p(txt("abcd"))), 2, 4))
		requireDoc(t, doc(p(txt("a")), p(txt("d"))), next.Doc)
	})
}

func TestLiftEmptyBlock(t *testing.T) {
	next := run(t, commands.LiftEmptyBlock, cursorState(t, doc(bq(p(txt("a")), p())), 5))
	requireDoc(t, doc(bq(p(txt("a"))), p()), next.Doc)

	assert.Nil(t, commands.LiftEmptyBlock(cursorState(t, doc(p(txt("a"))), 1)))
}

func TestCreateParagraphNear(t *testing.T) {
	next := run(t, commands.CreateParagraphNear, nodeState(t, doc(hr(), p(txt("a"))), 0))
	requireDoc(t, doc(p(), hr(), p(txt("a"))), next.Doc)
	assert.Equal(t, 1, next.Selection.Head().Pos)

	assert.Nil(t, commands.CreateParagraphNear(cursorState(t, doc(p(txt("a"))), 1)))
}

func TestJoinUpDownAndLift(t *testing.T) {
	d := doc(bq(p(txt("a"))), bq(p(txt("b"))))
	next := run(t, commands.JoinUp, cursorState(t, d, 7))
	requireDoc(t, doc(bq(p(txt("a")), p(txt("b")))), next.Doc)

	next = run(t, commands.JoinDown, cursorState(t, d, 2))
	requireDoc(t, doc(bq(p(txt("a")), p(txt("b")))), next.Doc)

	next = run(t, commands.Lift, cursorState(t, doc(bq(p(txt("a")))), 2))
	requireDoc(t, doc(p(txt("a"))), next.Doc)

	assert.Nil(t, commands.Lift(cursorState(t, doc(p(txt("a"))), 2)))
}

func TestSelectParentNode(t *testing.T) {
	next := run(t, commands.SelectParentNode, cursorState(t, doc(p(txt("ab"))), 2))
	ns, ok := next.Selection.(*state.NodeSelection)
	require.True(t, ok)
	assert.Equal(t, "paragraph", ns.Node().Type.Name)
	assert.Equal(t, 0, ns.From().Pos)
}

func TestSwallowTab(t *testing.T) {
	tr := commands.SwallowTab(cursorState(t, doc(p()), 1))
	require.NotNil(t, tr)
	assert.False(t, tr.DocChanged())
	assert.False(t, tr.SelectionSet())
}
