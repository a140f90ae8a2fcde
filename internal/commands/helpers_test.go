package commands_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/commands"
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

func doc(children ...*model.Node) *model.Node  { return node("doc", nil, children...) }
func p(children ...*model.Node) *model.Node    { return node("paragraph", nil, children...) }
func bq(children ...*model.Node) *model.Node   { return node("blockquote", nil, children...) }
func ul(children ...*model.Node) *model.Node   { return node("bullet_list", nil, children...) }
func li(children ...*model.Node) *model.Node   { return node("list_item", nil, children...) }
func code(children ...*model.Node) *model.Node { return node("code_block", nil, children...) }
func hr() *model.Node                          { return node("horizontal_rule", nil) }
func br() *model.Node                          { return node("hard_break", nil) }

func h(level int, children ...*model.Node) *model.Node {
	return node("heading", model.Attrs{"level": level}, children...)
}

func txt(s string, marks ...*model.Mark) *model.Node { return schema.Text(s, marks...) }

func mark(name string) *model.Mark {
	m, err := schema.Mark(name, nil)
	if err != nil {
		panic(err)
	}
	return m
}

// textState builds a state with a text selection from anchor to head.
func textState(t *testing.T, d *model.Node, anchor, head int) *state.State {
	t.Helper()
	sel, err := state.NewTextSelection(d, anchor, head)
	require.NoError(t, err)
	st, err := state.Create(state.Config{Doc: d, Selection: sel})
	require.NoError(t, err)
	return st
}

func cursorState(t *testing.T, d *model.Node, pos int) *state.State {
	return textState(t, d, pos, pos)
}

func nodeState(t *testing.T, d *model.Node, pos int) *state.State {
	t.Helper()
	sel, err := state.NewNodeSelection(d, pos)
	require.NoError(t, err)
	st, err := state.Create(state.Config{Doc: d, Selection: sel})
	require.NoError(t, err)
	return st
}

// run applies cmd and fails when it does not apply.
func run(t *testing.T, cmd commands.Command, st *state.State) *state.State {
	t.Helper()
	tr := cmd(st)
	require.NotNil(t, tr, "command did not apply to %s", st.Doc)
	next, err := st.Apply(tr)
	require.NoError(t, err)
	return next
}

func requireDoc(t *testing.T, want, got *model.Node) {
	t.Helper()
	require.True(t, want.Eq(got), "want %s\ngot  %s\n%s", want, got, spew.Sdump(got.ToRecord()))
}
