package inputrules_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
func br() *model.Node { return node("hard_break", nil) }

func txt(s string, marks ...*model.Mark) *model.Node { return schema.Text(s, marks...) }

func mark(name string) *model.Mark {
	m, err := schema.Mark(name, nil)
	if err != nil {
		panic(err)
	}
	return m
}

func stateAt(t *testing.T, d *model.Node, cursor int) *state.State {
	t.Helper()
	sel, err := state.NewTextSelection(d, cursor, cursor)
	require.NoError(t, err)
	st, err := state.Create(state.Config{Doc: d, Selection: sel})
	require.NoError(t, err)
	return st
}

// typeAtCursor runs the engine for text typed at the cursor and applies
// the result. It fails the test when no rule fires.
func typeAtCursor(t *testing.T, eng *inputrules.Engine, st *state.State, text string) *state.State {
	t.Helper()
	pos := st.Selection.Head().Pos
	tr := eng.Run(st, pos, pos, text)
	require.NotNil(t, tr, "no rule fired for %q in %s", text, st.Doc)
	next, err := st.Apply(tr)
	require.NoError(t, err)
	require.NoError(t, next.Doc.Check(), spew.Sdump(next.Doc.ToRecord()))
	return next
}

func newEngine(opts ...inputrules.Option) *inputrules.Engine {
	return inputrules.New(inputrules.Builtin(schema, 6), opts...)
}

func TestOrderedListRuleAtDocumentStart(t *testing.T) {
	eng := newEngine()
	st := typeAtCursor(t, eng, stateAt(t, doc(p(txt("1."))), 3), " ")
	want := doc(ol(1, li(p())))
	assert.True(t, want.Eq(st.Doc), "got %s", st.Doc)
}

func TestOrderedListContinuesWhenCountMatches(t *testing.T) {
	eng := newEngine()
	start := doc(ol(1, li(p(txt("a")))), p(txt("2.")))
	st := typeAtCursor(t, eng, stateAt(t, start, 10), " ")
	want := doc(ol(1, li(p(txt("a"))), li(p())))
	assert.True(t, want.Eq(st.Doc), "got %s", st.Doc)
}

func TestOrderedListStartsNewListOtherwise(t *testing.T) {
	eng := newEngine()
	start := doc(ol(1, li(p(txt("a")))), p(txt("3.")))
	st := typeAtCursor(t, eng, stateAt(t, start, 10), " ")
	want := doc(ol(1, li(p(txt("a")))), ol(3, li(p())))
	assert.True(t, want.Eq(st.Doc), "got %s", st.Doc)
}

func TestBlockRules(t *testing.T) {
	tests := []struct {
		name  string
		start string
		typed string
		want  *model.Node
	}{
		{"blockquote", ">", " ", doc(node("blockquote", nil, p()))},
		{"bullet", "-", " ", doc(node("bullet_list", nil, li(p())))},
		{"heading", "##", " ", doc(node("heading", model.Attrs{"level": 2}))},
		{"code block", "``", "`", doc(node("code_block", nil))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newEngine()
			start := doc(p(txt(tt.start)))
			st := typeAtCursor(t, eng, stateAt(t, start, 1+len(tt.start)), tt.typed)
			assert.True(t, tt.want.Eq(st.Doc), "got %s", st.Doc)
		})
	}
}

func TestCodeBlockRuleNeedsEmptyTextblock(t *testing.T) {
	eng := newEngine()
	st := stateAt(t, doc(p(txt("``x"))), 3)
	assert.Nil(t, eng.Run(st, 3, 3, "`"))
}

func TestStrongMarkingRule(t *testing.T) {
	eng := newEngine()
	st := typeAtCursor(t, eng, stateAt(t, doc(p(txt("**hello*"))), 9), "*")
	strong := mark("strong")
	assert.True(t, doc(p(txt("hello", strong))).Eq(st.Doc), "got %s", st.Doc)
	assert.Equal(t, 6, st.Selection.Head().Pos)
	require.NotNil(t, st.StoredMarks)
	assert.Empty(t, st.StoredMarks)

	// The next character is not marked.
	tr := st.Tr()
	require.NoError(t, tr.InsertText("x", -1, -1))
	assert.True(t, doc(p(txt("hello", strong), txt("x"))).Eq(tr.Doc), "got %s", tr.Doc)
}

func TestMarkingRules(t *testing.T) {
	tests := []struct {
		name   string
		before string
		typed  string
		text   string
		marks  []string
	}{
		{"strong em", "***hi**", "*", "hi", []string{"strong", "em"}},
		{"strong underscores", "__hi_", "_", "hi", []string{"strong"}},
		{"em underscore", "_hi", "_", "hi", []string{"em"}},
		{"em star", "*hi", "*", "hi", []string{"em"}},
		{"code", "`hi", "`", "hi", []string{"code"}},
		{"strike", "~~hi~", "~", "hi", []string{"strike"}},
		{"underline", "++hi+", "+", "hi", []string{"underline"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newEngine()
			st := typeAtCursor(t, eng, stateAt(t, doc(p(txt(tt.before))), 1+len(tt.before)), tt.typed)
			var marks []*model.Mark
			for _, name := range tt.marks {
				marks = append(marks, mark(name))
			}
			want := doc(p(txt(tt.text, marks...)))
			assert.True(t, want.Eq(st.Doc), "got %s", st.Doc)
		})
	}
}

func TestSmartQuotesAndSubstitutions(t *testing.T) {
	eng := newEngine()
	st := typeAtCursor(t, eng, stateAt(t, doc(p()), 1), `"`)
	assert.Equal(t, "“", st.Doc.TextContent())

	tr := st.Tr()
	require.NoError(t, tr.InsertText("a", -1, -1))
	st, err := st.Apply(tr)
	require.NoError(t, err)
	st = typeAtCursor(t, eng, st, `"`)
	assert.Equal(t, "“a”", st.Doc.TextContent())

	st = typeAtCursor(t, eng, stateAt(t, doc(p(txt("wait.."))), 7), ".")
	assert.Equal(t, "wait…", st.Doc.TextContent())

	st = typeAtCursor(t, eng, stateAt(t, doc(p(txt("a-"))), 3), "-")
	assert.Equal(t, "a—", st.Doc.TextContent())
}

func TestRulesSkipCode(t *testing.T) {
	eng := newEngine()
	inBlock := stateAt(t, doc(node("code_block", nil, txt("**a*"))), 5)
	assert.Nil(t, eng.Run(inBlock, 5, 5, "*"))

	inMark := stateAt(t, doc(p(txt("x-", mark("code")))), 3)
	assert.Nil(t, eng.Run(inMark, 3, 3, "-"))
}

func TestMarkingRulesDoNotCrossBreaks(t *testing.T) {
	eng := newEngine()
	st := stateAt(t, doc(p(txt("*a"), br(), txt("b"))), 5)
	assert.Nil(t, eng.Run(st, 5, 5, "*"))
}

func TestBlockRulesStopAtBreaks(t *testing.T) {
	eng := newEngine()
	for _, start := range []string{"-", ">", "1.", "#"} {
		d := doc(p(br(), txt(start)))
		pos := 2 + len(start)
		assert.Nil(t, eng.Run(stateAt(t, d, pos), pos, pos, " "), "rule fired after a break for %q", start)
	}
	assert.Nil(t, eng.Run(stateAt(t, doc(p(txt("-"))), 2), 2, 2, "\n"), "a typed newline is not a rule trigger")

	st := typeAtCursor(t, eng, stateAt(t, doc(p(txt(" -"))), 3), " ")
	assert.True(t, doc(node("bullet_list", nil, li(p()))).Eq(st.Doc), "got %s", st.Doc)
}

func TestLookbackIsBounded(t *testing.T) {
	start := doc(p(txt("**hello*")))
	assert.Nil(t, newEngine(inputrules.WithMaxLookback(3)).Run(stateAt(t, start, 9), 9, 9, "*"))
	assert.NotNil(t, newEngine().Run(stateAt(t, start, 9), 9, 9, "*"))
	assert.Equal(t, inputrules.DefaultMaxLookback, newEngine().MaxLookback())
}

func TestRuleFiltering(t *testing.T) {
	disabled := newEngine(inputrules.WithDisabled(inputrules.Heading))
	assert.Nil(t, disabled.Run(stateAt(t, doc(p(txt("#"))), 2), 2, 2, " "))

	only := newEngine(inputrules.WithEnabled(inputrules.EmDash))
	require.Len(t, only.Rules(), 1)
	assert.Equal(t, inputrules.EmDash, only.Rules()[0].Name)
}

func TestUndoInputRule(t *testing.T) {
	eng := newEngine()
	before := stateAt(t, doc(p(txt("1."))), 3)
	tr := eng.Run(before, 3, 3, " ")
	require.NotNil(t, tr)
	assert.False(t, tr.Appendable())
	app, ok := tr.Meta(state.MetaInputRule)
	require.True(t, ok)
	assert.Equal(t, inputrules.OrderedList, app.(*inputrules.Application).Rule)

	st, err := before.Apply(tr)
	require.NoError(t, err)

	undo := eng.UndoInputRule(st)
	require.NotNil(t, undo)
	reverted, err := st.Apply(undo)
	require.NoError(t, err)
	assert.True(t, doc(p(txt("1. "))).Eq(reverted.Doc), "got %s", reverted.Doc)

	// Stale after any other change.
	assert.Nil(t, eng.UndoInputRule(reverted))
}

func TestNoRuleReturnsNil(t *testing.T) {
	eng := newEngine()
	assert.Nil(t, eng.Run(stateAt(t, doc(p(txt("ab"))), 3), 3, 3, "c"))
}
