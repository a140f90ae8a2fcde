package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/commands"
	"github.com/dshills/folio/internal/model"
)

func TestToggleMarkRange(t *testing.T) {
	strong := commands.ToggleMark(schema.MarkType("strong"), nil)
	d := doc(p(txt("hello world")))

	next := run(t, strong, textState(t, d, 1, 6))
	requireDoc(t, doc(p(txt("hello", mark("strong")), txt(" world"))), next.Doc)

	next = run(t, strong, textState(t, next.Doc, 1, 6))
	requireDoc(t, d, next.Doc)
}

func TestToggleMarkSkipsEdgeWhitespace(t *testing.T) {
	em := commands.ToggleMark(schema.MarkType("em"), nil)
	next := run(t, em, textState(t, doc(p(txt("hello world"))), 1, 7))
	requireDoc(t, doc(p(txt("hello", mark("em")), txt(" world"))), next.Doc)
}

func TestToggleMarkCursorUsesStoredMarks(t *testing.T) {
	strong := commands.ToggleMark(schema.MarkType("strong"), nil)
	st := cursorState(t, doc(p(txt("ab"))), 2)

	st = run(t, strong, st)
	assert.True(t, st.StoredMarks.Has(schema.MarkType("strong")))
	requireDoc(t, doc(p(txt("ab"))), st.Doc)

	st = run(t, strong, st)
	assert.False(t, st.StoredMarks.Has(schema.MarkType("strong")))
}

func TestToggleMarkNotAllowedInCode(t *testing.T) {
	strong := commands.ToggleMark(schema.MarkType("strong"), nil)
	assert.Nil(t, strong(cursorState(t, doc(code(txt("ab"))), 2)))
	assert.Nil(t, strong(textState(t, doc(code(txt("ab"))), 1, 3)))
}

func TestSetBlockType(t *testing.T) {
	heading := schema.NodeType("heading")
	setH2 := commands.SetBlockType(heading, model.Attrs{"level": 2})

	next := run(t, setH2, cursorState(t, doc(p(txt("ab"))), 2))
	requireDoc(t, doc(h(2, txt("ab"))), next.Doc)

	assert.Nil(t, setH2(cursorState(t, next.Doc, 2)))

	setPara := commands.SetBlockType(schema.NodeType("paragraph"), nil)
	next = run(t, setPara, textState(t, doc(h(1, txt("a")), h(2, txt("b"))), 2, 5))
	requireDoc(t, doc(p(txt("a")), p(txt("b"))), next.Doc)
}

func TestSetCodeBlockDropsMarks(t *testing.T) {
	setCode := commands.SetBlockType(schema.NodeType("code_block"), nil)
	next := run(t, setCode, cursorState(t, doc(p(txt("a", mark("strong")), txt("b"))), 2))
	requireDoc(t, doc(code(txt("ab"))), next.Doc)
}

func TestWrapIn(t *testing.T) {
	wrap := commands.WrapIn(schema.NodeType("blockquote"), nil)
	next := run(t, wrap, cursorState(t, doc(p(txt("a"))), 2))
	requireDoc(t, doc(bq(p(txt("a")))), next.Doc)
}

func TestInsertNodes(t *testing.T) {
	rule := commands.InsertNode(schema.NodeType("horizontal_rule"))
	next := run(t, rule, cursorState(t, doc(p(txt("ab"))), 3))
	requireDoc(t, doc(p(txt("ab")), hr()), next.Doc)

	hardBreak := commands.HardBreak(schema.NodeType("hard_break"))
	next = run(t, hardBreak, cursorState(t, doc(p(txt("ab"))), 2))
	requireDoc(t, doc(p(txt("a"), br(), txt("b"))), next.Doc)

	next = run(t, hardBreak, cursorState(t, doc(code(txt("ab"))), 3))
	requireDoc(t, doc(code(txt("ab")), p()), next.Doc)
}

func TestWrapInList(t *testing.T) {
	wrap := commands.WrapInList(schema.NodeType("bullet_list"), nil)
	next := run(t, wrap, textState(t, doc(p(txt("a")), p(txt("b"))), 2, 5))
	requireDoc(t, doc(ul(li(p(txt("a"))), li(p(txt("b"))))), next.Doc)

	assert.Nil(t, wrap(cursorState(t, next.Doc, 3)), "top of an existing item")
}

func TestSplitListItem(t *testing.T) {
	split := commands.SplitListItem(schema.NodeType("list_item"))

	next := run(t, split, cursorState(t, doc(ul(li(p(txt("ab"))))), 4))
	requireDoc(t, doc(ul(li(p(txt("a"))), li(p(txt("b"))))), next.Doc)

	next = run(t, split, cursorState(t, doc(ul(li(p(txt("ab"))))), 5))
	requireDoc(t, doc(ul(li(p(txt("ab"))), li(p()))), next.Doc)

	assert.Nil(t, split(cursorState(t, doc(ul(li(p()))), 3)), "empty top-level item")
	assert.Nil(t, split(cursorState(t, doc(p(txt("ab"))), 2)))
}

func TestSinkAndLiftListItem(t *testing.T) {
	item := schema.NodeType("list_item")
	sink := commands.SinkListItem(item)
	lift := commands.LiftListItem(item)

	flat := doc(ul(li(p(txt("a"))), li(p(txt("b")))))
	nested := doc(ul(li(p(txt("a")), ul(li(p(txt("b")))))))

	next := run(t, sink, cursorState(t, flat, 8))
	requireDoc(t, nested, next.Doc)

	assert.Nil(t, sink(cursorState(t, flat, 3)), "first item cannot sink")

	next = run(t, lift, cursorState(t, nested, 9))
	requireDoc(t, flat, next.Doc)

	next = run(t, lift, cursorState(t, doc(ul(li(p(txt("a"))))), 3))
	requireDoc(t, doc(p(txt("a"))), next.Doc)
}

func TestEnterInListChain(t *testing.T) {
	item := schema.NodeType("list_item")
	enter := commands.Chain(
		commands.SplitListItem(item),
		commands.NewlineInCode,
		commands.CreateParagraphNear,
		commands.LiftEmptyBlock,
		commands.SplitBlock,
	)
	st := cursorState(t, doc(ul(li(p(txt("a"))))), 4)
	st = run(t, enter, st)
	requireDoc(t, doc(ul(li(p(txt("a"))), li(p()))), st.Doc)
	st = run(t, enter, st)
	requireDoc(t, doc(ul(li(p(txt("a")))), p()), st.Doc)
	require.Equal(t, 8, st.Selection.Head().Pos)
}
