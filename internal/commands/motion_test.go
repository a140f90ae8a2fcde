package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/commands"
	"github.com/dshills/folio/internal/state"
)

func TestMoveHorizontal(t *testing.T) {
	d := doc(p(txt("abc")), p(txt("de")))

	next := run(t, commands.MoveLeft, cursorState(t, d, 3))
	assert.Equal(t, 2, next.Selection.Head().Pos)

	next = run(t, commands.MoveLeft, cursorState(t, d, 6))
	assert.Equal(t, 4, next.Selection.Head().Pos, "crosses to end of previous block")

	next = run(t, commands.MoveRight, cursorState(t, d, 4))
	assert.Equal(t, 6, next.Selection.Head().Pos, "crosses to start of next block")

	assert.Nil(t, commands.MoveLeft(cursorState(t, d, 1)))
	assert.Nil(t, commands.MoveRight(cursorState(t, d, 8)))
}

func TestMoveCollapsesRange(t *testing.T) {
	d := doc(p(txt("abcd")))
	next := run(t, commands.MoveLeft, textState(t, d, 4, 2))
	assert.True(t, next.Selection.Empty())
	assert.Equal(t, 2, next.Selection.Head().Pos)

	next = run(t, commands.MoveRight, textState(t, d, 4, 2))
	assert.Equal(t, 4, next.Selection.Head().Pos)
}

func TestMoveOverGraphemeCluster(t *testing.T) {
	d := doc(p(txt("a\U0001F1EB\U0001F1F7b")))
	next := run(t, commands.MoveRight, cursorState(t, d, 2))
	assert.Equal(t, 4, next.Selection.Head().Pos)
	next = run(t, commands.MoveLeft, next)
	assert.Equal(t, 2, next.Selection.Head().Pos)
}

func TestMoveOntoLeafBlock(t *testing.T) {
	d := doc(p(txt("a")), hr(), p(txt("b")))
	next := run(t, commands.MoveRight, cursorState(t, d, 2))
	ns, ok := next.Selection.(*state.NodeSelection)
	require.True(t, ok)
	assert.Equal(t, "horizontal_rule", ns.Node().Type.Name)

	next = run(t, commands.MoveRight, next)
	assert.Equal(t, 5, next.Selection.Head().Pos)
}

func TestExtend(t *testing.T) {
	d := doc(p(txt("abc")), p(txt("de")))
	next := run(t, commands.ExtendRight, cursorState(t, d, 2))
	assert.Equal(t, 2, next.Selection.Anchor().Pos)
	assert.Equal(t, 3, next.Selection.Head().Pos)

	next = run(t, commands.ExtendRight, textState(t, d, 2, 4))
	assert.Equal(t, 2, next.Selection.Anchor().Pos)
	assert.Equal(t, 6, next.Selection.Head().Pos)

	next = run(t, commands.ExtendLineStart, cursorState(t, d, 3))
	assert.Equal(t, 3, next.Selection.Anchor().Pos)
	assert.Equal(t, 1, next.Selection.Head().Pos)

	next = run(t, commands.ExtendLineEnd, cursorState(t, d, 2))
	assert.Equal(t, 4, next.Selection.Head().Pos)
}

func TestLineMotionInCode(t *testing.T) {
	d := doc(code(txt("ab\ncd")))

	next := run(t, commands.MoveUp, cursorState(t, d, 5))
	assert.Equal(t, 2, next.Selection.Head().Pos)

	next = run(t, commands.MoveDown, cursorState(t, d, 2))
	assert.Equal(t, 5, next.Selection.Head().Pos)

	next = run(t, commands.MoveLineStart, cursorState(t, d, 6))
	assert.Equal(t, 4, next.Selection.Head().Pos)

	next = run(t, commands.MoveLineEnd, cursorState(t, d, 1))
	assert.Equal(t, 3, next.Selection.Head().Pos)

	assert.Nil(t, commands.MoveLineEnd(cursorState(t, d, 3)), "already at line end")
}

func TestMoveVerticalAcrossBlocks(t *testing.T) {
	d := doc(p(txt("abc")), p(txt("de")))

	next := run(t, commands.MoveDown, cursorState(t, d, 3))
	assert.Equal(t, 8, next.Selection.Head().Pos, "column clamps to shorter line")

	next = run(t, commands.MoveUp, cursorState(t, d, 7))
	assert.Equal(t, 2, next.Selection.Head().Pos)

	assert.Nil(t, commands.MoveUp(cursorState(t, d, 2)))
}

func TestSelectAllThenMove(t *testing.T) {
	d := doc(p(txt("ab")), p(txt("cd")))
	st := run(t, commands.SelectAll, cursorState(t, d, 2))
	_, all := st.Selection.(*state.AllSelection)
	require.True(t, all)

	start := run(t, commands.MoveLeft, st)
	assert.Equal(t, 1, start.Selection.Head().Pos)
	end := run(t, commands.MoveRight, st)
	assert.Equal(t, 7, end.Selection.Head().Pos)
}
