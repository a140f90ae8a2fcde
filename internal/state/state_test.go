package state_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
)

func newState(t *testing.T, d *model.Node, anchor, head int) *state.State {
	t.Helper()
	sel, err := state.NewTextSelection(d, anchor, head)
	require.NoError(t, err)
	st, err := state.Create(state.Config{Doc: d, Selection: sel})
	require.NoError(t, err)
	return st
}

func TestCreateDefaults(t *testing.T) {
	st, err := state.Create(state.Config{Schema: schema})
	require.NoError(t, err)
	assert.True(t, doc(p()).Eq(st.Doc), st.Doc.String())
	assert.Equal(t, 1, st.Selection.Head().Pos)

	_, err = state.Create(state.Config{})
	assert.Error(t, err)
}

func TestInsertTextAtCursor(t *testing.T) {
	st := newState(t, doc(p(txt("hello"))), 3, 3)
	tr := st.Tr()
	require.NoError(t, tr.InsertText("XY", -1, -1))

	next, err := st.Apply(tr)
	require.NoError(t, err)
	assert.True(t, doc(p(txt("heXYllo"))).Eq(next.Doc), next.Doc.String())
	assert.Equal(t, 5, next.Selection.Head().Pos)
	assert.True(t, next.Selection.Empty())
	assert.True(t, doc(p(txt("hello"))).Eq(st.Doc), "original state changed")
}

func TestInsertTextNormalises(t *testing.T) {
	st := newState(t, doc(p()), 1, 1)
	tr := st.Tr()
	require.NoError(t, tr.InsertText("é", -1, -1))
	assert.Equal(t, "é", tr.Doc.TextContent())
}

func TestInsertTextReplacesRange(t *testing.T) {
	st := newState(t, doc(p(txt("abcd"))), 2, 4)
	tr := st.Tr()
	require.NoError(t, tr.InsertText("X", -1, -1))
	assert.True(t, doc(p(txt("aXd"))).Eq(tr.Doc), tr.Doc.String())
	assert.Equal(t, 3, tr.Selection().Head().Pos)
}

func TestStoredMarksApplyToTypedText(t *testing.T) {
	strong := mark("strong")
	st := newState(t, doc(p()), 1, 1)
	tr := st.Tr()
	tr.AddStoredMark(strong)
	assert.True(t, tr.StoredMarksSet())

	st, err := st.Apply(tr)
	require.NoError(t, err)
	require.Len(t, st.StoredMarks, 1)

	tr = st.Tr()
	require.NoError(t, tr.InsertText("a", -1, -1))
	assert.Nil(t, tr.StoredMarks(), "a step clears stored marks")
	assert.True(t, doc(p(txt("a", strong))).Eq(tr.Doc), spew.Sdump(tr.Doc.ToRecord()))

	st, err = st.Apply(tr)
	require.NoError(t, err)
	assert.Nil(t, st.StoredMarks)
}

func TestInsertTextInheritsMarks(t *testing.T) {
	em := mark("em")
	st := newState(t, doc(p(txt("ab", em))), 2, 2)
	tr := st.Tr()
	require.NoError(t, tr.InsertText("x", -1, -1))
	assert.True(t, doc(p(txt("axb", em))).Eq(tr.Doc), tr.Doc.String())
}

func TestSelectAllDeleteLeavesEmptyParagraph(t *testing.T) {
	d := doc(p(txt("ab")), p(txt("cd")))
	st, err := state.Create(state.Config{Doc: d, Selection: state.NewAllSelection(d)})
	require.NoError(t, err)

	tr := st.Tr()
	require.NoError(t, tr.DeleteSelection())
	next, err := st.Apply(tr)
	require.NoError(t, err)
	assert.True(t, doc(p()).Eq(next.Doc), next.Doc.String())
	assert.Equal(t, 1, next.Selection.Head().Pos)
	require.NoError(t, next.Doc.Check())
}

func TestReplaceSelectionWithBlock(t *testing.T) {
	st := newState(t, doc(p(txt("abcd"))), 3, 3)
	tr := st.Tr()
	require.NoError(t, tr.ReplaceSelectionWith(hr(), false))
	assert.True(t, doc(p(txt("ab")), hr(), p(txt("cd"))).Eq(tr.Doc), tr.Doc.String())
	assert.Equal(t, 6, tr.Selection().Head().Pos)
}

func TestSelectionMapsLazily(t *testing.T) {
	st := newState(t, doc(p(txt("abc"))), 2, 2)
	tr := st.Tr()
	require.NoError(t, tr.Insert(1, txt("XX")))
	assert.False(t, tr.SelectionSet())
	assert.Equal(t, 4, tr.Selection().Head().Pos)
}

func TestApplyRejectsForeignTransaction(t *testing.T) {
	a := newState(t, doc(p(txt("a"))), 1, 1)
	b := newState(t, doc(p(txt("b"))), 1, 1)
	_, err := a.Apply(b.Tr())
	assert.ErrorIs(t, err, state.ErrMismatchedTransaction)
}

func TestMeta(t *testing.T) {
	st := newState(t, doc(p()), 1, 1)
	tr := st.Tr()
	assert.True(t, tr.IsGeneric())
	assert.True(t, tr.AddToHistory())
	assert.True(t, tr.Appendable())

	tr.SetMeta(state.MetaAddToHistory, false).SetMeta(state.MetaReplay, "undo")
	assert.False(t, tr.AddToHistory())
	assert.Equal(t, "undo", tr.MetaString(state.MetaReplay))
	assert.NotEqual(t, st.Tr().ID, tr.ID)
}

func TestStateRecordRoundTrip(t *testing.T) {
	st := newState(t, doc(p(txt("abc"))), 1, 3)
	back, err := state.FromRecord(schema, st.ToRecord())
	require.NoError(t, err)
	assert.True(t, st.Doc.Eq(back.Doc))
	assert.True(t, st.Selection.Eq(back.Selection))
}
