package commands

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
)

// ToggleMark adds a mark of type t (with attrs) to the selection, or
// removes it when the selection already has it anywhere. With a cursor
// it toggles the stored marks instead. Whitespace at the edges of a
// selection is left unmarked.
func ToggleMark(t *model.MarkType, attrs model.Attrs) Command {
	return func(st *state.State) *state.Transaction {
		sel := st.Selection
		cursor := cursorOf(sel)
		if sel.Empty() && cursor == nil {
			return nil
		}
		if !markApplies(st.Doc, sel.From(), sel.To(), t) {
			return nil
		}
		if cursor != nil {
			marks := st.StoredMarks
			if marks == nil {
				marks = cursor.Marks()
			}
			if t.IsInSet(marks) != nil {
				return st.Tr().RemoveStoredMarkType(t)
			}
			m, err := t.Create(attrs)
			if err != nil {
				return nil
			}
			return st.Tr().AddStoredMark(m)
		}

		from, to := sel.From(), sel.To()
		tr := st.Tr()
		if st.Doc.RangeHasMark(from.Pos, to.Pos, t) {
			if err := tr.RemoveMarkType(from.Pos, to.Pos, t); err != nil {
				return nil
			}
			return tr
		}
		m, err := t.Create(attrs)
		if err != nil {
			return nil
		}
		start, end := from.Pos, to.Pos
		spaceStart, spaceEnd := 0, 0
		if n := from.NodeAfter(); n != nil && n.IsText() {
			spaceStart = leadingSpace(n.Text())
		}
		if n := to.NodeBefore(); n != nil && n.IsText() {
			spaceEnd = trailingSpace(n.Text())
		}
		if start+spaceStart < end {
			start += spaceStart
			end -= spaceEnd
		}
		if err := tr.AddMark(start, end, m); err != nil {
			return nil
		}
		return tr
	}
}

func markApplies(doc *model.Node, from, to *model.ResolvedPos, t *model.MarkType) bool {
	can := from.Depth == 0 && doc.InlineContent() && doc.Type.AllowsMarkType(t)
	doc.NodesBetween(from.Pos, to.Pos, func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if can {
			return false
		}
		can = n.InlineContent() && n.Type.AllowsMarkType(t)
		return true
	})
	return can
}

func leadingSpace(s string) int {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	return utf8.RuneCountInString(s) - utf8.RuneCountInString(trimmed)
}

func trailingSpace(s string) int {
	trimmed := strings.TrimRightFunc(s, unicode.IsSpace)
	return utf8.RuneCountInString(s) - utf8.RuneCountInString(trimmed)
}
