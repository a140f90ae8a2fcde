package commands

import (
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
)

// Motion commands move the cursor (or, when extending, the selection
// head) by grapheme clusters, by lines separated by newlines or hard
// breaks, and across block boundaries. There is no layout, so a "line"
// is a run of inline content between breaks.

// MoveLeft moves the cursor one grapheme back, collapsing a range to its
// start.
func MoveLeft(st *state.State) *state.Transaction { return horizontal(st, -1, false) }

// MoveRight moves the cursor one grapheme forward, collapsing a range to
// its end.
func MoveRight(st *state.State) *state.Transaction { return horizontal(st, 1, false) }

// ExtendLeft moves the selection head one grapheme back.
func ExtendLeft(st *state.State) *state.Transaction { return horizontal(st, -1, true) }

// ExtendRight moves the selection head one grapheme forward.
func ExtendRight(st *state.State) *state.Transaction { return horizontal(st, 1, true) }

// MoveUp moves the cursor to the previous line, keeping the column where
// the line is long enough.
func MoveUp(st *state.State) *state.Transaction { return vertical(st, -1) }

// MoveDown moves the cursor to the next line.
func MoveDown(st *state.State) *state.Transaction { return vertical(st, 1) }

// MoveLineStart moves the cursor to the start of its line.
func MoveLineStart(st *state.State) *state.Transaction { return lineEdge(st, -1, false) }

// MoveLineEnd moves the cursor to the end of its line.
func MoveLineEnd(st *state.State) *state.Transaction { return lineEdge(st, 1, false) }

// ExtendLineStart moves the selection head to the start of its line.
func ExtendLineStart(st *state.State) *state.Transaction { return lineEdge(st, -1, true) }

// ExtendLineEnd moves the selection head to the end of its line.
func ExtendLineEnd(st *state.State) *state.Transaction { return lineEdge(st, 1, true) }

func horizontal(st *state.State, dir int, extend bool) *state.Transaction {
	sel := st.Selection
	if !extend {
		switch s := sel.(type) {
		case *state.AllSelection:
			if dir < 0 {
				return setSelection(st, state.AtStart(st.Doc))
			}
			return setSelection(st, state.AtEnd(st.Doc))
		case *state.NodeSelection:
			edge := s.From()
			if dir > 0 {
				edge = s.To()
			}
			if found := state.FindFrom(edge, dir, false); found != nil {
				return setSelection(st, found)
			}
			return nil
		case *state.TextSelection:
			if !s.Empty() {
				edge := s.From()
				if dir > 0 {
					edge = s.To()
				}
				return setSelection(st, state.Cursor(edge))
			}
		}
		next := stepFrom(sel.Head(), dir, false)
		if next == nil {
			return nil
		}
		return setSelection(st, next)
	}

	head := sel.Head()
	next := stepFrom(head, dir, true)
	if next == nil {
		return nil
	}
	return setSelection(st, state.TextBetween(sel.Anchor(), next.Head(), dir))
}

// stepFrom returns the selection one grapheme from pos in direction dir,
// crossing into the neighbouring block at a textblock edge.
func stepFrom(pos *model.ResolvedPos, dir int, textOnly bool) state.Selection {
	parent := pos.Parent()
	if parent.InlineContent() {
		text := inlineText(parent)
		off := pos.ParentOffset
		switch {
		case dir < 0 && off > 0:
			return state.Cursor(pos.Doc().MustResolve(pos.Pos - (off - prevGrapheme(text, off))))
		case dir > 0 && off < len(text):
			return state.Cursor(pos.Doc().MustResolve(pos.Pos + (nextGrapheme(text, off) - off)))
		}
		if pos.Depth == 0 {
			return nil
		}
		edge := pos.Before(pos.Depth)
		if dir > 0 {
			edge = pos.After(pos.Depth)
		}
		return state.FindFrom(pos.Doc().MustResolve(edge), dir, textOnly)
	}
	return state.FindFrom(pos, dir, textOnly)
}

func vertical(st *state.State, dir int) *state.Transaction {
	head := st.Selection.Head()
	if ts, ok := st.Selection.(*state.TextSelection); !ok || !ts.Empty() {
		edge := st.Selection.From()
		if dir > 0 {
			edge = st.Selection.To()
		}
		if ok {
			return setSelection(st, state.Cursor(edge))
		}
		if found := state.FindFrom(edge, dir, true); found != nil {
			return setSelection(st, state.Cursor(found.Head()))
		}
		return nil
	}
	if !head.Parent().InlineContent() {
		return nil
	}
	text := inlineText(head.Parent())
	off := head.ParentOffset
	start := lineStart(text, off)
	col := off - start
	start0 := head.Pos - off

	if dir < 0 && start > 0 {
		prevStart := lineStart(text, start-1)
		target := prevStart + min(col, start-1-prevStart)
		return setSelection(st, state.Cursor(st.Doc.MustResolve(start0+target)))
	}
	if dir > 0 {
		if end := lineEnd(text, off); end < len(text) {
			nextEnd := lineEnd(text, end+1)
			target := end + 1 + min(col, nextEnd-end-1)
			return setSelection(st, state.Cursor(st.Doc.MustResolve(start0+target)))
		}
	}

	if head.Depth == 0 {
		return nil
	}
	edge := head.Before(head.Depth)
	if dir > 0 {
		edge = head.After(head.Depth)
	}
	found := state.FindFrom(st.Doc.MustResolve(edge), dir, false)
	if found == nil {
		return nil
	}
	ts, ok := found.(*state.TextSelection)
	if !ok {
		return setSelection(st, found)
	}
	into := ts.Head()
	other := inlineText(into.Parent())
	base := into.Pos - into.ParentOffset
	var target int
	if dir < 0 {
		ls := lineStart(other, len(other))
		target = ls + min(col, len(other)-ls)
	} else {
		target = min(col, lineEnd(other, 0))
	}
	return setSelection(st, state.Cursor(st.Doc.MustResolve(base+target)))
}

func lineEdge(st *state.State, dir int, extend bool) *state.Transaction {
	head := st.Selection.Head()
	if !head.Parent().InlineContent() {
		return nil
	}
	text := inlineText(head.Parent())
	off := head.ParentOffset
	target := lineStart(text, off)
	if dir > 0 {
		target = lineEnd(text, off)
	}
	pos := st.Doc.MustResolve(head.Pos - off + target)
	if extend {
		return setSelection(st, state.TextBetween(st.Selection.Anchor(), pos, dir))
	}
	return setSelection(st, state.Cursor(pos))
}

// setSelection returns a transaction selecting sel, or nil when sel is
// already the selection.
func setSelection(st *state.State, sel state.Selection) *state.Transaction {
	if sel == nil || sel.Eq(st.Selection) {
		return nil
	}
	return st.Tr().SetSelection(sel)
}
