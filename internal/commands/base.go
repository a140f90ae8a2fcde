package commands

import (
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
	"github.com/dshills/folio/internal/transform"
)

// DeleteSelection deletes a non-empty selection.
func DeleteSelection(st *state.State) *state.Transaction {
	if st.Selection.Empty() {
		return nil
	}
	tr := st.Tr()
	if err := tr.DeleteSelection(); err != nil {
		return nil
	}
	return tr
}

// SelectAll selects the whole document.
func SelectAll(st *state.State) *state.Transaction {
	return st.Tr().SetSelection(state.NewAllSelection(st.Doc))
}

// JoinBackward joins the textblock at a cursor with the block before it,
// or lifts the textblock when nothing precedes it.
func JoinBackward(st *state.State) *state.Transaction {
	cursor := atBlockStart(st)
	if cursor == nil {
		return nil
	}
	cut := findCutBefore(cursor)
	if cut == nil {
		return liftRange(st, cursor.BlockRange(nil, nil))
	}
	before := cut.NodeBefore()
	if tr := deleteBarrier(st, cut, -1); tr != nil {
		return tr
	}
	if cursor.Parent().Content.Size() == 0 && (textblockAt(before, true, false) || state.Selectable(before)) {
		for depth := cursor.Depth; ; depth-- {
			if tr := deleteEmptyAncestor(st, cursor, depth, func(tr *state.Transaction) {
				if textblockAt(before, true, false) {
					if sel := state.FindFrom(tr.Doc.MustResolve(tr.Mapping().Map(cut.Pos, -1)), -1, false); sel != nil {
						tr.SetSelection(sel)
					}
				} else if ns, err := state.NewNodeSelection(tr.Doc, cut.Pos-before.NodeSize()); err == nil {
					tr.SetSelection(ns)
				}
			}); tr != nil {
				return tr
			}
			if depth == 1 || cursor.Node(depth-1).ChildCount() > 1 {
				break
			}
		}
	}
	if before.IsAtom() && cut.Depth == cursor.Depth-1 {
		tr := st.Tr()
		if err := tr.Delete(cut.Pos-before.NodeSize(), cut.Pos); err != nil {
			return nil
		}
		return tr
	}
	return nil
}

// JoinForward joins the textblock at a cursor with the block after it.
func JoinForward(st *state.State) *state.Transaction {
	cursor := atBlockEnd(st)
	if cursor == nil {
		return nil
	}
	cut := findCutAfter(cursor)
	if cut == nil {
		return nil
	}
	after := cut.NodeAfter()
	if tr := deleteBarrier(st, cut, 1); tr != nil {
		return tr
	}
	if cursor.Parent().Content.Size() == 0 && (textblockAt(after, false, false) || state.Selectable(after)) {
		if tr := deleteEmptyAncestor(st, cursor, cursor.Depth, func(tr *state.Transaction) {
			mapped := tr.Mapping().Map(cut.Pos, 1)
			if textblockAt(after, false, false) {
				if sel := state.FindFrom(tr.Doc.MustResolve(mapped), 1, false); sel != nil {
					tr.SetSelection(sel)
				}
			} else if ns, err := state.NewNodeSelection(tr.Doc, mapped); err == nil {
				tr.SetSelection(ns)
			}
		}); tr != nil {
			return tr
		}
	}
	if after.IsAtom() && cut.Depth == cursor.Depth-1 {
		tr := st.Tr()
		if err := tr.Delete(cut.Pos, cut.Pos+after.NodeSize()); err != nil {
			return nil
		}
		return tr
	}
	return nil
}

// deleteEmptyAncestor removes the ancestor of cursor at depth when doing
// so actually shrinks the document, then lets place set the selection.
func deleteEmptyAncestor(st *state.State, cursor *model.ResolvedPos, depth int, place func(*state.Transaction)) *state.Transaction {
	step, err := transform.ReplaceStepFor(st.Doc, cursor.Before(depth), cursor.After(depth), model.EmptySlice)
	if err != nil {
		return nil
	}
	rs, ok := step.(*transform.ReplaceStep)
	if !ok || rs.Slice.Size() >= rs.To-rs.From {
		return nil
	}
	tr := st.Tr()
	if err := tr.Step(rs); err != nil {
		return nil
	}
	place(tr)
	return tr
}

func joinMaybeClear(st *state.State, pos *model.ResolvedPos) *state.Transaction {
	before, after := pos.NodeBefore(), pos.NodeAfter()
	index := pos.Index(pos.Depth)
	if before == nil || after == nil || !before.Type.CompatibleContent(after.Type) {
		return nil
	}
	if before.Content.Size() == 0 && pos.Parent().CanReplace(index-1, index, nil, 0, 0) {
		tr := st.Tr()
		if err := tr.Delete(pos.Pos-before.NodeSize(), pos.Pos); err != nil {
			return nil
		}
		return tr
	}
	if !pos.Parent().CanReplace(index, index+1, nil, 0, 0) ||
		!(after.IsTextblock() || transform.CanJoin(st.Doc, pos.Pos)) {
		return nil
	}
	tr := st.Tr()
	if err := tr.Join(pos.Pos, 1); err != nil {
		return nil
	}
	return tr
}

// deleteBarrier removes the boundary at cut between two blocks: by
// joining them, by moving the block after into the one before, or by
// lifting the content after the cut.
func deleteBarrier(st *state.State, cut *model.ResolvedPos, dir int) *state.Transaction {
	before, after := cut.NodeBefore(), cut.NodeAfter()
	if before == nil || after == nil {
		return nil
	}
	isolated := isolating(before) || isolating(after)
	if !isolated {
		if tr := joinMaybeClear(st, cut); tr != nil {
			return tr
		}
	}
	index := cut.Index(cut.Depth)
	canDelAfter := !isolated && cut.Parent().CanReplace(index, index+1, nil, 0, 0)

	if canDelAfter {
		if tr := wrapIntoBefore(st, cut, before, after); tr != nil {
			return tr
		}
	}

	if !isolating(after) && !(dir > 0 && isolated) {
		if sel := state.FindFrom(cut, 1, false); sel != nil {
			if r := sel.From().BlockRange(sel.To(), nil); r != nil {
				if target, ok := transform.LiftTarget(r); ok && target >= cut.Depth {
					tr := st.Tr()
					if err := tr.Lift(r, target); err != nil {
						return nil
					}
					return tr
				}
			}
		}
	}

	if canDelAfter && textblockAt(after, false, true) && textblockAt(before, true, false) {
		at := before
		var wrap []*model.Node
		for {
			wrap = append(wrap, at)
			if at.IsTextblock() {
				break
			}
			at = at.LastChild()
		}
		afterText, afterDepth := after, 1
		for !afterText.IsTextblock() {
			afterText = afterText.FirstChild()
			afterDepth++
		}
		if at.CanReplace(at.ChildCount(), at.ChildCount(), afterText.Content, 0, afterText.ChildCount()) {
			end := model.EmptyFragment
			for i := len(wrap) - 1; i >= 0; i-- {
				end = model.FragmentFrom(wrap[i].Copy(end))
			}
			step := transform.NewReplaceAroundStep(
				cut.Pos-len(wrap), cut.Pos+after.NodeSize(),
				cut.Pos+afterDepth, cut.Pos+after.NodeSize()-afterDepth,
				model.NewSlice(end, len(wrap), 0), 0, true)
			tr := st.Tr()
			if err := tr.Step(step); err != nil {
				return nil
			}
			return tr
		}
	}
	return nil
}

// wrapIntoBefore moves after into before, wrapping it as needed: a
// paragraph following a list becomes that list's last item.
func wrapIntoBefore(st *state.State, cut *model.ResolvedPos, before, after *model.Node) *state.Transaction {
	match := before.ContentMatchAt(before.ChildCount())
	if match == nil {
		return nil
	}
	conn := match.FindWrapping(after.Type)
	if conn == nil {
		return nil
	}
	first := after.Type
	if len(conn) > 0 {
		first = conn[0]
	}
	if m := match.MatchType(first); m == nil || !m.ValidEnd {
		return nil
	}
	end := cut.Pos + after.NodeSize()
	wrap := model.EmptyFragment
	for i := len(conn) - 1; i >= 0; i-- {
		n, err := conn[i].Create(nil, wrap, nil)
		if err != nil {
			return nil
		}
		wrap = model.FragmentFrom(n)
	}
	wrap = model.FragmentFrom(before.Copy(wrap))
	tr := st.Tr()
	step := transform.NewReplaceAroundStep(cut.Pos-1, end, cut.Pos, end, model.NewSlice(wrap, 1, 0), len(conn), true)
	if err := tr.Step(step); err != nil {
		return nil
	}
	if joinAt, err := tr.Doc.Resolve(end + 2*len(conn)); err == nil {
		if na := joinAt.NodeAfter(); na != nil && na.Type == before.Type && transform.CanJoin(tr.Doc, joinAt.Pos) {
			_ = tr.Join(joinAt.Pos, 1)
		}
	}
	return tr
}

// DeleteCharBackward deletes the grapheme cluster before a cursor that
// is not at the start of its textblock.
func DeleteCharBackward(st *state.State) *state.Transaction {
	c := cursorOf(st.Selection)
	if c == nil || c.ParentOffset == 0 || !c.Parent().InlineContent() {
		return nil
	}
	text := inlineText(c.Parent())
	from := prevGrapheme(text, c.ParentOffset)
	tr := st.Tr()
	if err := tr.Delete(c.Pos-(c.ParentOffset-from), c.Pos); err != nil {
		return nil
	}
	return tr
}

// DeleteCharForward deletes the grapheme cluster after a cursor that is
// not at the end of its textblock.
func DeleteCharForward(st *state.State) *state.Transaction {
	c := cursorOf(st.Selection)
	if c == nil || !c.Parent().InlineContent() || c.ParentOffset >= c.Parent().Content.Size() {
		return nil
	}
	text := inlineText(c.Parent())
	to := nextGrapheme(text, c.ParentOffset)
	tr := st.Tr()
	if err := tr.Delete(c.Pos, c.Pos+(to-c.ParentOffset)); err != nil {
		return nil
	}
	return tr
}

// NewlineInCode inserts a newline when the selection sits in a code block.
func NewlineInCode(st *state.State) *state.Transaction {
	head, anchor := st.Selection.Head(), st.Selection.Anchor()
	if !head.Parent().Type.IsCode() || !head.SameParent(anchor) {
		return nil
	}
	tr := st.Tr()
	if err := tr.InsertText("\n", -1, -1); err != nil {
		return nil
	}
	return tr
}

// ExitCode creates a default block after the code block holding the
// selection and moves the cursor there.
func ExitCode(st *state.State) *state.Transaction {
	head, anchor := st.Selection.Head(), st.Selection.Anchor()
	if !head.Parent().Type.IsCode() || !head.SameParent(anchor) || head.Depth < 1 {
		return nil
	}
	above := head.Node(head.Depth - 1)
	after := head.IndexAfter(head.Depth - 1)
	t := defaultBlockAt(above.ContentMatchAt(after))
	if t == nil || !above.CanReplaceWith(after, after, t, nil) {
		return nil
	}
	block, err := t.CreateAndFill(nil, nil, nil)
	if err != nil {
		return nil
	}
	pos := head.After(head.Depth)
	tr := st.Tr()
	if err := tr.ReplaceWith(pos, pos, block); err != nil {
		return nil
	}
	tr.SetSelection(state.Near(tr.Doc.MustResolve(pos), 1))
	return tr
}

// CreateParagraphNear inserts an empty default textblock next to a
// selected block node.
func CreateParagraphNear(st *state.State) *state.Transaction {
	sel := st.Selection
	if _, all := sel.(*state.AllSelection); all {
		return nil
	}
	from, to := sel.From(), sel.To()
	if from.Parent().InlineContent() || to.Parent().InlineContent() {
		return nil
	}
	t := defaultBlockAt(to.Parent().ContentMatchAt(to.IndexAfter(to.Depth)))
	if t == nil || !t.IsTextblock() {
		return nil
	}
	side := to.Pos
	if from.ParentOffset == 0 && to.Index(to.Depth) < to.Parent().ChildCount() {
		side = from.Pos
	}
	block, err := t.CreateAndFill(nil, nil, nil)
	if err != nil {
		return nil
	}
	tr := st.Tr()
	if err := tr.Insert(side, block); err != nil {
		return nil
	}
	if ts, err := state.NewTextSelection(tr.Doc, side+1, side+1); err == nil {
		tr.SetSelection(ts)
	}
	return tr
}

// LiftEmptyBlock splits the parent of an empty textblock at the cursor,
// or lifts the textblock out of its parent.
func LiftEmptyBlock(st *state.State) *state.Transaction {
	c := cursorOf(st.Selection)
	if c == nil || c.Parent().Content.Size() > 0 {
		return nil
	}
	if c.Depth > 1 && c.After(c.Depth) != c.End(c.Depth-1) {
		before := c.Before(c.Depth)
		if transform.CanSplit(st.Doc, before, 1, nil) {
			tr := st.Tr()
			if err := tr.Split(before, 1, nil); err != nil {
				return nil
			}
			return tr
		}
	}
	return liftRange(st, c.BlockRange(nil, nil))
}

// SplitBlock splits the parent block of the selection, deleting any
// selected content first. At the end of a block the new block takes the
// default type for its position.
func SplitBlock(st *state.State) *state.Transaction {
	from := st.Selection.From()
	if ns, ok := st.Selection.(*state.NodeSelection); ok && ns.Node().IsBlock() {
		if from.ParentOffset == 0 || !transform.CanSplit(st.Doc, from.Pos, 1, nil) {
			return nil
		}
		tr := st.Tr()
		if err := tr.Split(from.Pos, 1, nil); err != nil {
			return nil
		}
		return tr
	}
	if from.Depth == 0 {
		return nil
	}
	var types []transform.Wrapper
	var deflt *model.NodeType
	splitDepth := 0
	atEnd, atStart := false, false
	for d := from.Depth; ; d-- {
		if from.Node(d).IsBlock() {
			atEnd = from.End(d) == from.Pos+(from.Depth-d)
			atStart = from.Start(d) == from.Pos-(from.Depth-d)
			deflt = defaultBlockAt(from.Node(d - 1).ContentMatchAt(from.IndexAfter(d - 1)))
			first := transform.Wrapper{}
			if atEnd && deflt != nil {
				first.Type = deflt
			}
			types = append([]transform.Wrapper{first}, types...)
			splitDepth = d
			break
		}
		if d == 1 {
			return nil
		}
		types = append([]transform.Wrapper{{}}, types...)
	}

	tr := st.Tr()
	switch st.Selection.(type) {
	case *state.TextSelection, *state.AllSelection:
		if err := tr.DeleteSelection(); err != nil {
			return nil
		}
	}
	splitPos := tr.Mapping().Map(from.Pos, 1)
	if !transform.CanSplit(tr.Doc, splitPos, len(types), types) {
		types[0] = transform.Wrapper{Type: deflt}
		if !transform.CanSplit(tr.Doc, splitPos, len(types), types) {
			return nil
		}
	}
	if err := tr.Split(splitPos, len(types), types); err != nil {
		return nil
	}
	if !atEnd && atStart && from.Node(splitDepth).Type != deflt && deflt != nil {
		first := tr.Mapping().Map(from.Before(splitDepth), 1)
		if rfirst, err := tr.Doc.Resolve(first); err == nil {
			index := rfirst.Index(rfirst.Depth)
			if from.Node(splitDepth-1).CanReplaceWith(index, index+1, deflt, nil) {
				_ = tr.SetNodeMarkup(first, deflt, nil, nil)
			}
		}
	}
	return tr
}

// JoinUp joins the selected block, or the closest joinable ancestor of
// the selection, with the sibling above it.
func JoinUp(st *state.State) *state.Transaction {
	sel := st.Selection
	ns, nodeSel := sel.(*state.NodeSelection)
	var point int
	if nodeSel {
		if ns.Node().IsTextblock() || !transform.CanJoin(st.Doc, sel.From().Pos) {
			return nil
		}
		point = sel.From().Pos
	} else {
		var ok bool
		if point, ok = transform.JoinPoint(st.Doc, sel.From().Pos, -1); !ok {
			return nil
		}
	}
	tr := st.Tr()
	if err := tr.Join(point, 1); err != nil {
		return nil
	}
	if nodeSel {
		before := st.Doc.MustResolve(point).NodeBefore()
		if ns, err := state.NewNodeSelection(tr.Doc, point-before.NodeSize()); err == nil {
			tr.SetSelection(ns)
		}
	}
	return tr
}

// JoinDown joins the selected block, or the closest joinable ancestor of
// the selection, with the sibling below it.
func JoinDown(st *state.State) *state.Transaction {
	sel := st.Selection
	var point int
	if ns, ok := sel.(*state.NodeSelection); ok {
		if ns.Node().IsTextblock() || !transform.CanJoin(st.Doc, sel.To().Pos) {
			return nil
		}
		point = sel.To().Pos
	} else {
		var found bool
		if point, found = transform.JoinPoint(st.Doc, sel.To().Pos, 1); !found {
			return nil
		}
	}
	tr := st.Tr()
	if err := tr.Join(point, 1); err != nil {
		return nil
	}
	return tr
}

// Lift moves the selected blocks out of their parent.
func Lift(st *state.State) *state.Transaction {
	return liftRange(st, st.Selection.From().BlockRange(st.Selection.To(), nil))
}

func liftRange(st *state.State, r *model.NodeRange) *state.Transaction {
	if r == nil {
		return nil
	}
	target, ok := transform.LiftTarget(r)
	if !ok {
		return nil
	}
	tr := st.Tr()
	if err := tr.Lift(r, target); err != nil {
		return nil
	}
	return tr
}

// SelectParentNode selects the innermost node that contains the whole
// selection.
func SelectParentNode(st *state.State) *state.Transaction {
	from, to := st.Selection.From(), st.Selection.To()
	same := from.SharedDepth(to.Pos)
	if same == 0 {
		return nil
	}
	ns, err := state.NewNodeSelection(st.Doc, from.Before(same))
	if err != nil {
		return nil
	}
	return st.Tr().SetSelection(ns)
}

// SwallowTab consumes the key without changing anything.
func SwallowTab(st *state.State) *state.Transaction {
	return st.Tr()
}
