package commands

import (
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
	"github.com/dshills/folio/internal/transform"
)

// WrapInList wraps the selected blocks in a list of type listType, one
// item per block. It does not apply at the top of an existing list item.
func WrapInList(listType *model.NodeType, attrs model.Attrs) Command {
	return func(st *state.State) *state.Transaction {
		r := st.Selection.From().BlockRange(st.Selection.To(), nil)
		if r == nil {
			return nil
		}
		if r.Depth >= 2 && r.From.Node(r.Depth-1).Type.CompatibleContent(listType) && r.StartIndex() == 0 {
			return nil
		}
		wrappers := transform.FindWrapping(r, listType, attrs)
		if wrappers == nil {
			return nil
		}
		tr := st.Tr()
		if err := tr.Wrap(r, wrappers); err != nil {
			return nil
		}
		found := 0
		for i, w := range wrappers {
			if w.Type == listType {
				found = i + 1
			}
		}
		splitDepth := len(wrappers) - found
		splitPos := r.Start() + len(wrappers)
		parent := r.Parent()
		for i, first := r.StartIndex(), true; i < r.EndIndex(); i, first = i+1, false {
			if !first && splitDepth > 0 && transform.CanSplit(tr.Doc, splitPos, splitDepth, nil) {
				if err := tr.Split(splitPos, splitDepth, nil); err != nil {
					return nil
				}
				splitPos += 2 * splitDepth
			}
			splitPos += parent.Child(i).NodeSize()
		}
		return tr
	}
}

func inItemOf(itemType *model.NodeType) func(*model.Node) bool {
	return func(n *model.Node) bool {
		return n.ChildCount() > 0 && n.FirstChild().Type == itemType
	}
}

// SplitListItem splits the list item holding the selection. In an empty
// last block of a nested item it splits the outer item instead; in an
// empty block of a top-level item it does not apply, leaving the lift to
// the next command.
func SplitListItem(itemType *model.NodeType) Command {
	return func(st *state.State) *state.Transaction {
		from, to := st.Selection.From(), st.Selection.To()
		if ns, ok := st.Selection.(*state.NodeSelection); ok && ns.Node().IsBlock() {
			return nil
		}
		if from.Depth < 2 || !from.SameParent(to) {
			return nil
		}
		grandParent := from.Node(from.Depth - 1)
		if grandParent.Type != itemType {
			return nil
		}
		if from.Parent().Content.Size() == 0 && grandParent.ChildCount() == from.IndexAfter(from.Depth-1) {
			return splitOuterItem(st, from, itemType)
		}
		var types []transform.Wrapper
		if to.Pos == from.End(from.Depth) {
			if next := grandParent.ContentMatchAt(0).DefaultType(); next != nil {
				types = []transform.Wrapper{{}, {Type: next}}
			}
		}
		tr := st.Tr()
		if err := tr.Delete(from.Pos, to.Pos); err != nil {
			return nil
		}
		if !transform.CanSplit(tr.Doc, from.Pos, 2, types) {
			return nil
		}
		if err := tr.Split(from.Pos, 2, types); err != nil {
			return nil
		}
		return tr
	}
}

func splitOuterItem(st *state.State, from *model.ResolvedPos, itemType *model.NodeType) *state.Transaction {
	d := from.Depth
	if d < 4 || from.Node(d-3).Type != itemType || from.Index(d-2) != from.Node(d-2).ChildCount()-1 {
		return nil
	}
	depthBefore := 3
	switch {
	case from.Index(d-1) > 0:
		depthBefore = 1
	case from.Index(d-2) > 0:
		depthBefore = 2
	}
	wrap := model.EmptyFragment
	for level := d - depthBefore; level >= d-3; level-- {
		wrap = model.FragmentFrom(from.Node(level).Copy(wrap))
	}
	depthAfter := 3
	switch {
	case from.IndexAfter(d-1) < from.Node(d-2).ChildCount():
		depthAfter = 1
	case from.IndexAfter(d-2) < from.Node(d-3).ChildCount():
		depthAfter = 2
	}
	item, err := itemType.CreateAndFill(nil, nil, nil)
	if err != nil {
		return nil
	}
	wrap = wrap.Append(model.FragmentFrom(item))
	start := from.Before(d - (depthBefore - 1))
	tr := st.Tr()
	if err := tr.Replace(start, from.After(d-depthAfter), model.NewSlice(wrap, 4-depthBefore, 0)); err != nil {
		return nil
	}
	sel := -1
	tr.Doc.NodesBetween(start, tr.Doc.Content.Size(), func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if sel > -1 {
			return false
		}
		if n.IsTextblock() && n.Content.Size() == 0 {
			sel = pos + 1
		}
		return true
	})
	if sel > -1 {
		tr.SetSelection(state.Near(tr.Doc.MustResolve(sel), 1))
	}
	return tr
}

// LiftListItem moves the selected list items out of their list: into
// the enclosing list when nested, otherwise out of lists altogether.
func LiftListItem(itemType *model.NodeType) Command {
	return func(st *state.State) *state.Transaction {
		from, to := st.Selection.From(), st.Selection.To()
		r := from.BlockRange(to, inItemOf(itemType))
		if r == nil {
			return nil
		}
		if r.Depth >= 1 && from.Node(r.Depth-1).Type == itemType {
			return liftToOuterList(st, itemType, r)
		}
		return liftOutOfList(st, r)
	}
}

func liftToOuterList(st *state.State, itemType *model.NodeType, r *model.NodeRange) *state.Transaction {
	tr := st.Tr()
	end := r.End()
	endOfList := r.To.End(r.Depth)
	if end < endOfList {
		item, err := itemType.Create(nil, model.FragmentFrom(r.Parent().Copy(nil)), nil)
		if err != nil {
			return nil
		}
		step := transform.NewReplaceAroundStep(end-1, endOfList, end, endOfList, model.NewSlice(model.FragmentFrom(item), 1, 0), 1, true)
		if err := tr.Step(step); err != nil {
			return nil
		}
		r = &model.NodeRange{From: tr.Doc.MustResolve(r.From.Pos), To: tr.Doc.MustResolve(endOfList), Depth: r.Depth}
	}
	target, ok := transform.LiftTarget(r)
	if !ok {
		return nil
	}
	if err := tr.Lift(r, target); err != nil {
		return nil
	}
	if after, err := tr.Doc.Resolve(tr.Mapping().Map(end, -1) - 1); err == nil {
		nb, na := after.NodeBefore(), after.NodeAfter()
		if transform.CanJoin(tr.Doc, after.Pos) && nb != nil && na != nil && nb.Type == na.Type {
			_ = tr.Join(after.Pos, 1)
		}
	}
	return tr
}

func liftOutOfList(st *state.State, r *model.NodeRange) *state.Transaction {
	tr := st.Tr()
	list := r.Parent()
	for pos, i := r.End(), r.EndIndex()-1; i > r.StartIndex(); i-- {
		pos -= list.Child(i).NodeSize()
		if err := tr.Delete(pos-1, pos+1); err != nil {
			return nil
		}
	}
	start := tr.Doc.MustResolve(r.Start())
	item := start.NodeAfter()
	if item == nil || tr.Mapping().Map(r.End(), 1) != r.Start()+item.NodeSize() {
		return nil
	}
	atStart, atEnd := r.StartIndex() == 0, r.EndIndex() == list.ChildCount()
	parent := start.Node(start.Depth - 1)
	indexBefore := start.Index(start.Depth - 1)
	rest := model.EmptyFragment
	if !atEnd {
		rest = model.FragmentFrom(list)
	}
	replacement := item.Content.Append(rest)
	fromIndex := indexBefore + 1
	if atStart {
		fromIndex = indexBefore
	}
	if !parent.CanReplace(fromIndex, indexBefore+1, replacement, 0, replacement.ChildCount()) {
		return nil
	}
	s, e := start.Pos, start.Pos+item.NodeSize()
	closeBefore, openAfter := model.EmptyFragment, model.EmptyFragment
	sliceStart, sliceEnd := 1, 1
	if atStart {
		sliceStart = 0
	} else {
		closeBefore = model.FragmentFrom(list.Copy(model.EmptyFragment))
	}
	if atEnd {
		sliceEnd = 0
	} else {
		openAfter = model.FragmentFrom(list.Copy(model.EmptyFragment))
	}
	outerFrom, outerTo := s-1, e+1
	if !atStart {
		outerFrom = s
	}
	if !atEnd {
		outerTo = e
	}
	step := transform.NewReplaceAroundStep(outerFrom, outerTo, s+1, e-1,
		model.NewSlice(closeBefore.Append(openAfter), sliceStart, sliceEnd), sliceStart, false)
	if err := tr.Step(step); err != nil {
		return nil
	}
	return tr
}

// SinkListItem nests the selected list items inside the item before
// them.
func SinkListItem(itemType *model.NodeType) Command {
	return func(st *state.State) *state.Transaction {
		from, to := st.Selection.From(), st.Selection.To()
		r := from.BlockRange(to, inItemOf(itemType))
		if r == nil {
			return nil
		}
		startIndex := r.StartIndex()
		if startIndex == 0 {
			return nil
		}
		parent := r.Parent()
		nodeBefore := parent.Child(startIndex - 1)
		if nodeBefore.Type != itemType {
			return nil
		}
		nestedBefore := nodeBefore.LastChild() != nil && nodeBefore.LastChild().Type == parent.Type
		inner := model.EmptyFragment
		if nestedBefore {
			n, err := itemType.Create(nil, nil, nil)
			if err != nil {
				return nil
			}
			inner = model.FragmentFrom(n)
		}
		list, err := parent.Type.Create(nil, inner, nil)
		if err != nil {
			return nil
		}
		wrapper, err := itemType.Create(nil, model.FragmentFrom(list), nil)
		if err != nil {
			return nil
		}
		openStart := 1
		if nestedBefore {
			openStart = 3
		}
		before, after := r.Start(), r.End()
		step := transform.NewReplaceAroundStep(before-openStart, after, before, after,
			model.NewSlice(model.FragmentFrom(wrapper), openStart, 0), 1, true)
		tr := st.Tr()
		if err := tr.Step(step); err != nil {
			return nil
		}
		return tr
	}
}
