package transform

import (
	"github.com/dshills/folio/internal/model"
)

// ReplaceStepFor builds a step that replaces [from, to) with slice,
// fitting the slice into the surrounding structure. It returns a nil
// step when the replacement is a no-op.
func ReplaceStepFor(doc *model.Node, from, to int, slice *model.Slice) (Step, error) {
	if slice == nil {
		slice = model.EmptySlice
	}
	if from == to && slice.Size() == 0 {
		return nil, nil
	}
	rfrom, err := doc.Resolve(from)
	if err != nil {
		return nil, err
	}
	rto, err := doc.Resolve(to)
	if err != nil {
		return nil, err
	}
	if fitsTrivially(rfrom, rto, slice) {
		return NewReplaceStep(from, to, slice, false), nil
	}
	step, ok := newFitter(rfrom, rto, slice).fit()
	if !ok {
		return nil, failf("cannot fit slice into %d-%d", from, to)
	}
	return step, nil
}

func fitsTrivially(from, to *model.ResolvedPos, slice *model.Slice) bool {
	return slice.OpenStart == 0 && slice.OpenEnd == 0 && from.Start(from.Depth) == to.Start(to.Depth) &&
		from.Parent().CanReplace(from.Index(from.Depth), to.Index(to.Depth), slice.Content, 0, slice.Content.ChildCount())
}

type frontierEntry struct {
	typ   *model.NodeType
	match *model.ContentMatch
}

type fittable struct {
	sliceDepth    int
	frontierDepth int
	parent        *model.Node
	inject        *model.Fragment
	wrap          []*model.NodeType
}

// fitter places the content of an open slice into the document one
// node at a time. The frontier is the stack of open nodes on the right
// edge of what has been placed so far.
type fitter struct {
	from, to *model.ResolvedPos
	unplaced *model.Slice
	frontier []*frontierEntry
	placed   *model.Fragment
}

func newFitter(from, to *model.ResolvedPos, unplaced *model.Slice) *fitter {
	f := &fitter{from: from, to: to, unplaced: unplaced, placed: model.EmptyFragment}
	for i := 0; i <= from.Depth; i++ {
		node := from.Node(i)
		f.frontier = append(f.frontier, &frontierEntry{typ: node.Type, match: node.ContentMatchAt(from.IndexAfter(i))})
	}
	for i := from.Depth; i > 0; i-- {
		f.placed = model.FragmentFrom(from.Node(i).Copy(f.placed))
	}
	return f
}

func (f *fitter) depth() int { return len(f.frontier) - 1 }

func (f *fitter) fit() (Step, bool) {
	for f.unplaced.Size() > 0 {
		if fit := f.findFittable(); fit != nil {
			f.placeNodes(fit)
		} else if !f.openMore() {
			f.dropNode()
		}
	}
	moveInline := f.mustMoveInline()
	placedSize := f.placed.Size() - f.depth() - f.from.Depth
	target := f.to
	if moveInline >= 0 {
		target = f.from.Doc().MustResolve(moveInline)
	}
	to := f.close(target)
	if to == nil {
		return nil, false
	}
	content, openStart, openEnd := f.placed, f.from.Depth, to.Depth
	for openStart > 0 && openEnd > 0 && content.ChildCount() == 1 {
		content = content.FirstChild().Content
		openStart--
		openEnd--
	}
	slice := model.NewSlice(content, openStart, openEnd)
	if moveInline >= 0 {
		return NewReplaceAroundStep(f.from.Pos, moveInline, f.to.Pos, f.to.End(f.to.Depth), slice, placedSize, false), true
	}
	if slice.Size() > 0 || f.from.Pos != f.to.Pos {
		return NewReplaceStep(f.from.Pos, to.Pos, slice, false), true
	}
	return nil, true
}

func (f *fitter) findFittable() *fittable {
	startDepth := f.unplaced.OpenStart
	cur, openEnd := f.unplaced.Content, f.unplaced.OpenEnd
	for d := 0; d < startDepth; d++ {
		node := cur.FirstChild()
		if cur.ChildCount() > 1 {
			openEnd = 0
		}
		if node.Type.Spec.Isolating && openEnd <= d {
			startDepth = d
			break
		}
		cur = node.Content
	}
	// Wrapping is only tried after a plain fit failed at every depth.
	for pass := 1; pass <= 2; pass++ {
		sliceStart := startDepth
		if pass == 2 {
			sliceStart = f.unplaced.OpenStart
		}
		for sliceDepth := sliceStart; sliceDepth >= 0; sliceDepth-- {
			var fragment *model.Fragment
			var parent *model.Node
			if sliceDepth > 0 {
				parent = contentAt(f.unplaced.Content, sliceDepth-1).FirstChild()
				fragment = parent.Content
			} else {
				fragment = f.unplaced.Content
			}
			first := fragment.FirstChild()
			for frontierDepth := f.depth(); frontierDepth >= 0; frontierDepth-- {
				entry := f.frontier[frontierDepth]
				if pass == 1 {
					if first != nil {
						if entry.match.MatchType(first.Type) != nil {
							return &fittable{sliceDepth: sliceDepth, frontierDepth: frontierDepth, parent: parent}
						}
						if inject, ok := entry.match.FillBefore(model.FragmentFrom(first), false, 0); ok {
							return &fittable{sliceDepth: sliceDepth, frontierDepth: frontierDepth, parent: parent, inject: inject}
						}
					} else if parent != nil && entry.typ.CompatibleContent(parent.Type) {
						return &fittable{sliceDepth: sliceDepth, frontierDepth: frontierDepth, parent: parent}
					}
				} else if first != nil {
					if wrap := entry.match.FindWrapping(first.Type); wrap != nil {
						return &fittable{sliceDepth: sliceDepth, frontierDepth: frontierDepth, parent: parent, wrap: wrap}
					}
				}
				// Stop climbing once the slice's parent itself would fit.
				if parent != nil && entry.match.MatchType(parent.Type) != nil {
					break
				}
			}
		}
	}
	return nil
}

func (f *fitter) openMore() bool {
	content, openStart, openEnd := f.unplaced.Content, f.unplaced.OpenStart, f.unplaced.OpenEnd
	inner := contentAt(content, openStart)
	if inner.ChildCount() == 0 || inner.FirstChild().IsLeaf() {
		return false
	}
	newEnd := openEnd
	if inner.Size()+openStart >= content.Size()-openEnd {
		newEnd = max(openEnd, openStart+1)
	}
	f.unplaced = model.NewSlice(content, openStart+1, newEnd)
	return true
}

func (f *fitter) dropNode() {
	content, openStart, openEnd := f.unplaced.Content, f.unplaced.OpenStart, f.unplaced.OpenEnd
	inner := contentAt(content, openStart)
	if inner.ChildCount() <= 1 && openStart > 0 {
		newEnd := openEnd
		if content.Size()-openStart <= openStart+inner.Size() {
			newEnd = openStart - 1
		}
		f.unplaced = model.NewSlice(dropFromFragment(content, openStart-1, 1), openStart-1, newEnd)
		return
	}
	f.unplaced = model.NewSlice(dropFromFragment(content, openStart, 1), openStart, openEnd)
}

// placeNodes moves content from the unplaced slice at fit.sliceDepth to
// the frontier node at fit.frontierDepth.
func (f *fitter) placeNodes(fit *fittable) {
	for f.depth() > fit.frontierDepth {
		f.closeFrontierNode()
	}
	for _, w := range fit.wrap {
		f.openFrontierNode(w, nil, nil)
	}
	slice := f.unplaced
	fragment := slice.Content
	if fit.parent != nil {
		fragment = fit.parent.Content
	}
	openStart := slice.OpenStart - fit.sliceDepth
	taken := 0
	var add []*model.Node
	entry := f.frontier[fit.frontierDepth]
	match, typ := entry.match, entry.typ
	if fit.inject != nil {
		add = append(add, fit.inject.Nodes()...)
		match = match.MatchFragment(fit.inject, 0, fit.inject.ChildCount())
	}
	// Open nodes at the end of the fragment: 0 means only the parent is
	// open, negative means nothing is.
	openEndCount := (fragment.Size() + fit.sliceDepth) - (slice.Content.Size() - slice.OpenEnd)
	for taken < fragment.ChildCount() {
		next := fragment.Child(taken)
		matches := match.MatchType(next.Type)
		if matches == nil {
			break
		}
		taken++
		if taken > 1 || openStart == 0 || next.Content.Size() > 0 {
			match = matches
			nodeOpenStart, nodeOpenEnd := 0, -1
			if taken == 1 {
				nodeOpenStart = openStart
			}
			if taken == fragment.ChildCount() {
				nodeOpenEnd = openEndCount
			}
			add = append(add, closeNodeStart(next.WithMarks(typ.AllowedMarks(next.Marks)), nodeOpenStart, nodeOpenEnd))
		}
	}
	toEnd := taken == fragment.ChildCount()
	if !toEnd {
		openEndCount = -1
	}
	f.placed = addToFragment(f.placed, fit.frontierDepth, model.FragmentFrom(add...))
	f.frontier[fit.frontierDepth].match = match

	if toEnd && openEndCount < 0 && fit.parent != nil && fit.parent.Type == f.frontier[f.depth()].typ && len(f.frontier) > 1 {
		f.closeFrontierNode()
	}
	cur := fragment
	for i := 0; i < openEndCount; i++ {
		node := cur.LastChild()
		f.frontier = append(f.frontier, &frontierEntry{typ: node.Type, match: node.ContentMatchAt(node.ChildCount())})
		cur = node.Content
	}
	switch {
	case !toEnd:
		f.unplaced = model.NewSlice(dropFromFragment(slice.Content, fit.sliceDepth, taken), slice.OpenStart, slice.OpenEnd)
	case fit.sliceDepth == 0:
		f.unplaced = model.EmptySlice
	default:
		newEnd := fit.sliceDepth - 1
		if openEndCount < 0 {
			newEnd = slice.OpenEnd
		}
		f.unplaced = model.NewSlice(dropFromFragment(slice.Content, fit.sliceDepth-1, 1), fit.sliceDepth-1, newEnd)
	}
}

// mustMoveInline returns the end of the range the inline content after
// $to must be moved over, or -1.
func (f *fitter) mustMoveInline() int {
	if !f.to.Parent().IsTextblock() {
		return -1
	}
	top := f.frontier[f.depth()]
	if !top.typ.IsTextblock() || contentAfterFits(f.to, f.to.Depth, top.typ, top.match, false) == nil {
		return -1
	}
	if f.to.Depth == f.depth() {
		if level := f.findCloseLevel(f.to); level != nil && level.depth == f.depth() {
			return -1
		}
	}
	depth := f.to.Depth
	after := f.to.After(depth)
	for depth > 1 {
		depth--
		if after != f.to.End(depth) {
			break
		}
		after++
	}
	return after
}

type closeLevel struct {
	depth int
	fit   *model.Fragment
	move  *model.ResolvedPos
}

func (f *fitter) findCloseLevel(to *model.ResolvedPos) *closeLevel {
scan:
	for i := min(f.depth(), to.Depth); i >= 0; i-- {
		entry := f.frontier[i]
		dropInner := i < to.Depth && to.End(i+1) == to.Pos+(to.Depth-(i+1))
		fit := contentAfterFits(to, i, entry.typ, entry.match, dropInner)
		if fit == nil {
			continue
		}
		for d := i - 1; d >= 0; d-- {
			outer := f.frontier[d]
			matches := contentAfterFits(to, d, outer.typ, outer.match, true)
			if matches == nil || matches.ChildCount() > 0 {
				continue scan
			}
		}
		move := to
		if dropInner {
			move = to.Doc().MustResolve(to.After(i + 1))
		}
		return &closeLevel{depth: i, fit: fit, move: move}
	}
	return nil
}

func (f *fitter) close(to *model.ResolvedPos) *model.ResolvedPos {
	level := f.findCloseLevel(to)
	if level == nil {
		return nil
	}
	for f.depth() > level.depth {
		f.closeFrontierNode()
	}
	if level.fit.ChildCount() > 0 {
		f.placed = addToFragment(f.placed, level.depth, level.fit)
	}
	to = level.move
	for d := level.depth + 1; d <= to.Depth; d++ {
		node := to.Node(d)
		add, _ := node.Type.ContentMatch().FillBefore(node.Content, true, to.Index(d))
		f.openFrontierNode(node.Type, node.Attrs, add)
	}
	return to
}

func (f *fitter) openFrontierNode(typ *model.NodeType, attrs model.Attrs, content *model.Fragment) {
	top := f.frontier[f.depth()]
	top.match = top.match.MatchType(typ)
	// Wrapper types never have required attributes and frontier nodes
	// reuse valid attributes, so creation cannot fail here.
	node, _ := typ.Create(attrs, content, nil)
	f.placed = addToFragment(f.placed, f.depth(), model.FragmentFrom(node))
	f.frontier = append(f.frontier, &frontierEntry{typ: typ, match: typ.ContentMatch()})
}

func (f *fitter) closeFrontierNode() {
	open := f.frontier[len(f.frontier)-1]
	f.frontier = f.frontier[:len(f.frontier)-1]
	if add, ok := open.match.FillBefore(model.EmptyFragment, true, 0); ok && add.ChildCount() > 0 {
		f.placed = addToFragment(f.placed, len(f.frontier), add)
	}
}

func dropFromFragment(frag *model.Fragment, depth, count int) *model.Fragment {
	if depth == 0 {
		return frag.CutByIndex(count, frag.ChildCount())
	}
	first := frag.FirstChild()
	return frag.ReplaceChild(0, first.Copy(dropFromFragment(first.Content, depth-1, count)))
}

func addToFragment(frag *model.Fragment, depth int, content *model.Fragment) *model.Fragment {
	if depth == 0 {
		return frag.Append(content)
	}
	last := frag.LastChild()
	return frag.ReplaceChild(frag.ChildCount()-1, last.Copy(addToFragment(last.Content, depth-1, content)))
}

func contentAt(frag *model.Fragment, depth int) *model.Fragment {
	for i := 0; i < depth; i++ {
		frag = frag.FirstChild().Content
	}
	return frag
}

func closeNodeStart(node *model.Node, openStart, openEnd int) *model.Node {
	if openStart <= 0 {
		return node
	}
	frag := node.Content
	if openStart > 1 {
		innerEnd := 0
		if frag.ChildCount() == 1 {
			innerEnd = openEnd - 1
		}
		frag = frag.ReplaceChild(0, closeNodeStart(frag.FirstChild(), openStart-1, innerEnd))
	}
	match := node.Type.ContentMatch()
	if before, ok := match.FillBefore(frag, false, 0); ok {
		frag = before.Append(frag)
	}
	if openEnd <= 0 {
		if end := match.MatchFragment(frag, 0, frag.ChildCount()); end != nil {
			if after, ok := end.FillBefore(model.EmptyFragment, true, 0); ok {
				frag = frag.Append(after)
			}
		}
	}
	return node.Copy(frag)
}

func contentAfterFits(to *model.ResolvedPos, depth int, typ *model.NodeType, match *model.ContentMatch, open bool) *model.Fragment {
	node := to.Node(depth)
	index := to.Index(depth)
	if open {
		index = to.IndexAfter(depth)
	}
	if index == node.ChildCount() && !typ.CompatibleContent(node.Type) {
		return nil
	}
	if match == nil {
		return nil
	}
	fit, ok := match.FillBefore(node.Content, true, index)
	if !ok || invalidMarks(typ, node.Content, index) {
		return nil
	}
	return fit
}

func invalidMarks(typ *model.NodeType, frag *model.Fragment, start int) bool {
	for i := start; i < frag.ChildCount(); i++ {
		if !typ.AllowsMarks(frag.Child(i).Marks) {
			return true
		}
	}
	return false
}

// Replace replaces [from, to) with slice, fitting it into the
// surrounding structure. A replacement that cannot be fitted is
// reported as model.ErrInvalidReplace.
func (tr *Transform) Replace(from, to int, slice *model.Slice) error {
	step, err := ReplaceStepFor(tr.Doc, from, to, slice)
	if err != nil {
		return err
	}
	if step == nil {
		return nil
	}
	return tr.Step(step)
}

// ReplaceWith replaces [from, to) with nodes.
func (tr *Transform) ReplaceWith(from, to int, nodes ...*model.Node) error {
	return tr.Replace(from, to, model.NewSlice(model.FragmentFrom(nodes...), 0, 0))
}

// Delete deletes [from, to).
func (tr *Transform) Delete(from, to int) error {
	return tr.Replace(from, to, model.EmptySlice)
}

// Insert inserts nodes at pos.
func (tr *Transform) Insert(pos int, nodes ...*model.Node) error {
	return tr.ReplaceWith(pos, pos, nodes...)
}

// ReplaceRange replaces [from, to) with slice, expanding the range to
// cover whole parent nodes when that gives a better fit and keeping
// defining nodes such as headings and code blocks around pasted content.
func (tr *Transform) ReplaceRange(from, to int, slice *model.Slice) error {
	if slice == nil || slice.Size() == 0 {
		return tr.DeleteRange(from, to)
	}
	rfrom, err := tr.Doc.Resolve(from)
	if err != nil {
		return err
	}
	rto, err := tr.Doc.Resolve(to)
	if err != nil {
		return err
	}
	if fitsTrivially(rfrom, rto, slice) {
		return tr.Step(NewReplaceStep(from, to, slice, false))
	}

	targetDepths := coveredDepths(rfrom, rto)
	if n := len(targetDepths); n > 0 && targetDepths[n-1] == 0 {
		targetDepths = targetDepths[:n-1]
	}
	// Negative depths replace from $from.before(-d) to the end of the
	// range without expanding over the whole node.
	preferredTarget := -(rfrom.Depth + 1)
	targetDepths = append([]int{preferredTarget}, targetDepths...)
	for d, pos := rfrom.Depth, rfrom.Pos-1; d > 0; d, pos = d-1, pos-1 {
		spec := rfrom.Node(d).Type.Spec
		if spec.Defining || spec.Isolating {
			break
		}
		if indexOf(targetDepths, d) > -1 {
			preferredTarget = d
		} else if rfrom.Before(d) == pos {
			targetDepths = append(targetDepths[:1], append([]int{-d}, targetDepths[1:]...)...)
		}
	}
	preferredTargetIndex := indexOf(targetDepths, preferredTarget)

	var leftNodes []*model.Node
	preferredDepth := slice.OpenStart
	content := slice.Content
	for i := 0; ; i++ {
		node := content.FirstChild()
		leftNodes = append(leftNodes, node)
		if i == slice.OpenStart || node == nil {
			break
		}
		content = node.Content
	}
	// Back up preferredDepth to cover defining textblocks directly above
	// it, possibly skipping a non-defining textblock.
	for d := preferredDepth - 1; d >= 0; d-- {
		leftNode := leftNodes[d]
		def := leftNode.Type.Spec.Defining
		if def && !leftNode.SameMarkup(rfrom.Node(abs(preferredTarget)-1)) {
			preferredDepth = d
		} else if def || !leftNode.Type.IsTextblock() {
			break
		}
	}

	for j := slice.OpenStart; j >= 0; j-- {
		openDepth := (j + preferredDepth + 1) % (slice.OpenStart + 1)
		if openDepth >= len(leftNodes) || leftNodes[openDepth] == nil {
			continue
		}
		insert := leftNodes[openDepth]
		for i := range targetDepths {
			targetDepth := targetDepths[(i+preferredTargetIndex)%len(targetDepths)]
			expand := true
			if targetDepth < 0 {
				expand = false
				targetDepth = -targetDepth
			}
			parent := rfrom.Node(targetDepth - 1)
			index := rfrom.Index(targetDepth - 1)
			if parent.CanReplaceWith(index, index, insert.Type, insert.Marks) {
				end := to
				if expand {
					end = rto.After(targetDepth)
				}
				return tr.Replace(rfrom.Before(targetDepth), end,
					model.NewSlice(closeFragment(slice.Content, 0, slice.OpenStart, openDepth, nil), openDepth, slice.OpenEnd))
			}
		}
	}

	startSteps := len(tr.steps)
	var lastErr error
	for i := len(targetDepths) - 1; i >= 0; i-- {
		lastErr = tr.Replace(from, to, slice)
		if len(tr.steps) > startSteps {
			return nil
		}
		depth := targetDepths[i]
		if depth < 0 {
			continue
		}
		from, to = rfrom.Before(depth), rto.After(depth)
	}
	if lastErr == nil {
		lastErr = failf("cannot fit slice into %d-%d", from, to)
	}
	return lastErr
}

func closeFragment(frag *model.Fragment, depth, oldOpen, newOpen int, parent *model.Node) *model.Fragment {
	if depth < oldOpen {
		first := frag.FirstChild()
		frag = frag.ReplaceChild(0, first.Copy(closeFragment(first.Content, depth+1, oldOpen, newOpen, first)))
	}
	if depth > newOpen && parent != nil {
		match := parent.ContentMatchAt(0)
		start := frag
		if before, ok := match.FillBefore(frag, false, 0); ok {
			start = before.Append(frag)
		}
		if end := match.MatchFragment(start, 0, start.ChildCount()); end != nil {
			if after, ok := end.FillBefore(model.EmptyFragment, true, 0); ok {
				start = start.Append(after)
			}
		}
		frag = start
	}
	return frag
}

// ReplaceRangeWith replaces [from, to) with node. A block node inserted
// at a point inside a non-empty textblock is moved to the nearest
// position where it fits, when the point is at the textblock's edge.
func (tr *Transform) ReplaceRangeWith(from, to int, node *model.Node) error {
	if !node.IsInline() && from == to {
		rpos, err := tr.Doc.Resolve(from)
		if err != nil {
			return err
		}
		if rpos.Parent().Content.Size() > 0 {
			if point, ok := InsertPoint(tr.Doc, from, node.Type); ok {
				from, to = point, point
			}
		}
	}
	return tr.ReplaceRange(from, to, model.NewSlice(model.FragmentFrom(node), 0, 0))
}

// DeleteRange deletes [from, to), widening the range to whole nodes
// when it covers their entire content.
func (tr *Transform) DeleteRange(from, to int) error {
	rfrom, err := tr.Doc.Resolve(from)
	if err != nil {
		return err
	}
	rto, err := tr.Doc.Resolve(to)
	if err != nil {
		return err
	}
	covered := coveredDepths(rfrom, rto)
	for i, depth := range covered {
		last := i == len(covered)-1
		if (last && depth == 0) || rfrom.Node(depth).Type.ContentMatch().ValidEnd {
			return tr.Delete(rfrom.Start(depth), rto.End(depth))
		}
		if depth > 0 && (last || rfrom.Node(depth-1).CanReplace(rfrom.Index(depth-1), rto.IndexAfter(depth-1), nil, 0, 0)) {
			return tr.Delete(rfrom.Before(depth), rto.After(depth))
		}
	}
	for d := 1; d <= rfrom.Depth && d <= rto.Depth; d++ {
		if from-rfrom.Start(d) == rfrom.Depth-d && to > rfrom.End(d) && rto.End(d)-to != rto.Depth-d &&
			rfrom.Start(d-1) == rto.Start(d-1) && rfrom.Node(d-1).CanReplace(rfrom.Index(d-1), rto.Index(d-1), nil, 0, 0) {
			return tr.Delete(rfrom.Before(d), to)
		}
	}
	return tr.Delete(from, to)
}

func coveredDepths(from, to *model.ResolvedPos) []int {
	var result []int
	for d := min(from.Depth, to.Depth); d >= 0; d-- {
		start := from.Start(d)
		if start < from.Pos-(from.Depth-d) || to.End(d) > to.Pos+(to.Depth-d) ||
			from.Node(d).Type.Spec.Isolating || to.Node(d).Type.Spec.Isolating {
			break
		}
		if start == to.Start(d) ||
			(d == from.Depth && d == to.Depth && from.Parent().InlineContent() && to.Parent().InlineContent() &&
				d > 0 && to.Start(d-1) == start-1) {
			result = append(result, d)
		}
	}
	return result
}

// InsertPoint finds a position at or around pos where a node of type t
// can be inserted. It looks past the edges of the enclosing nodes when
// pos sits at their start or end.
func InsertPoint(doc *model.Node, pos int, t *model.NodeType) (int, bool) {
	rpos, err := doc.Resolve(pos)
	if err != nil {
		return 0, false
	}
	if rpos.Parent().CanReplaceWith(rpos.Index(rpos.Depth), rpos.Index(rpos.Depth), t, nil) {
		return pos, true
	}
	if rpos.ParentOffset == 0 {
		for d := rpos.Depth - 1; d >= 0; d-- {
			index := rpos.Index(d)
			if rpos.Node(d).CanReplaceWith(index, index, t, nil) {
				return rpos.Before(d + 1), true
			}
			if index > 0 {
				return 0, false
			}
		}
	}
	if rpos.ParentOffset == rpos.Parent().Content.Size() {
		for d := rpos.Depth - 1; d >= 0; d-- {
			index := rpos.IndexAfter(d)
			if rpos.Node(d).CanReplaceWith(index, index, t, nil) {
				return rpos.After(d + 1), true
			}
			if index < rpos.Node(d).ChildCount() {
				return 0, false
			}
		}
	}
	return 0, false
}

func indexOf(list []int, v int) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
