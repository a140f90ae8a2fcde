package model

import "fmt"

// ResolvedPos is a position annotated with the path of ancestors that
// contain it. Depth-taking methods accept negative values, counted back
// from the position's own depth.
type ResolvedPos struct {
	Pos          int
	Depth        int
	ParentOffset int

	path []pathEntry
}

type pathEntry struct {
	node   *Node
	index  int
	offset int // absolute position of the start of the child at index
}

// Resolve annotates pos with its ancestor path.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > n.Content.Size() {
		return nil, rangeErrorf("position %d outside of document of size %d", pos, n.Content.Size())
	}
	var path []pathEntry
	start := 0
	parentOffset := pos
	node := n
	for {
		index, offset, err := node.Content.FindIndex(parentOffset, 0)
		if err != nil {
			return nil, err
		}
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	return &ResolvedPos{Pos: pos, Depth: len(path) - 1, ParentOffset: parentOffset, path: path}, nil
}

// MustResolve is Resolve for positions known to be valid. It panics
// otherwise.
func (n *Node) MustResolve(pos int) *ResolvedPos {
	r, err := n.Resolve(pos)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ResolvedPos) depth(d int) int {
	if d < 0 {
		return r.Depth + d
	}
	return d
}

// Node returns the ancestor at depth d. Node(0) is the document.
func (r *ResolvedPos) Node(d int) *Node { return r.path[r.depth(d)].node }

// Parent returns the innermost ancestor.
func (r *ResolvedPos) Parent() *Node { return r.Node(r.Depth) }

// Doc returns the root node.
func (r *ResolvedPos) Doc() *Node { return r.Node(0) }

// Index returns the child index in the ancestor at depth d.
func (r *ResolvedPos) Index(d int) int { return r.path[r.depth(d)].index }

// IndexAfter returns the index pointing after this position in the
// ancestor at depth d.
func (r *ResolvedPos) IndexAfter(d int) int {
	d = r.depth(d)
	if d == r.Depth && r.TextOffset() == 0 {
		return r.Index(d)
	}
	return r.Index(d) + 1
}

// Start returns the position at the start of the ancestor at depth d.
func (r *ResolvedPos) Start(d int) int {
	d = r.depth(d)
	if d == 0 {
		return 0
	}
	return r.path[d-1].offset + 1
}

// End returns the position at the end of the ancestor at depth d.
func (r *ResolvedPos) End(d int) int {
	d = r.depth(d)
	return r.Start(d) + r.Node(d).Content.Size()
}

// Before returns the position directly before the ancestor at depth d.
// It panics for depth 0, which has no position before it.
func (r *ResolvedPos) Before(d int) int {
	d = r.depth(d)
	if d == 0 {
		panic("model: there is no position before the top-level node")
	}
	if d == r.Depth+1 {
		return r.Pos
	}
	return r.path[d-1].offset
}

// After returns the position directly after the ancestor at depth d.
// It panics for depth 0.
func (r *ResolvedPos) After(d int) int {
	d = r.depth(d)
	if d == 0 {
		panic("model: there is no position after the top-level node")
	}
	if d == r.Depth+1 {
		return r.Pos
	}
	return r.path[d-1].offset + r.path[d].node.NodeSize()
}

// TextOffset returns the offset into the text node the position points
// into, or 0 when it sits between nodes.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[len(r.path)-1].offset
}

// NodeAfter returns the node directly after the position, or nil. Inside
// a text node the remainder of the text is returned.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if index == parent.ChildCount() {
		return nil
	}
	dOff := r.TextOffset()
	child := parent.Child(index)
	if dOff > 0 {
		return child.Cut(dOff, child.textLen)
	}
	return child
}

// NodeBefore returns the node directly before the position, or nil.
func (r *ResolvedPos) NodeBefore() *Node {
	index := r.Index(r.Depth)
	if dOff := r.TextOffset(); dOff > 0 {
		return r.Parent().Child(index).Cut(0, dOff)
	}
	if index == 0 {
		return nil
	}
	return r.Parent().Child(index - 1)
}

// PosAtIndex returns the position of child index in the ancestor at depth d.
func (r *ResolvedPos) PosAtIndex(index, d int) int {
	d = r.depth(d)
	node := r.Node(d)
	pos := r.Start(d)
	for i := 0; i < index; i++ {
		pos += node.Child(i).NodeSize()
	}
	return pos
}

// Marks returns the marks text typed at this position would get.
// Non-inclusive marks are only kept when the following node has them too.
func (r *ResolvedPos) Marks() MarkSet {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if parent.Content.Size() == 0 {
		return NoMarks
	}
	if r.TextOffset() > 0 {
		return parent.Child(index).Marks
	}
	main, other := parent.MaybeChild(index-1), parent.MaybeChild(index)
	if main == nil {
		main, other = other, main
	}
	marks := main.Marks
	for i := 0; i < len(marks); i++ {
		if !marks[i].Type.Inclusive() && (other == nil || !marks[i].IsInSet(other.Marks)) {
			marks = marks[i].RemoveFromSet(marks)
			i--
		}
	}
	return marks
}

// MarksAcross returns the marks that should be kept when deleting from
// here to end, or nil when the position is not before inline content.
func (r *ResolvedPos) MarksAcross(end *ResolvedPos) MarkSet {
	after := r.Parent().MaybeChild(r.Index(r.Depth))
	if after == nil || !after.IsInline() {
		return nil
	}
	marks := after.Marks
	next := end.Parent().MaybeChild(end.Index(end.Depth))
	for i := 0; i < len(marks); i++ {
		if !marks[i].Type.Inclusive() && (next == nil || !marks[i].IsInSet(next.Marks)) {
			marks = marks[i].RemoveFromSet(marks)
			i--
		}
	}
	return marks
}

// SharedDepth returns the depth of the deepest ancestor containing both
// this position and pos.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for d := r.Depth; d > 0; d-- {
		if r.Start(d) <= pos && r.End(d) >= pos {
			return d
		}
	}
	return 0
}

// BlockRange returns the range of block nodes around this position and
// other, optionally requiring pred to hold for the parent. It returns
// nil when no such range exists.
func (r *ResolvedPos) BlockRange(other *ResolvedPos, pred func(*Node) bool) *NodeRange {
	if other == nil {
		other = r
	}
	if other.Pos < r.Pos {
		return other.BlockRange(r, pred)
	}
	d := r.Depth
	if r.Parent().InlineContent() || r.Pos == other.Pos {
		d--
	}
	for ; d >= 0; d-- {
		if other.Pos <= r.End(d) && (pred == nil || pred(r.Node(d))) {
			return &NodeRange{From: r, To: other, Depth: d}
		}
	}
	return nil
}

// SameParent reports whether both positions share a parent node.
func (r *ResolvedPos) SameParent(other *ResolvedPos) bool {
	return r.Pos-r.ParentOffset == other.Pos-other.ParentOffset
}

// Max returns the greater of the two positions.
func (r *ResolvedPos) Max(other *ResolvedPos) *ResolvedPos {
	if other.Pos > r.Pos {
		return other
	}
	return r
}

// Min returns the smaller of the two positions.
func (r *ResolvedPos) Min(other *ResolvedPos) *ResolvedPos {
	if other.Pos < r.Pos {
		return other
	}
	return r
}

func (r *ResolvedPos) String() string {
	s := ""
	for i := 1; i <= r.Depth; i++ {
		if s != "" {
			s += "/"
		}
		s += fmt.Sprintf("%s_%d", r.Node(i).Type.Name, r.Index(i-1))
	}
	return fmt.Sprintf("%s:%d", s, r.ParentOffset)
}

// NodeRange is a flat range of sibling block nodes.
type NodeRange struct {
	From, To *ResolvedPos
	Depth    int
}

// Start returns the position before the first node in the range.
func (nr *NodeRange) Start() int { return nr.From.Before(nr.Depth + 1) }

// End returns the position after the last node in the range.
func (nr *NodeRange) End() int { return nr.To.After(nr.Depth + 1) }

// Parent returns the node containing the range.
func (nr *NodeRange) Parent() *Node { return nr.From.Node(nr.Depth) }

// StartIndex returns the index of the first node in the range.
func (nr *NodeRange) StartIndex() int { return nr.From.Index(nr.Depth) }

// EndIndex returns the index after the last node in the range.
func (nr *NodeRange) EndIndex() int { return nr.To.IndexAfter(nr.Depth) }
