package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Node is an immutable document tree node. Non-leaf nodes carry Content;
// text nodes carry text; inline nodes may carry Marks. Callers must not
// modify the exported fields.
type Node struct {
	Type    *NodeType
	Attrs   Attrs
	Content *Fragment
	Marks   MarkSet

	text    string
	textLen int
}

func newNode(t *NodeType, attrs Attrs, content *Fragment, marks MarkSet) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: t, Attrs: attrs, Content: content, Marks: marks}
}

func newTextNode(t *NodeType, text string, marks MarkSet) *Node {
	return &Node{
		Type:    t,
		Attrs:   Attrs{},
		Content: EmptyFragment,
		Marks:   marks,
		text:    text,
		textLen: utf8.RuneCountInString(text),
	}
}

// Text returns the text of a text node.
func (n *Node) Text() string { return n.text }

// NodeSize returns the number of positions the node occupies.
func (n *Node) NodeSize() int {
	switch {
	case n.Type.isText:
		return n.textLen
	case n.Type.IsLeaf():
		return 1
	default:
		return n.Content.size + 2
	}
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return n.Content.ChildCount() }

// Child returns the i-th child.
func (n *Node) Child(i int) *Node { return n.Content.Child(i) }

// MaybeChild returns the i-th child, or nil.
func (n *Node) MaybeChild(i int) *Node { return n.Content.MaybeChild(i) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.Content.FirstChild() }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.Content.LastChild() }

// ForEach calls fn for every child.
func (n *Node) ForEach(fn func(child *Node, offset, index int)) { n.Content.ForEach(fn) }

// NodesBetween calls fn for each descendant overlapping [from, to),
// with positions relative to the start of n's content.
func (n *Node) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool) {
	n.Content.NodesBetween(from, to, fn, 0, n)
}

// Descendants calls fn for every descendant.
func (n *Node) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) {
	n.NodesBetween(0, n.Content.size, fn)
}

// TextContent concatenates all text in the node.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.text
	}
	if n.IsLeaf() {
		return n.Type.Spec.LeafText
	}
	return n.TextBetween(0, n.Content.size, "", "")
}

// TextBetween extracts text in [from, to) of n's content.
func (n *Node) TextBetween(from, to int, blockSep, leafText string) string {
	return n.Content.TextBetween(from, to, blockSep, leafText)
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.Type.isText }

// IsBlock reports whether n is a block node.
func (n *Node) IsBlock() bool { return n.Type.isBlock }

// IsInline reports whether n is an inline node.
func (n *Node) IsInline() bool { return !n.Type.isBlock }

// IsTextblock reports whether n is a block holding inline content.
func (n *Node) IsTextblock() bool { return n.Type.IsTextblock() }

// InlineContent reports whether n holds inline content.
func (n *Node) InlineContent() bool { return n.Type.inlineContent }

// IsLeaf reports whether n cannot have content.
func (n *Node) IsLeaf() bool { return n.Type.IsLeaf() }

// IsAtom reports whether n is a leaf or atomic.
func (n *Node) IsAtom() bool { return n.Type.IsAtom() }

// Eq reports structural equality.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if !n.SameMarkup(other) {
		return false
	}
	if n.IsText() {
		return n.text == other.text
	}
	return n.Content.Eq(other.Content)
}

// SameMarkup reports whether n has the same type, attributes and marks
// as other.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.Type, other.Attrs, other.Marks)
}

// HasMarkup reports whether n has the given type, attributes and marks.
func (n *Node) HasMarkup(t *NodeType, attrs Attrs, marks MarkSet) bool {
	if n.Type != t {
		return false
	}
	if attrs == nil {
		attrs = t.defaultAttrs
	}
	if !n.Attrs.Eq(attrs) && !(len(n.Attrs) == 0 && len(attrs) == 0) {
		return false
	}
	if marks == nil {
		marks = NoMarks
	}
	return n.Marks.Eq(marks)
}

// Copy returns a node with the same markup and the given content.
func (n *Node) Copy(content *Fragment) *Node {
	if content == n.Content {
		return n
	}
	if n.IsText() {
		return n
	}
	return newNode(n.Type, n.Attrs, content, n.Marks)
}

// WithMarks returns a node with the same content and the given marks.
func (n *Node) WithMarks(marks MarkSet) *Node {
	if marks.Eq(n.Marks) {
		return n
	}
	if n.IsText() {
		return newTextNode(n.Type, n.text, marks)
	}
	return newNode(n.Type, n.Attrs, n.Content, marks)
}

func (n *Node) withText(text string) *Node {
	if text == n.text {
		return n
	}
	return newTextNode(n.Type, text, n.Marks)
}

// WithText returns a text node with the same marks and different text.
func (n *Node) WithText(text string) *Node { return n.withText(text) }

func (n *Node) cutText(from, to int) *Node {
	if from == 0 && to == n.textLen {
		return n
	}
	return n.withText(sliceRunes(n.text, from, to))
}

// Cut returns the node with only the content between from and to.
func (n *Node) Cut(from, to int) *Node {
	if n.IsText() {
		return n.cutText(from, to)
	}
	if from == 0 && to == n.Content.size {
		return n
	}
	return n.Copy(n.Content.Cut(from, to))
}

// Slice cuts out the part of the document between from and to.
func (n *Node) Slice(from, to int, includeParents bool) (*Slice, error) {
	if from == to {
		return EmptySlice, nil
	}
	rfrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rto, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	depth := 0
	if !includeParents {
		depth = rfrom.SharedDepth(to)
	}
	start := rfrom.Start(depth)
	node := rfrom.Node(depth)
	content := node.Content.Cut(rfrom.Pos-start, rto.Pos-start)
	return NewSlice(content, rfrom.Depth-depth, rto.Depth-depth), nil
}

// Replace replaces [from, to) with slice. The slice must fit: its open
// sides have to join the surrounding content.
func (n *Node) Replace(from, to int, slice *Slice) (*Node, error) {
	rfrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rto, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	return replace(rfrom, rto, slice)
}

// NodeAt returns the node starting at pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.Content.FindIndex(pos, 0)
		if err != nil {
			return nil
		}
		child := node.MaybeChild(index)
		if child == nil {
			return nil
		}
		if offset == pos || child.IsText() {
			return child
		}
		pos -= offset + 1
		node = child
	}
}

// ChildAfter returns the direct child after pos with its index and offset.
func (n *Node) ChildAfter(pos int) (*Node, int, int) {
	index, offset, err := n.Content.FindIndex(pos, 0)
	if err != nil {
		return nil, 0, 0
	}
	return n.MaybeChild(index), index, offset
}

// ChildBefore returns the direct child before pos with its index and offset.
func (n *Node) ChildBefore(pos int) (*Node, int, int) {
	if pos == 0 {
		return nil, 0, 0
	}
	index, offset, err := n.Content.FindIndex(pos, 0)
	if err != nil {
		return nil, 0, 0
	}
	if offset < pos {
		child := n.Content.Child(index)
		return child, index, offset
	}
	child := n.Content.Child(index - 1)
	return child, index - 1, offset - child.NodeSize()
}

// RangeHasMark reports whether any inline node in [from, to) carries a
// mark of type t.
func (n *Node) RangeHasMark(from, to int, t *MarkType) bool {
	found := false
	if to > from {
		n.NodesBetween(from, to, func(node *Node, _ int, _ *Node, _ int) bool {
			if t.IsInSet(node.Marks) != nil {
				found = true
			}
			return !found
		})
	}
	return found
}

// ContentMatchAt returns the automaton state after the first index
// children, or nil when the content is invalid up to there.
func (n *Node) ContentMatchAt(index int) *ContentMatch {
	return n.Type.contentMatch.MatchFragment(n.Content, 0, index)
}

// CanReplace reports whether replacing children [from, to) with
// replacement[start:end] leaves valid content.
func (n *Node) CanReplace(from, to int, replacement *Fragment, start, end int) bool {
	if replacement == nil {
		replacement = EmptyFragment
	}
	match := n.ContentMatchAt(from)
	if match == nil {
		return false
	}
	one := match.MatchFragment(replacement, start, end)
	if one == nil {
		return false
	}
	two := one.MatchFragment(n.Content, to, n.Content.ChildCount())
	if two == nil || !two.ValidEnd {
		return false
	}
	for i := start; i < end; i++ {
		if !n.Type.AllowsMarks(replacement.Child(i).Marks) {
			return false
		}
	}
	return true
}

// CanReplaceWith reports whether children [from, to) can be replaced by a
// node of type t with marks.
func (n *Node) CanReplaceWith(from, to int, t *NodeType, marks MarkSet) bool {
	if marks != nil && !n.Type.AllowsMarks(marks) {
		return false
	}
	match := n.ContentMatchAt(from)
	if match == nil {
		return false
	}
	start := match.MatchType(t)
	if start == nil {
		return false
	}
	end := start.MatchFragment(n.Content, to, n.Content.ChildCount())
	return end != nil && end.ValidEnd
}

// CanAppend reports whether other's content can be appended to n's.
func (n *Node) CanAppend(other *Node) bool {
	if other.Content.Size() > 0 {
		return n.CanReplace(n.ChildCount(), n.ChildCount(), other.Content, 0, other.ChildCount())
	}
	return n.Type.CompatibleContent(other.Type)
}

// Check validates the subtree against the schema.
func (n *Node) Check() error {
	if !n.IsText() {
		if err := n.Type.CheckContent(n.Content); err != nil {
			return err
		}
	}
	if _, err := n.Type.attrs.compute(n.Type.Name, n.Attrs); err != nil && !n.IsText() {
		return err
	}
	var copy MarkSet
	for _, m := range n.Marks {
		if _, err := m.Type.attrs.compute(m.Type.Name, m.Attrs); err != nil {
			return err
		}
		copy = m.AddToSet(copy)
	}
	if !copy.Eq(n.Marks) && !(len(copy) == 0 && len(n.Marks) == 0) {
		return violationf("invalid collection of marks for node %s: %s", n.Type.Name, n.Marks)
	}
	for _, child := range n.Content.content {
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

// String renders the node compactly for debugging and test messages.
func (n *Node) String() string {
	var base string
	if n.IsText() {
		base = strconv.Quote(n.text)
	} else {
		base = n.Type.Name
		if len(n.Attrs) > 0 && !n.Attrs.Eq(n.Type.defaultAttrs) {
			parts := make([]string, 0, len(n.Attrs))
			for _, k := range n.Attrs.Keys() {
				parts = append(parts, k+"="+formatAttr(n.Attrs[k]))
			}
			base += "{" + strings.Join(parts, " ") + "}"
		}
		if n.Content.Size() > 0 {
			base += "(" + strings.TrimSuffix(strings.TrimPrefix(n.Content.String(), "<"), ">") + ")"
		}
	}
	for i := len(n.Marks) - 1; i >= 0; i-- {
		base = n.Marks[i].Type.Name + "(" + base + ")"
	}
	return base
}

func formatAttr(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprint(x)
	}
}
