package model

import (
	"fmt"
	"strings"
)

// Fragment is an immutable ordered list of child nodes. Adjacent text
// nodes with equal marks are always merged.
type Fragment struct {
	content []*Node
	size    int
}

// EmptyFragment has no children.
var EmptyFragment = &Fragment{}

// FragmentFrom builds a fragment. Nil nodes are skipped and adjacent
// text nodes with the same marks are joined.
func FragmentFrom(nodes ...*Node) *Fragment {
	var content []*Node
	size := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		size += n.NodeSize()
		if k := len(content); k > 0 && n.IsText() && content[k-1].IsText() && content[k-1].SameMarkup(n) {
			content[k-1] = content[k-1].withText(content[k-1].text + n.text)
			continue
		}
		content = append(content, n)
	}
	if len(content) == 0 {
		return EmptyFragment
	}
	return &Fragment{content: content, size: size}
}

func fragmentOf(content []*Node, size int) *Fragment {
	if len(content) == 0 {
		return EmptyFragment
	}
	return &Fragment{content: content, size: size}
}

// Size returns the total token size of the children.
func (f *Fragment) Size() int { return f.size }

// ChildCount returns the number of children.
func (f *Fragment) ChildCount() int { return len(f.content) }

// Child returns the i-th child. It panics when i is out of range.
func (f *Fragment) Child(i int) *Node {
	if i < 0 || i >= len(f.content) {
		panic(fmt.Sprintf("model: child index %d out of range for fragment with %d children", i, len(f.content)))
	}
	return f.content[i]
}

// MaybeChild returns the i-th child, or nil.
func (f *Fragment) MaybeChild(i int) *Node {
	if i < 0 || i >= len(f.content) {
		return nil
	}
	return f.content[i]
}

// FirstChild returns the first child, or nil.
func (f *Fragment) FirstChild() *Node { return f.MaybeChild(0) }

// LastChild returns the last child, or nil.
func (f *Fragment) LastChild() *Node { return f.MaybeChild(len(f.content) - 1) }

// Nodes returns a copy of the children.
func (f *Fragment) Nodes() []*Node {
	return append([]*Node(nil), f.content...)
}

// ForEach calls fn for every child with its offset and index.
func (f *Fragment) ForEach(fn func(child *Node, offset, index int)) {
	pos := 0
	for i, child := range f.content {
		fn(child, pos, i)
		pos += child.NodeSize()
	}
}

// NodesBetween calls fn for each descendant overlapping [from, to). When
// fn returns false the node's children are skipped. Positions passed to
// fn are offset by nodeStart.
func (f *Fragment) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool, nodeStart int, parent *Node) {
	pos := 0
	for i := 0; i < len(f.content) && pos < to; i++ {
		child := f.content[i]
		end := pos + child.NodeSize()
		if end > from && fn(child, nodeStart+pos, parent, i) && child.Content.Size() > 0 {
			start := pos + 1
			child.Content.NodesBetween(max(0, from-start), min(child.Content.Size(), to-start), fn, nodeStart+start, child)
		}
		pos = end
	}
}

// Descendants calls fn for every descendant.
func (f *Fragment) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) {
	f.NodesBetween(0, f.size, fn, 0, nil)
}

// TextBetween extracts the text in [from, to). blockSep is inserted
// between block-level texts. Non-text leaves contribute leafText, or
// their type's LeafText when leafText is empty.
func (f *Fragment) TextBetween(from, to int, blockSep, leafText string) string {
	var b strings.Builder
	first := true
	f.NodesBetween(from, to, func(node *Node, pos int, _ *Node, _ int) bool {
		var nodeText string
		switch {
		case node.IsText():
			nodeText = sliceRunes(node.text, max(from, pos)-pos, to-pos)
		case !node.IsLeaf():
			nodeText = ""
		case leafText != "":
			nodeText = leafText
		default:
			nodeText = node.Type.Spec.LeafText
		}
		if ((node.IsBlock() && node.IsLeaf() && nodeText != "") || node.IsTextblock()) && blockSep != "" {
			if first {
				first = false
			} else {
				b.WriteString(blockSep)
			}
		}
		b.WriteString(nodeText)
		return true
	}, 0, nil)
	return b.String()
}

// Append concatenates two fragments, joining text at the seam.
func (f *Fragment) Append(other *Fragment) *Fragment {
	if other == nil || other.size == 0 {
		return f
	}
	if f.size == 0 {
		return other
	}
	last, first := f.LastChild(), other.FirstChild()
	content := append([]*Node(nil), f.content...)
	i := 0
	if last.IsText() && last.SameMarkup(first) {
		content[len(content)-1] = last.withText(last.text + first.text)
		i = 1
	}
	content = append(content, other.content[i:]...)
	return &Fragment{content: content, size: f.size + other.size}
}

// Cut returns the part of the fragment between from and to.
func (f *Fragment) Cut(from, to int) *Fragment {
	if from == 0 && to == f.size {
		return f
	}
	var result []*Node
	size := 0
	if to > from {
		pos := 0
		for i := 0; i < len(f.content) && pos < to; i++ {
			child := f.content[i]
			end := pos + child.NodeSize()
			if end > from {
				if pos < from || end > to {
					if child.IsText() {
						child = child.cutText(max(0, from-pos), min(child.textLen, to-pos))
					} else {
						child = child.Cut(max(0, from-pos-1), min(child.Content.Size(), to-pos-1))
					}
				}
				result = append(result, child)
				size += child.NodeSize()
			}
			pos = end
		}
	}
	return fragmentOf(result, size)
}

// CutByIndex returns the children in [from, to).
func (f *Fragment) CutByIndex(from, to int) *Fragment {
	if from == to {
		return EmptyFragment
	}
	if from == 0 && to == len(f.content) {
		return f
	}
	content := append([]*Node(nil), f.content[from:to]...)
	size := 0
	for _, n := range content {
		size += n.NodeSize()
	}
	return fragmentOf(content, size)
}

// ReplaceChild returns a fragment with the child at index replaced.
func (f *Fragment) ReplaceChild(index int, node *Node) *Fragment {
	current := f.content[index]
	if current == node {
		return f
	}
	content := append([]*Node(nil), f.content...)
	content[index] = node
	return &Fragment{content: content, size: f.size + node.NodeSize() - current.NodeSize()}
}

// AddToStart prepends node.
func (f *Fragment) AddToStart(node *Node) *Fragment {
	content := append([]*Node{node}, f.content...)
	return &Fragment{content: content, size: f.size + node.NodeSize()}
}

// AddToEnd appends node.
func (f *Fragment) AddToEnd(node *Node) *Fragment {
	content := append(append([]*Node(nil), f.content...), node)
	return &Fragment{content: content, size: f.size + node.NodeSize()}
}

// Eq reports structural equality.
func (f *Fragment) Eq(other *Fragment) bool {
	if len(f.content) != len(other.content) {
		return false
	}
	for i, n := range f.content {
		if !n.Eq(other.content[i]) {
			return false
		}
	}
	return true
}

// FindIndex returns the index of the child at pos and its start offset.
// A position on a child boundary resolves to the following child unless
// round is positive, in which case the index after the child is returned.
func (f *Fragment) FindIndex(pos, round int) (index, offset int, err error) {
	if pos == 0 {
		return 0, 0, nil
	}
	if pos == f.size {
		return len(f.content), pos, nil
	}
	if pos > f.size || pos < 0 {
		return 0, 0, rangeErrorf("position %d outside of fragment of size %d", pos, f.size)
	}
	cur := 0
	for i, child := range f.content {
		end := cur + child.NodeSize()
		if end >= pos {
			if end == pos || round > 0 {
				return i + 1, end, nil
			}
			return i, cur, nil
		}
		cur = end
	}
	return len(f.content), f.size, nil
}

// FindDiffStart returns the first position at which the fragments
// differ, or -1 when they are equal.
func (f *Fragment) FindDiffStart(other *Fragment, pos int) int {
	for i := 0; ; i++ {
		if i == len(f.content) || i == len(other.content) {
			if len(f.content) == len(other.content) {
				return -1
			}
			return pos
		}
		a, b := f.content[i], other.content[i]
		if a == b {
			pos += a.NodeSize()
			continue
		}
		if !a.SameMarkup(b) {
			return pos
		}
		if a.IsText() && a.text != b.text {
			ar, br := []rune(a.text), []rune(b.text)
			j := 0
			for j < len(ar) && j < len(br) && ar[j] == br[j] {
				j++
			}
			return pos + j
		}
		if a.Content.Size() > 0 || b.Content.Size() > 0 {
			if inner := a.Content.FindDiffStart(b.Content, pos+1); inner >= 0 {
				return inner
			}
		}
		pos += a.NodeSize()
	}
}

func (f *Fragment) String() string {
	parts := make([]string, len(f.content))
	for i, n := range f.content {
		parts[i] = n.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func sliceRunes(s string, from, to int) string {
	r := []rune(s)
	if from < 0 {
		from = 0
	}
	if to > len(r) {
		to = len(r)
	}
	if from >= to {
		return ""
	}
	return string(r[from:to])
}
