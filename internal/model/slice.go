package model

import "fmt"

// Slice is a piece of a document: a fragment plus the depth to which
// its start and end are open. Open sides join the content they are
// inserted next to.
type Slice struct {
	Content   *Fragment
	OpenStart int
	OpenEnd   int
}

// EmptySlice is the empty closed slice.
var EmptySlice = &Slice{Content: EmptyFragment}

// NewSlice creates a slice.
func NewSlice(content *Fragment, openStart, openEnd int) *Slice {
	if content == nil {
		content = EmptyFragment
	}
	return &Slice{Content: content, OpenStart: openStart, OpenEnd: openEnd}
}

// MaxOpen creates a slice from frag opened as deep as possible. When
// openIsolating is false, isolating nodes are not opened.
func MaxOpen(frag *Fragment, openIsolating bool) *Slice {
	openStart, openEnd := 0, 0
	for n := frag.FirstChild(); n != nil && !n.IsLeaf() && (openIsolating || !n.Type.Spec.Isolating); n = n.FirstChild() {
		openStart++
	}
	for n := frag.LastChild(); n != nil && !n.IsLeaf() && (openIsolating || !n.Type.Spec.Isolating); n = n.LastChild() {
		openEnd++
	}
	return NewSlice(frag, openStart, openEnd)
}

// Size returns the number of positions the slice inserts.
func (s *Slice) Size() int {
	return s.Content.Size() - s.OpenStart - s.OpenEnd
}

// Eq reports whether both slices are equal.
func (s *Slice) Eq(other *Slice) bool {
	return s.Content.Eq(other.Content) && s.OpenStart == other.OpenStart && s.OpenEnd == other.OpenEnd
}

// InsertAt inserts frag at pos (relative to the slice's open start). It
// returns nil when the content would be invalid at that point.
func (s *Slice) InsertAt(pos int, frag *Fragment) *Slice {
	content := insertInto(s.Content, pos+s.OpenStart, frag, nil)
	if content == nil {
		return nil
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd)
}

// RemoveBetween removes the flat range [from, to) of the slice.
func (s *Slice) RemoveBetween(from, to int) (*Slice, error) {
	content, err := removeRange(s.Content, from+s.OpenStart, to+s.OpenStart)
	if err != nil {
		return nil, err
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd), nil
}

func (s *Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Content, s.OpenStart, s.OpenEnd)
}

func removeRange(content *Fragment, from, to int) (*Fragment, error) {
	index, offset, err := content.FindIndex(from, 0)
	if err != nil {
		return nil, err
	}
	child := content.MaybeChild(index)
	indexTo, offsetTo, err := content.FindIndex(to, 0)
	if err != nil {
		return nil, err
	}
	if offset == from || (child != nil && child.IsText()) {
		if offsetTo != to && !content.Child(indexTo).IsText() {
			return nil, replaceErrorf("removing non-flat range")
		}
		return content.Cut(0, from).Append(content.Cut(to, content.Size())), nil
	}
	if index != indexTo {
		return nil, replaceErrorf("removing non-flat range")
	}
	inner, err := removeRange(child.Content, from-offset-1, to-offset-1)
	if err != nil {
		return nil, err
	}
	return content.ReplaceChild(index, child.Copy(inner)), nil
}

func insertInto(content *Fragment, dist int, insert *Fragment, parent *Node) *Fragment {
	index, offset, err := content.FindIndex(dist, 0)
	if err != nil {
		return nil
	}
	child := content.MaybeChild(index)
	if offset == dist || (child != nil && child.IsText()) {
		if parent != nil && !parent.CanReplace(index, index, insert, 0, insert.ChildCount()) {
			return nil
		}
		return content.Cut(0, dist).Append(insert).Append(content.Cut(dist, content.Size()))
	}
	inner := insertInto(child.Content, dist-offset-1, insert, child)
	if inner == nil {
		return nil
	}
	return content.ReplaceChild(index, child.Copy(inner))
}
