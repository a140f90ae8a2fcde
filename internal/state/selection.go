package state

import (
	"fmt"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/transform"
)

// Selection is the selected range of a document. Selections are
// immutable; mapping one through a change returns a new selection.
type Selection interface {
	// Anchor is the side that stays put when the selection is extended.
	Anchor() *model.ResolvedPos
	// Head is the moving side.
	Head() *model.ResolvedPos
	// From is the lower bound.
	From() *model.ResolvedPos
	// To is the upper bound.
	To() *model.ResolvedPos
	// Empty reports whether the selection is collapsed.
	Empty() bool
	// Map maps the selection through a change applied to produce doc.
	Map(doc *model.Node, m transform.Mappable) Selection
	// Eq reports whether two selections are equal.
	Eq(other Selection) bool
	// ToRecord returns the interchange form.
	ToRecord() SelectionRecord

	replace(tr *Transaction, content *model.Slice) error
	replaceWith(tr *Transaction, node *model.Node) error
}

// Content returns the selected content as a slice.
func Content(sel Selection) *model.Slice {
	s, err := sel.From().Doc().Slice(sel.From().Pos, sel.To().Pos, true)
	if err != nil {
		return model.EmptySlice
	}
	return s
}

// SelectionRecord is the interchange form of a selection.
type SelectionRecord struct {
	Type   string `json:"type"`
	Anchor int    `json:"anchor,omitempty"`
	Head   int    `json:"head,omitempty"`
}

// SelectionFromRecord restores a selection in doc.
func SelectionFromRecord(doc *model.Node, rec SelectionRecord) (Selection, error) {
	switch rec.Type {
	case "text":
		return NewTextSelection(doc, rec.Anchor, rec.Head)
	case "node":
		return NewNodeSelection(doc, rec.Anchor)
	case "all":
		return NewAllSelection(doc), nil
	}
	return nil, fmt.Errorf("%w: selection type %q", ErrInvalidSelection, rec.Type)
}

type selectionRange struct {
	from, to *model.ResolvedPos
}

// TextSelection is a cursor or a range of text between two positions
// that sit in inline content.
type TextSelection struct {
	anchor, head *model.ResolvedPos
}

// NewTextSelection creates a text selection. head defaults to anchor
// when negative.
func NewTextSelection(doc *model.Node, anchor, head int) (*TextSelection, error) {
	if head < 0 {
		head = anchor
	}
	ra, err := doc.Resolve(anchor)
	if err != nil {
		return nil, fmt.Errorf("%w: anchor: %v", ErrInvalidSelection, err)
	}
	rh, err := doc.Resolve(head)
	if err != nil {
		return nil, fmt.Errorf("%w: head: %v", ErrInvalidSelection, err)
	}
	return &TextSelection{anchor: ra, head: rh}, nil
}

// Cursor creates a collapsed text selection at pos.
func Cursor(pos *model.ResolvedPos) *TextSelection {
	return &TextSelection{anchor: pos, head: pos}
}

// TextBetween returns a text selection between anchor and head, moving
// endpoints that are not in inline content to the nearest valid place.
// bias gives the search direction when the endpoints coincide.
func TextBetween(anchor, head *model.ResolvedPos, bias int) Selection {
	dPos := anchor.Pos - head.Pos
	if bias == 0 || dPos != 0 {
		if dPos >= 0 {
			bias = 1
		} else {
			bias = -1
		}
	}
	if !head.Parent().InlineContent() {
		found := FindFrom(head, bias, true)
		if found == nil {
			found = FindFrom(head, -bias, true)
		}
		if found == nil {
			return Near(head, bias)
		}
		head = found.Head()
	}
	if !anchor.Parent().InlineContent() {
		if dPos == 0 {
			anchor = head
		} else {
			found := FindFrom(anchor, -bias, true)
			if found == nil {
				found = FindFrom(anchor, bias, true)
			}
			if found != nil {
				anchor = found.Anchor()
			}
			if (anchor.Pos < head.Pos) != (dPos < 0) {
				anchor = head
			}
		}
	}
	return &TextSelection{anchor: anchor, head: head}
}

func (s *TextSelection) Anchor() *model.ResolvedPos { return s.anchor }
func (s *TextSelection) Head() *model.ResolvedPos   { return s.head }
func (s *TextSelection) From() *model.ResolvedPos   { return s.anchor.Min(s.head) }
func (s *TextSelection) To() *model.ResolvedPos     { return s.anchor.Max(s.head) }
func (s *TextSelection) Empty() bool                { return s.anchor.Pos == s.head.Pos }

// CursorPos returns the cursor position, or nil when the selection is
// not collapsed.
func (s *TextSelection) CursorPos() *model.ResolvedPos {
	if s.Empty() {
		return s.head
	}
	return nil
}

// Map implements Selection.
func (s *TextSelection) Map(doc *model.Node, m transform.Mappable) Selection {
	head := doc.MustResolve(m.Map(s.head.Pos, 1))
	if !head.Parent().InlineContent() {
		return Near(head, 1)
	}
	anchor := doc.MustResolve(m.Map(s.anchor.Pos, 1))
	if !anchor.Parent().InlineContent() {
		anchor = head
	}
	return &TextSelection{anchor: anchor, head: head}
}

// Eq implements Selection.
func (s *TextSelection) Eq(other Selection) bool {
	o, ok := other.(*TextSelection)
	return ok && o.anchor.Pos == s.anchor.Pos && o.head.Pos == s.head.Pos
}

// ToRecord implements Selection.
func (s *TextSelection) ToRecord() SelectionRecord {
	return SelectionRecord{Type: "text", Anchor: s.anchor.Pos, Head: s.head.Pos}
}

func (s *TextSelection) String() string {
	return fmt.Sprintf("text(%d,%d)", s.anchor.Pos, s.head.Pos)
}

func (s *TextSelection) replace(tr *Transaction, content *model.Slice) error {
	return replaceRanges(tr, []selectionRange{{s.From(), s.To()}}, content)
}

func (s *TextSelection) replaceWith(tr *Transaction, node *model.Node) error {
	return replaceRangesWith(tr, []selectionRange{{s.From(), s.To()}}, node)
}

// NodeSelection selects a single node.
type NodeSelection struct {
	from, to *model.ResolvedPos
	node     *model.Node
}

// NewNodeSelection selects the node starting at pos.
func NewNodeSelection(doc *model.Node, pos int) (*NodeSelection, error) {
	rpos, err := doc.Resolve(pos)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	node := rpos.NodeAfter()
	if node == nil {
		return nil, fmt.Errorf("%w: no node after %d", ErrInvalidSelection, pos)
	}
	return &NodeSelection{from: rpos, to: doc.MustResolve(pos + node.NodeSize()), node: node}, nil
}

// Selectable reports whether a node can be selected as a whole.
func Selectable(n *model.Node) bool { return !n.IsText() }

// Node returns the selected node.
func (s *NodeSelection) Node() *model.Node { return s.node }

func (s *NodeSelection) Anchor() *model.ResolvedPos { return s.from }
func (s *NodeSelection) Head() *model.ResolvedPos   { return s.to }
func (s *NodeSelection) From() *model.ResolvedPos   { return s.from }
func (s *NodeSelection) To() *model.ResolvedPos     { return s.to }
func (s *NodeSelection) Empty() bool                { return false }

// Map implements Selection.
func (s *NodeSelection) Map(doc *model.Node, m transform.Mappable) Selection {
	res := m.MapResult(s.from.Pos, 1)
	rpos := doc.MustResolve(res.Pos)
	if res.Deleted() {
		return Near(rpos, 1)
	}
	sel, err := NewNodeSelection(doc, res.Pos)
	if err != nil {
		return Near(rpos, 1)
	}
	return sel
}

// Eq implements Selection.
func (s *NodeSelection) Eq(other Selection) bool {
	o, ok := other.(*NodeSelection)
	return ok && o.from.Pos == s.from.Pos
}

// ToRecord implements Selection.
func (s *NodeSelection) ToRecord() SelectionRecord {
	return SelectionRecord{Type: "node", Anchor: s.from.Pos}
}

func (s *NodeSelection) String() string {
	return fmt.Sprintf("node(%d)", s.from.Pos)
}

func (s *NodeSelection) replace(tr *Transaction, content *model.Slice) error {
	return replaceRanges(tr, []selectionRange{{s.from, s.to}}, content)
}

func (s *NodeSelection) replaceWith(tr *Transaction, node *model.Node) error {
	return replaceRangesWith(tr, []selectionRange{{s.from, s.to}}, node)
}

// AllSelection selects the whole document.
type AllSelection struct {
	doc      *model.Node
	from, to *model.ResolvedPos
}

// NewAllSelection selects all of doc.
func NewAllSelection(doc *model.Node) *AllSelection {
	return &AllSelection{doc: doc, from: doc.MustResolve(0), to: doc.MustResolve(doc.Content.Size())}
}

func (s *AllSelection) Anchor() *model.ResolvedPos { return s.from }
func (s *AllSelection) Head() *model.ResolvedPos   { return s.to }
func (s *AllSelection) From() *model.ResolvedPos   { return s.from }
func (s *AllSelection) To() *model.ResolvedPos     { return s.to }
func (s *AllSelection) Empty() bool                { return false }

// Map implements Selection.
func (s *AllSelection) Map(doc *model.Node, _ transform.Mappable) Selection {
	return NewAllSelection(doc)
}

// Eq implements Selection.
func (s *AllSelection) Eq(other Selection) bool {
	_, ok := other.(*AllSelection)
	return ok
}

// ToRecord implements Selection.
func (s *AllSelection) ToRecord() SelectionRecord { return SelectionRecord{Type: "all"} }

func (s *AllSelection) String() string { return "all" }

func (s *AllSelection) replace(tr *Transaction, content *model.Slice) error {
	if content != nil && content.Size() > 0 {
		return replaceRanges(tr, []selectionRange{{s.from, s.to}}, content)
	}
	if err := tr.DeleteRange(0, tr.Doc.Content.Size()); err != nil {
		return err
	}
	if sel := AtStart(tr.Doc); !sel.Eq(tr.Selection()) {
		tr.SetSelection(sel)
	}
	return nil
}

func (s *AllSelection) replaceWith(tr *Transaction, node *model.Node) error {
	return replaceRangesWith(tr, []selectionRange{{s.from, s.to}}, node)
}

func replaceRanges(tr *Transaction, ranges []selectionRange, content *model.Slice) error {
	if content == nil {
		content = model.EmptySlice
	}
	lastNode := content.Content.LastChild()
	var lastParent *model.Node
	for i := 0; i < content.OpenEnd && lastNode != nil; i++ {
		lastParent = lastNode
		lastNode = lastNode.LastChild()
	}
	mapFrom := len(tr.Steps())
	for i, r := range ranges {
		mapping := tr.Mapping().SliceFrom(mapFrom)
		slice := content
		if i > 0 {
			slice = model.EmptySlice
		}
		if err := tr.ReplaceRange(mapping.Map(r.from.Pos, 1), mapping.Map(r.to.Pos, 1), slice); err != nil {
			return err
		}
		if i == 0 {
			bias := 1
			if (lastNode != nil && lastNode.IsInline()) || (lastNode == nil && lastParent != nil && lastParent.IsTextblock()) {
				bias = -1
			}
			selectionToInsertionEnd(tr, mapFrom, bias)
		}
	}
	return nil
}

func replaceRangesWith(tr *Transaction, ranges []selectionRange, node *model.Node) error {
	mapFrom := len(tr.Steps())
	for i, r := range ranges {
		mapping := tr.Mapping().SliceFrom(mapFrom)
		from, to := mapping.Map(r.from.Pos, 1), mapping.Map(r.to.Pos, 1)
		if i > 0 {
			if err := tr.DeleteRange(from, to); err != nil {
				return err
			}
			continue
		}
		if err := tr.ReplaceRangeWith(from, to, node); err != nil {
			return err
		}
		bias := 1
		if node.IsInline() {
			bias = -1
		}
		selectionToInsertionEnd(tr, mapFrom, bias)
	}
	return nil
}

// selectionToInsertionEnd puts the cursor after the content inserted by
// the last replace step.
func selectionToInsertionEnd(tr *Transaction, startLen, bias int) {
	last := len(tr.Steps()) - 1
	if last < startLen {
		return
	}
	switch tr.Steps()[last].(type) {
	case *transform.ReplaceStep, *transform.ReplaceAroundStep:
	default:
		return
	}
	end := -1
	tr.Mapping().Maps()[last].ForEach(func(_, _, _, newTo int) {
		if end < 0 {
			end = newTo
		}
	})
	if end < 0 {
		return
	}
	tr.SetSelection(Near(tr.Doc.MustResolve(end), bias))
}

// FindFrom finds a valid cursor or node selection starting at pos and
// searching in direction dir. With textOnly only text selections are
// returned. It returns nil when nothing is found.
func FindFrom(pos *model.ResolvedPos, dir int, textOnly bool) Selection {
	if pos.Parent().InlineContent() {
		return Cursor(pos)
	}
	if found := findSelectionIn(pos.Doc(), pos.Parent(), pos.Pos, pos.Index(pos.Depth), dir, textOnly); found != nil {
		return found
	}
	for depth := pos.Depth - 1; depth >= 0; depth-- {
		var found Selection
		if dir < 0 {
			found = findSelectionIn(pos.Doc(), pos.Node(depth), pos.Before(depth+1), pos.Index(depth), dir, textOnly)
		} else {
			found = findSelectionIn(pos.Doc(), pos.Node(depth), pos.After(depth+1), pos.Index(depth)+1, dir, textOnly)
		}
		if found != nil {
			return found
		}
	}
	return nil
}

// Near finds a selection near pos, preferring direction bias and
// falling back to selecting the whole document.
func Near(pos *model.ResolvedPos, bias int) Selection {
	if bias == 0 {
		bias = 1
	}
	if sel := FindFrom(pos, bias, false); sel != nil {
		return sel
	}
	if sel := FindFrom(pos, -bias, false); sel != nil {
		return sel
	}
	return NewAllSelection(pos.Doc())
}

// AtStart returns the first valid selection in doc.
func AtStart(doc *model.Node) Selection {
	if sel := findSelectionIn(doc, doc, 0, 0, 1, false); sel != nil {
		return sel
	}
	return NewAllSelection(doc)
}

// AtEnd returns the last valid selection in doc.
func AtEnd(doc *model.Node) Selection {
	if sel := findSelectionIn(doc, doc, doc.Content.Size(), doc.ChildCount(), -1, false); sel != nil {
		return sel
	}
	return NewAllSelection(doc)
}

func findSelectionIn(doc, node *model.Node, pos, index, dir int, textOnly bool) Selection {
	if node.InlineContent() {
		return Cursor(doc.MustResolve(pos))
	}
	i := index
	if dir < 0 {
		i--
	}
	for ; (dir > 0 && i < node.ChildCount()) || (dir < 0 && i >= 0); i += dir {
		child := node.Child(i)
		if !child.IsAtom() {
			start := 0
			if dir < 0 {
				start = child.ChildCount()
			}
			if inner := findSelectionIn(doc, child, pos+dir, start, dir, textOnly); inner != nil {
				return inner
			}
		} else if !textOnly && Selectable(child) {
			at := pos
			if dir < 0 {
				at -= child.NodeSize()
			}
			if sel, err := NewNodeSelection(doc, at); err == nil {
				return sel
			}
		}
		pos += child.NodeSize() * dir
	}
	return nil
}

// RestoreSelection resolves rec in doc, falling back to a nearby valid
// selection when the recorded positions no longer fit.
func RestoreSelection(doc *model.Node, rec SelectionRecord) Selection {
	size := doc.Content.Size()
	clamp := func(pos int) int { return max(0, min(pos, size)) }
	switch rec.Type {
	case "all":
		return NewAllSelection(doc)
	case "node":
		if sel, err := NewNodeSelection(doc, clamp(rec.Anchor)); err == nil && Selectable(sel.node) {
			return sel
		}
		return Near(doc.MustResolve(clamp(rec.Anchor)), 1)
	}
	return TextBetween(doc.MustResolve(clamp(rec.Anchor)), doc.MustResolve(clamp(rec.Head)), 0)
}
