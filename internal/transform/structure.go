package transform

import (
	"fmt"

	"github.com/dshills/folio/internal/model"
)

// Wrapper is one level of wrapping for Wrap.
type Wrapper struct {
	Type  *model.NodeType
	Attrs model.Attrs
}

func canCut(node *model.Node, start, end int) bool {
	return (start == 0 || node.CanReplace(start, node.ChildCount(), nil, 0, 0)) &&
		(end == node.ChildCount() || node.CanReplace(0, end, nil, 0, 0))
}

// LiftTarget returns the depth the content of r can be lifted to, or
// false when it cannot be lifted.
func LiftTarget(r *model.NodeRange) (int, bool) {
	parent := r.Parent()
	content := parent.Content.CutByIndex(r.StartIndex(), r.EndIndex())
	for depth := r.Depth; ; depth-- {
		node := r.From.Node(depth)
		index, endIndex := r.From.Index(depth), r.To.IndexAfter(depth)
		if depth < r.Depth && node.CanReplace(index, endIndex, content, 0, content.ChildCount()) {
			return depth, true
		}
		if depth == 0 || node.Type.Spec.Isolating || !canCut(node, index, endIndex) {
			return 0, false
		}
	}
}

// Lift moves the content of r out of its parents up to depth target,
// splitting the parents where the range does not cover them entirely.
func (tr *Transform) Lift(r *model.NodeRange, target int) error {
	from, to, depth := r.From, r.To, r.Depth
	gapStart, gapEnd := from.Before(depth+1), to.After(depth+1)
	start, end := gapStart, gapEnd

	before, openStart := model.EmptyFragment, 0
	splitting := false
	for d := depth; d > target; d-- {
		if splitting || from.Index(d) > 0 {
			splitting = true
			before = model.FragmentFrom(from.Node(d).Copy(before))
			openStart++
		} else {
			start--
		}
	}
	after, openEnd := model.EmptyFragment, 0
	splitting = false
	for d := depth; d > target; d-- {
		if splitting || to.After(d+1) < to.End(d) {
			splitting = true
			after = model.FragmentFrom(to.Node(d).Copy(after))
			openEnd++
		} else {
			end++
		}
	}
	return tr.Step(NewReplaceAroundStep(start, end, gapStart, gapEnd,
		model.NewSlice(before.Append(after), openStart, openEnd), before.Size()-openStart, true))
}

// FindWrapping returns the wrappers needed to wrap r in a node of type t,
// or nil when that is not possible.
func FindWrapping(r *model.NodeRange, t *model.NodeType, attrs model.Attrs) []Wrapper {
	around := findWrappingOutside(r, t)
	if around == nil {
		return nil
	}
	inner := findWrappingInside(r, t)
	if inner == nil {
		return nil
	}
	out := make([]Wrapper, 0, len(around)+1+len(inner))
	for _, w := range around {
		out = append(out, Wrapper{Type: w})
	}
	out = append(out, Wrapper{Type: t, Attrs: attrs})
	for _, w := range inner {
		out = append(out, Wrapper{Type: w})
	}
	return out
}

func findWrappingOutside(r *model.NodeRange, t *model.NodeType) []*model.NodeType {
	parent := r.Parent()
	match := parent.ContentMatchAt(r.StartIndex())
	if match == nil {
		return nil
	}
	around := match.FindWrapping(t)
	if around == nil {
		return nil
	}
	outer := t
	if len(around) > 0 {
		outer = around[0]
	}
	if !parent.CanReplaceWith(r.StartIndex(), r.EndIndex(), outer, nil) {
		return nil
	}
	return around
}

func findWrappingInside(r *model.NodeRange, t *model.NodeType) []*model.NodeType {
	parent := r.Parent()
	inner := parent.Child(r.StartIndex())
	inside := t.ContentMatch().FindWrapping(inner.Type)
	if inside == nil {
		return nil
	}
	lastType := t
	if len(inside) > 0 {
		lastType = inside[len(inside)-1]
	}
	match := lastType.ContentMatch()
	for i := r.StartIndex(); match != nil && i < r.EndIndex(); i++ {
		match = match.MatchType(parent.Child(i).Type)
	}
	if match == nil || !match.ValidEnd {
		return nil
	}
	return inside
}

// Wrap wraps the content of r in the given wrappers, outermost first.
func (tr *Transform) Wrap(r *model.NodeRange, wrappers []Wrapper) error {
	content := model.EmptyFragment
	for i := len(wrappers) - 1; i >= 0; i-- {
		w := wrappers[i]
		if content.Size() > 0 {
			match := w.Type.ContentMatch().MatchFragment(content, 0, content.ChildCount())
			if match == nil || !match.ValidEnd {
				return fmt.Errorf("%w: wrapper %s does not fit its inner wrapper", model.ErrSchemaViolation, w.Type.Name)
			}
		}
		node, err := w.Type.Create(w.Attrs, content, nil)
		if err != nil {
			return err
		}
		content = model.FragmentFrom(node)
	}
	start, end := r.Start(), r.End()
	return tr.Step(NewReplaceAroundStep(start, end, start, end, model.NewSlice(content, 0, 0), len(wrappers), true))
}

// SetBlockType retypes every textblock in [from, to) that can take type
// t. Content and marks the new type does not allow are removed. Moving
// into a code type turns line break nodes into newlines and moving out
// of one does the reverse.
func (tr *Transform) SetBlockType(from, to int, t *model.NodeType, attrs model.Attrs) error {
	if !t.IsTextblock() {
		return fmt.Errorf("%w: %s is not a textblock type", model.ErrSchemaViolation, t.Name)
	}
	computed, err := t.ComputeAttrs(attrs)
	if err != nil {
		return err
	}
	mapFrom := len(tr.steps)
	var firstErr error
	tr.Doc.NodesBetween(from, to, func(node *model.Node, pos int, _ *model.Node, _ int) bool {
		if firstErr != nil {
			return false
		}
		if !node.IsTextblock() || node.HasMarkup(t, computed, node.Marks) ||
			!canChangeType(tr.Doc, tr.mapping.SliceFrom(mapFrom).Map(pos, 1), t) {
			return true
		}
		firstErr = tr.retypeBlock(node, pos, mapFrom, t, computed)
		return false
	})
	return firstErr
}

func (tr *Transform) retypeBlock(node *model.Node, pos, mapFrom int, t *model.NodeType, attrs model.Attrs) error {
	linebreak := t.Schema.LinebreakReplacement()
	convertNewlines := 0 // 0 leaves newlines alone, 1 turns them into breaks, -1 the reverse
	if linebreak != nil {
		pre := t.Spec.Whitespace == "pre"
		supportsBreak := t.ContentMatch().MatchType(linebreak) != nil
		switch {
		case pre && !supportsBreak:
			convertNewlines = -1
		case !pre && supportsBreak:
			convertNewlines = 1
		}
	}
	if convertNewlines < 0 {
		if err := tr.replaceLinebreaks(node, pos, mapFrom, linebreak); err != nil {
			return err
		}
	}
	if err := tr.ClearIncompatible(tr.mapping.SliceFrom(mapFrom).Map(pos, 1), t, nil, convertNewlines == 0); err != nil {
		return err
	}
	mapping := tr.mapping.SliceFrom(mapFrom)
	start, end := mapping.Map(pos, 1), mapping.Map(pos+node.NodeSize(), 1)
	wrapper, err := t.Create(attrs, nil, node.Marks)
	if err != nil {
		return err
	}
	if err := tr.Step(NewReplaceAroundStep(start, end, start+1, end-1,
		model.NewSlice(model.FragmentFrom(wrapper), 0, 0), 1, true)); err != nil {
		return err
	}
	if convertNewlines > 0 {
		return tr.replaceNewlines(node, pos, mapFrom, linebreak)
	}
	return nil
}

// replaceNewlines turns newline characters in node's text into line
// break nodes.
func (tr *Transform) replaceNewlines(node *model.Node, pos, mapFrom int, linebreak *model.NodeType) error {
	var positions []int
	node.ForEach(func(child *model.Node, offset, _ int) {
		if !child.IsText() {
			return
		}
		i := 0
		for _, r := range child.Text() {
			if r == '\n' {
				positions = append(positions, pos+1+offset+i)
			}
			i++
		}
	})
	for _, p := range positions {
		start := tr.mapping.SliceFrom(mapFrom).Map(p, 1)
		br, err := linebreak.Create(nil, nil, nil)
		if err != nil {
			return err
		}
		if err := tr.ReplaceWith(start, start+1, br); err != nil {
			return err
		}
	}
	return nil
}

// replaceLinebreaks turns line break nodes into newline characters.
func (tr *Transform) replaceLinebreaks(node *model.Node, pos, mapFrom int, linebreak *model.NodeType) error {
	var positions []int
	node.ForEach(func(child *model.Node, offset, _ int) {
		if child.Type == linebreak {
			positions = append(positions, pos+1+offset)
		}
	})
	for _, p := range positions {
		start := tr.mapping.SliceFrom(mapFrom).Map(p, 1)
		if err := tr.ReplaceWith(start, start+1, linebreak.Schema.Text("\n")); err != nil {
			return err
		}
	}
	return nil
}

func canChangeType(doc *model.Node, pos int, t *model.NodeType) bool {
	rpos, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	index := rpos.Index(rpos.Depth)
	return rpos.Parent().CanReplaceWith(index, index+1, t, nil)
}

// ClearIncompatible removes the children of the node at pos that a node
// of type parentType (starting from match, or its content start) does
// not allow, strips disallowed marks and fills in required content.
// With clearNewlines set, newlines in text become spaces unless the type
// preserves whitespace.
func (tr *Transform) ClearIncompatible(pos int, parentType *model.NodeType, match *model.ContentMatch, clearNewlines bool) error {
	node := tr.Doc.NodeAt(pos)
	if node == nil {
		return fmt.Errorf("%w: no node at %d", model.ErrOutOfRange, pos)
	}
	if match == nil {
		match = parentType.ContentMatch()
	}
	var replSteps []Step
	cur := pos + 1
	for i := 0; i < node.ChildCount(); i++ {
		child := node.Child(i)
		end := cur + child.NodeSize()
		allowed := match.MatchType(child.Type)
		if allowed == nil {
			replSteps = append(replSteps, NewReplaceStep(cur, end, model.EmptySlice, false))
		} else {
			match = allowed
			for _, m := range child.Marks {
				if !parentType.AllowsMarkType(m.Type) {
					if err := tr.Step(NewRemoveMarkStep(cur, end, m)); err != nil {
						return err
					}
				}
			}
			if clearNewlines && child.IsText() && parentType.Spec.Whitespace != "pre" {
				replSteps = append(replSteps, newlineSteps(child, cur, parentType)...)
			}
		}
		cur = end
	}
	if !match.ValidEnd {
		fill, ok := match.FillBefore(model.EmptyFragment, true, 0)
		if !ok {
			return fmt.Errorf("%w: cannot complete content of %s", model.ErrSchemaViolation, parentType.Name)
		}
		if err := tr.Replace(cur, cur, model.NewSlice(fill, 0, 0)); err != nil {
			return err
		}
	}
	for i := len(replSteps) - 1; i >= 0; i-- {
		if err := tr.Step(replSteps[i]); err != nil {
			return err
		}
	}
	return nil
}

// newlineSteps replaces each "\n", "\r\n" or "\r" in a text child with a
// space.
func newlineSteps(child *model.Node, start int, parentType *model.NodeType) []Step {
	var steps []Step
	var slice *model.Slice
	runes := []rune(child.Text())
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\n' && runes[i] != '\r' {
			continue
		}
		length := 1
		if runes[i] == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
			length = 2
		}
		if slice == nil {
			space := parentType.Schema.Text(" ", parentType.AllowedMarks(child.Marks)...)
			slice = model.NewSlice(model.FragmentFrom(space), 0, 0)
		}
		steps = append(steps, NewReplaceStep(start+i, start+i+length, slice, false))
		i += length - 1
	}
	return steps
}

// SetNodeMarkup changes the type, attributes and marks of the node at
// pos. A nil type keeps the current one; nil marks keep the current
// marks.
func (tr *Transform) SetNodeMarkup(pos int, t *model.NodeType, attrs model.Attrs, marks model.MarkSet) error {
	node := tr.Doc.NodeAt(pos)
	if node == nil {
		return fmt.Errorf("%w: no node at %d", model.ErrOutOfRange, pos)
	}
	if t == nil {
		t = node.Type
	}
	if marks == nil {
		marks = node.Marks
	}
	if node.IsText() {
		return fmt.Errorf("%w: cannot set markup of a text node", model.ErrSchemaViolation)
	}
	updated, err := t.Create(attrs, nil, marks)
	if err != nil {
		return err
	}
	if node.IsLeaf() {
		return tr.ReplaceWith(pos, pos+node.NodeSize(), updated)
	}
	if !t.ValidContent(node.Content) {
		return fmt.Errorf("%w: invalid content for node type %s", model.ErrSchemaViolation, t.Name)
	}
	return tr.Step(NewReplaceAroundStep(pos, pos+node.NodeSize(), pos+1, pos+node.NodeSize()-1,
		model.NewSlice(model.FragmentFrom(updated), 0, 0), 1, true))
}

// SetNodeAttribute sets one attribute of the node at pos.
func (tr *Transform) SetNodeAttribute(pos int, attr string, value any) error {
	return tr.Step(NewAttrStep(pos, attr, value))
}

// CanSplit reports whether the node at pos can be split depth levels
// deep. typesAfter optionally gives the types of the nodes after the
// split, outermost first.
func CanSplit(doc *model.Node, pos, depth int, typesAfter []Wrapper) bool {
	rpos, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	base := rpos.Depth - depth
	parent := rpos.Parent()
	innerType := parent.Type
	if n := len(typesAfter); n > 0 && typesAfter[n-1].Type != nil {
		innerType = typesAfter[n-1].Type
	}
	index := rpos.Index(rpos.Depth)
	if base < 0 || parent.Type.Spec.Isolating ||
		!parent.CanReplace(index, parent.ChildCount(), nil, 0, 0) ||
		!innerType.ValidContent(parent.Content.CutByIndex(index, parent.ChildCount())) {
		return false
	}
	for d, i := rpos.Depth-1, depth-2; d > base; d, i = d-1, i-1 {
		node := rpos.Node(d)
		index := rpos.Index(d)
		if node.Type.Spec.Isolating {
			return false
		}
		rest := node.Content.CutByIndex(index, node.ChildCount())
		if i+1 >= 0 && i+1 < len(typesAfter) && typesAfter[i+1].Type != nil {
			override, err := typesAfter[i+1].Type.Create(typesAfter[i+1].Attrs, nil, nil)
			if err != nil {
				return false
			}
			rest = rest.ReplaceChild(0, override)
		}
		after := node.Type
		if i >= 0 && i < len(typesAfter) && typesAfter[i].Type != nil {
			after = typesAfter[i].Type
		}
		if !node.CanReplace(index+1, node.ChildCount(), nil, 0, 0) || !after.ValidContent(rest) {
			return false
		}
	}
	index = rpos.IndexAfter(base)
	baseType := rpos.Node(base + 1).Type
	if len(typesAfter) > 0 && typesAfter[0].Type != nil {
		baseType = typesAfter[0].Type
	}
	return rpos.Node(base).CanReplaceWith(index, index, baseType, nil)
}

// Split splits the node at pos depth levels deep.
func (tr *Transform) Split(pos, depth int, typesAfter []Wrapper) error {
	rpos, err := tr.Doc.Resolve(pos)
	if err != nil {
		return err
	}
	before, after := model.EmptyFragment, model.EmptyFragment
	for d, e, i := rpos.Depth, rpos.Depth-depth, depth-1; d > e; d, i = d-1, i-1 {
		before = model.FragmentFrom(rpos.Node(d).Copy(before))
		if i >= 0 && i < len(typesAfter) && typesAfter[i].Type != nil {
			node, err := typesAfter[i].Type.Create(typesAfter[i].Attrs, after, nil)
			if err != nil {
				return err
			}
			after = model.FragmentFrom(node)
		} else {
			after = model.FragmentFrom(rpos.Node(d).Copy(after))
		}
	}
	return tr.Step(NewReplaceStep(pos, pos, model.NewSlice(before.Append(after), depth, depth), true))
}

// CanJoin reports whether the nodes before and after pos can be joined.
func CanJoin(doc *model.Node, pos int) bool {
	rpos, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	index := rpos.Index(rpos.Depth)
	return Joinable(rpos.NodeBefore(), rpos.NodeAfter()) &&
		rpos.Parent().CanReplace(index, index+1, nil, 0, 0)
}

// Joinable reports whether the content of b can be appended to a.
func Joinable(a, b *model.Node) bool {
	return a != nil && b != nil && !a.IsLeaf() && a.CanAppend(b)
}

// JoinPoint finds a position at or around pos where two nodes can be
// joined, looking before (dir < 0) or after (dir > 0) pos.
func JoinPoint(doc *model.Node, pos, dir int) (int, bool) {
	rpos, err := doc.Resolve(pos)
	if err != nil {
		return 0, false
	}
	for d := rpos.Depth; ; d-- {
		var before, after *model.Node
		index := rpos.Index(d)
		switch {
		case d == rpos.Depth:
			before, after = rpos.NodeBefore(), rpos.NodeAfter()
		case dir > 0:
			before = rpos.Node(d + 1)
			index++
			after = rpos.Node(d).MaybeChild(index)
		default:
			before = rpos.Node(d).MaybeChild(index - 1)
			after = rpos.Node(d + 1)
		}
		if before != nil && !before.IsTextblock() && Joinable(before, after) &&
			rpos.Node(d).CanReplace(index, index+1, nil, 0, 0) {
			return pos, true
		}
		if d == 0 {
			return 0, false
		}
		if dir < 0 {
			pos = rpos.Before(d)
		} else {
			pos = rpos.After(d)
		}
	}
}

// Join joins the nodes around pos, depth levels deep.
func (tr *Transform) Join(pos, depth int) error {
	return tr.Step(NewReplaceStep(pos-depth, pos+depth, model.EmptySlice, true))
}
