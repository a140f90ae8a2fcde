package transform

import (
	"github.com/dshills/folio/internal/model"
)

func mapFragment(frag *model.Fragment, fn func(child, parent *model.Node) *model.Node, parent *model.Node) *model.Fragment {
	mapped := make([]*model.Node, 0, frag.ChildCount())
	for i := 0; i < frag.ChildCount(); i++ {
		child := frag.Child(i)
		if child.Content.Size() > 0 {
			child = child.Copy(mapFragment(child.Content, fn, child))
		}
		if child.IsInline() {
			child = fn(child, parent)
		}
		mapped = append(mapped, child)
	}
	return model.FragmentFrom(mapped...)
}

func markSlice(doc *model.Node, from, to int, fn func(child, parent *model.Node) *model.Node) (*model.Node, error) {
	old, err := doc.Slice(from, to, false)
	if err != nil {
		return nil, err
	}
	rfrom, err := doc.Resolve(from)
	if err != nil {
		return nil, err
	}
	parent := rfrom.Node(rfrom.SharedDepth(to))
	slice := model.NewSlice(mapFragment(old.Content, fn, parent), old.OpenStart, old.OpenEnd)
	return applyReplace(doc, from, to, slice)
}

// AddMarkStep adds Mark to the inline content in [From, To).
type AddMarkStep struct {
	From, To int
	Mark     *model.Mark
}

// NewAddMarkStep creates an add-mark step.
func NewAddMarkStep(from, to int, mark *model.Mark) *AddMarkStep {
	return &AddMarkStep{From: from, To: to, Mark: mark}
}

// Apply implements Step.
func (s *AddMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	return markSlice(doc, s.From, s.To, func(node, parent *model.Node) *model.Node {
		if !node.IsAtom() || !parent.Type.AllowsMarkType(s.Mark.Type) {
			return node
		}
		return node.WithMarks(s.Mark.AddToSet(node.Marks))
	})
}

// StepMap implements Step.
func (s *AddMarkStep) StepMap() *StepMap { return EmptyStepMap }

// Invert implements Step.
func (s *AddMarkStep) Invert(*model.Node) Step { return NewRemoveMarkStep(s.From, s.To, s.Mark) }

// MapThrough implements Step.
func (s *AddMarkStep) MapThrough(m Mappable) Step {
	from, to := m.MapResult(s.From, 1), m.MapResult(s.To, -1)
	if (from.Deleted() && to.Deleted()) || from.Pos >= to.Pos {
		return nil
	}
	return NewAddMarkStep(from.Pos, to.Pos, s.Mark)
}

// Merge implements Step.
func (s *AddMarkStep) Merge(other Step) (Step, bool) {
	o, ok := other.(*AddMarkStep)
	if ok && o.Mark.Eq(s.Mark) && s.From <= o.To && s.To >= o.From {
		return NewAddMarkStep(min(s.From, o.From), max(s.To, o.To), s.Mark), true
	}
	return nil, false
}

// ToRecord implements Step.
func (s *AddMarkStep) ToRecord() StepRecord {
	rec := s.Mark.ToRecord()
	return StepRecord{StepType: "addMark", From: s.From, To: s.To, Mark: &rec}
}

// RemoveMarkStep removes Mark from the inline content in [From, To).
type RemoveMarkStep struct {
	From, To int
	Mark     *model.Mark
}

// NewRemoveMarkStep creates a remove-mark step.
func NewRemoveMarkStep(from, to int, mark *model.Mark) *RemoveMarkStep {
	return &RemoveMarkStep{From: from, To: to, Mark: mark}
}

// Apply implements Step.
func (s *RemoveMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	return markSlice(doc, s.From, s.To, func(node, _ *model.Node) *model.Node {
		return node.WithMarks(s.Mark.RemoveFromSet(node.Marks))
	})
}

// StepMap implements Step.
func (s *RemoveMarkStep) StepMap() *StepMap { return EmptyStepMap }

// Invert implements Step.
func (s *RemoveMarkStep) Invert(*model.Node) Step { return NewAddMarkStep(s.From, s.To, s.Mark) }

// MapThrough implements Step.
func (s *RemoveMarkStep) MapThrough(m Mappable) Step {
	from, to := m.MapResult(s.From, 1), m.MapResult(s.To, -1)
	if (from.Deleted() && to.Deleted()) || from.Pos >= to.Pos {
		return nil
	}
	return NewRemoveMarkStep(from.Pos, to.Pos, s.Mark)
}

// Merge implements Step.
func (s *RemoveMarkStep) Merge(other Step) (Step, bool) {
	o, ok := other.(*RemoveMarkStep)
	if ok && o.Mark.Eq(s.Mark) && s.From <= o.To && s.To >= o.From {
		return NewRemoveMarkStep(min(s.From, o.From), max(s.To, o.To), s.Mark), true
	}
	return nil, false
}

// ToRecord implements Step.
func (s *RemoveMarkStep) ToRecord() StepRecord {
	rec := s.Mark.ToRecord()
	return StepRecord{StepType: "removeMark", From: s.From, To: s.To, Mark: &rec}
}
