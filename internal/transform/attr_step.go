package transform

import (
	"fmt"

	"github.com/dshills/folio/internal/model"
)

// AttrStep sets one attribute of the node at Pos.
type AttrStep struct {
	Pos   int
	Attr  string
	Value any
}

// NewAttrStep creates an attribute step.
func NewAttrStep(pos int, attr string, value any) *AttrStep {
	return &AttrStep{Pos: pos, Attr: attr, Value: value}
}

// Apply implements Step.
func (s *AttrStep) Apply(doc *model.Node) (*model.Node, error) {
	node := doc.NodeAt(s.Pos)
	if node == nil {
		return nil, fmt.Errorf("%w: no node at attribute step position %d", model.ErrOutOfRange, s.Pos)
	}
	updated, err := node.Type.Create(node.Attrs.With(s.Attr, s.Value), nil, node.Marks)
	if err != nil {
		return nil, err
	}
	openEnd := 1
	if node.IsLeaf() {
		openEnd = 0
	}
	return applyReplace(doc, s.Pos, s.Pos+1, model.NewSlice(model.FragmentFrom(updated), 0, openEnd))
}

// StepMap implements Step.
func (s *AttrStep) StepMap() *StepMap { return EmptyStepMap }

// Invert implements Step.
func (s *AttrStep) Invert(doc *model.Node) Step {
	var old any
	if node := doc.NodeAt(s.Pos); node != nil {
		old = node.Attrs.Get(s.Attr)
	}
	return NewAttrStep(s.Pos, s.Attr, old)
}

// MapThrough implements Step.
func (s *AttrStep) MapThrough(m Mappable) Step {
	pos := m.MapResult(s.Pos, 1)
	if pos.DeletedAfter() {
		return nil
	}
	return NewAttrStep(pos.Pos, s.Attr, s.Value)
}

// Merge implements Step.
func (s *AttrStep) Merge(Step) (Step, bool) { return nil, false }

// ToRecord implements Step.
func (s *AttrStep) ToRecord() StepRecord {
	return StepRecord{StepType: "attr", Pos: s.Pos, Attr: s.Attr, Value: s.Value}
}
