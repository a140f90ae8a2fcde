package transform

import (
	"github.com/dshills/folio/internal/model"
)

// ReplaceStep replaces [From, To) with Slice. A structure step only
// moves node boundaries and fails if it would overwrite content.
type ReplaceStep struct {
	From, To  int
	Slice     *model.Slice
	Structure bool
}

// NewReplaceStep creates a replace step.
func NewReplaceStep(from, to int, slice *model.Slice, structure bool) *ReplaceStep {
	if slice == nil {
		slice = model.EmptySlice
	}
	return &ReplaceStep{From: from, To: to, Slice: slice, Structure: structure}
}

func applyReplace(doc *model.Node, from, to int, slice *model.Slice) (*model.Node, error) {
	return doc.Replace(from, to, slice)
}

// Apply implements Step.
func (s *ReplaceStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.Structure {
		between, err := contentBetween(doc, s.From, s.To)
		if err != nil {
			return nil, err
		}
		if between {
			return nil, failf("structure replace would overwrite content")
		}
	}
	return applyReplace(doc, s.From, s.To, s.Slice)
}

// StepMap implements Step.
func (s *ReplaceStep) StepMap() *StepMap {
	return NewStepMap(s.From, s.To-s.From, s.Slice.Size())
}

// Invert implements Step.
func (s *ReplaceStep) Invert(doc *model.Node) Step {
	old, err := doc.Slice(s.From, s.To, false)
	if err != nil {
		old = model.EmptySlice
	}
	return NewReplaceStep(s.From, s.From+s.Slice.Size(), old, false)
}

// MapThrough implements Step.
func (s *ReplaceStep) MapThrough(m Mappable) Step {
	from, to := m.MapResult(s.From, 1), m.MapResult(s.To, -1)
	if from.DeletedAcross() && to.DeletedAcross() {
		return nil
	}
	return NewReplaceStep(from.Pos, max(from.Pos, to.Pos), s.Slice, s.Structure)
}

// Merge implements Step.
func (s *ReplaceStep) Merge(other Step) (Step, bool) {
	o, ok := other.(*ReplaceStep)
	if !ok || o.Structure || s.Structure {
		return nil, false
	}
	switch {
	case s.From+s.Slice.Size() == o.From && s.Slice.OpenEnd == 0 && o.Slice.OpenStart == 0:
		slice := model.EmptySlice
		if s.Slice.Size()+o.Slice.Size() != 0 {
			slice = model.NewSlice(s.Slice.Content.Append(o.Slice.Content), s.Slice.OpenStart, o.Slice.OpenEnd)
		}
		return NewReplaceStep(s.From, s.To+(o.To-o.From), slice, false), true
	case o.To == s.From && s.Slice.OpenStart == 0 && o.Slice.OpenEnd == 0:
		slice := model.EmptySlice
		if s.Slice.Size()+o.Slice.Size() != 0 {
			slice = model.NewSlice(o.Slice.Content.Append(s.Slice.Content), o.Slice.OpenStart, s.Slice.OpenEnd)
		}
		return NewReplaceStep(o.From, s.To, slice, false), true
	}
	return nil, false
}

// ToRecord implements Step.
func (s *ReplaceStep) ToRecord() StepRecord {
	return StepRecord{StepType: "replace", From: s.From, To: s.To, Slice: sliceRecord(s.Slice), Structure: s.Structure}
}

// ReplaceAroundStep replaces [From, To) with Slice while keeping the
// content in [GapFrom, GapTo), which is inserted into the slice at
// Insert. It wraps, unwraps and retypes nodes.
type ReplaceAroundStep struct {
	From, To       int
	GapFrom, GapTo int
	Slice          *model.Slice
	Insert         int
	Structure      bool
}

// NewReplaceAroundStep creates a replace-around step.
func NewReplaceAroundStep(from, to, gapFrom, gapTo int, slice *model.Slice, insert int, structure bool) *ReplaceAroundStep {
	if slice == nil {
		slice = model.EmptySlice
	}
	return &ReplaceAroundStep{From: from, To: to, GapFrom: gapFrom, GapTo: gapTo, Slice: slice, Insert: insert, Structure: structure}
}

// Apply implements Step.
func (s *ReplaceAroundStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.Structure {
		before, err := contentBetween(doc, s.From, s.GapFrom)
		if err != nil {
			return nil, err
		}
		after, err := contentBetween(doc, s.GapTo, s.To)
		if err != nil {
			return nil, err
		}
		if before || after {
			return nil, failf("structure gap-replace would overwrite content")
		}
	}
	gap, err := doc.Slice(s.GapFrom, s.GapTo, false)
	if err != nil {
		return nil, err
	}
	if gap.OpenStart != 0 || gap.OpenEnd != 0 {
		return nil, failf("gap is not a flat range")
	}
	inserted := s.Slice.InsertAt(s.Insert, gap.Content)
	if inserted == nil {
		return nil, failf("content does not fit in gap")
	}
	return applyReplace(doc, s.From, s.To, inserted)
}

// StepMap implements Step.
func (s *ReplaceAroundStep) StepMap() *StepMap {
	return NewStepMap(s.From, s.GapFrom-s.From, s.Insert,
		s.GapTo, s.To-s.GapTo, s.Slice.Size()-s.Insert)
}

// Invert implements Step.
func (s *ReplaceAroundStep) Invert(doc *model.Node) Step {
	gap := s.GapTo - s.GapFrom
	old, err := doc.Slice(s.From, s.To, false)
	if err == nil {
		old, err = old.RemoveBetween(s.GapFrom-s.From, s.GapTo-s.From)
	}
	if err != nil {
		old = model.EmptySlice
	}
	return NewReplaceAroundStep(s.From, s.From+s.Slice.Size()+gap,
		s.From+s.Insert, s.From+s.Insert+gap,
		old, s.GapFrom-s.From, s.Structure)
}

// MapThrough implements Step.
func (s *ReplaceAroundStep) MapThrough(m Mappable) Step {
	from, to := m.MapResult(s.From, 1), m.MapResult(s.To, -1)
	gapFrom := from.Pos
	if s.From != s.GapFrom {
		gapFrom = m.Map(s.GapFrom, -1)
	}
	gapTo := to.Pos
	if s.To != s.GapTo {
		gapTo = m.Map(s.GapTo, 1)
	}
	if (from.DeletedAcross() && to.DeletedAcross()) || gapFrom < from.Pos || gapTo > to.Pos {
		return nil
	}
	return NewReplaceAroundStep(from.Pos, to.Pos, gapFrom, gapTo, s.Slice, s.Insert, s.Structure)
}

// Merge implements Step. Replace-around steps never merge.
func (s *ReplaceAroundStep) Merge(Step) (Step, bool) { return nil, false }

// ToRecord implements Step.
func (s *ReplaceAroundStep) ToRecord() StepRecord {
	return StepRecord{
		StepType: "replaceAround", From: s.From, To: s.To, GapFrom: s.GapFrom, GapTo: s.GapTo,
		Insert: s.Insert, Slice: sliceRecord(s.Slice), Structure: s.Structure,
	}
}

// contentBetween reports whether [from, to) holds anything but node
// boundaries.
func contentBetween(doc *model.Node, from, to int) (bool, error) {
	rfrom, err := doc.Resolve(from)
	if err != nil {
		return false, err
	}
	dist := to - from
	depth := rfrom.Depth
	for dist > 0 && depth > 0 && rfrom.IndexAfter(depth) == rfrom.Node(depth).ChildCount() {
		depth--
		dist--
	}
	if dist > 0 {
		next := rfrom.Node(depth).MaybeChild(rfrom.IndexAfter(depth))
		for dist > 0 {
			if next == nil || next.IsLeaf() {
				return true, nil
			}
			next = next.FirstChild()
			dist--
		}
	}
	return false, nil
}
