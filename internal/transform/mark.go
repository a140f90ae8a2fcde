package transform

import (
	"github.com/dshills/folio/internal/model"
)

// AddMark adds mark to every inline node in [from, to) whose parent
// allows it. Marks excluded by the new mark are removed first.
func (tr *Transform) AddMark(from, to int, mark *model.Mark) error {
	var removed []*RemoveMarkStep
	var added []*AddMarkStep
	var removing *RemoveMarkStep
	var adding *AddMarkStep
	tr.Doc.NodesBetween(from, to, func(node *model.Node, pos int, parent *model.Node, _ int) bool {
		if !node.IsInline() {
			return true
		}
		marks := node.Marks
		if mark.IsInSet(marks) || !parent.Type.AllowsMarkType(mark.Type) {
			return true
		}
		start, end := max(pos, from), min(pos+node.NodeSize(), to)
		newSet := mark.AddToSet(marks)
		for _, m := range marks {
			if m.IsInSet(newSet) {
				continue
			}
			if removing != nil && removing.To == start && removing.Mark.Eq(m) {
				removing.To = end
			} else {
				removing = NewRemoveMarkStep(start, end, m)
				removed = append(removed, removing)
			}
		}
		if adding != nil && adding.To == start {
			adding.To = end
		} else {
			adding = NewAddMarkStep(start, end, mark)
			added = append(added, adding)
		}
		return true
	})
	for _, s := range removed {
		if err := tr.Step(s); err != nil {
			return err
		}
	}
	for _, s := range added {
		if err := tr.Step(s); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMark removes mark from the inline nodes in [from, to).
func (tr *Transform) RemoveMark(from, to int, mark *model.Mark) error {
	return tr.removeMarks(from, to, func(marks model.MarkSet) []*model.Mark {
		if mark.IsInSet(marks) {
			return []*model.Mark{mark}
		}
		return nil
	})
}

// RemoveMarkType removes every mark of type t from the inline nodes in
// [from, to).
func (tr *Transform) RemoveMarkType(from, to int, t *model.MarkType) error {
	return tr.removeMarks(from, to, func(marks model.MarkSet) []*model.Mark {
		var out []*model.Mark
		for found := t.IsInSet(marks); found != nil; found = t.IsInSet(marks) {
			out = append(out, found)
			marks = found.RemoveFromSet(marks)
		}
		return out
	})
}

// RemoveAllMarks removes every mark from the inline nodes in [from, to).
func (tr *Transform) RemoveAllMarks(from, to int) error {
	return tr.removeMarks(from, to, func(marks model.MarkSet) []*model.Mark { return marks })
}

type markMatch struct {
	mark     *model.Mark
	from, to int
	step     int
}

func (tr *Transform) removeMarks(from, to int, pick func(model.MarkSet) []*model.Mark) error {
	var matched []*markMatch
	step := 0
	tr.Doc.NodesBetween(from, to, func(node *model.Node, pos int, _ *model.Node, _ int) bool {
		if !node.IsInline() {
			return true
		}
		step++
		toRemove := pick(node.Marks)
		if len(toRemove) == 0 {
			return true
		}
		end := min(pos+node.NodeSize(), to)
		for _, m := range toRemove {
			var found *markMatch
			for _, mm := range matched {
				if mm.step == step-1 && m.Eq(mm.mark) {
					found = mm
				}
			}
			if found != nil {
				found.to = end
				found.step = step
			} else {
				matched = append(matched, &markMatch{mark: m, from: max(pos, from), to: end, step: step})
			}
		}
		return true
	})
	for _, mm := range matched {
		if err := tr.Step(NewRemoveMarkStep(mm.from, mm.to, mm.mark)); err != nil {
			return err
		}
	}
	return nil
}
