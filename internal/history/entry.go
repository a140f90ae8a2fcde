package history

import (
	"time"

	"github.com/dshills/folio/internal/state"
	"github.com/dshills/folio/internal/transform"
)

// entry is one undo or redo step.
type entry struct {
	// steps undo the change, in application order.
	steps []transform.Step
	// selection is restored after the steps are applied.
	selection   state.SelectionRecord
	description string
	timestamp   time.Time
}

// OperationInfo describes a stored entry.
type OperationInfo struct {
	Description string
	Steps       int
	Timestamp   time.Time
}

func (e *entry) info() OperationInfo {
	return OperationInfo{Description: e.description, Steps: len(e.steps), Timestamp: e.timestamp}
}

// invertSteps returns the steps that undo tr, in application order.
func invertSteps(tr *state.Transaction) []transform.Step {
	steps, docs := tr.Steps(), tr.Docs()
	out := make([]transform.Step, 0, len(steps))
	for i := len(steps) - 1; i >= 0; i-- {
		out = appendStep(out, steps[i].Invert(docs[i]))
	}
	return out
}

// appendStep adds s to steps, merging it into the last one when possible.
func appendStep(steps []transform.Step, s transform.Step) []transform.Step {
	if n := len(steps); n > 0 {
		if merged, ok := steps[n-1].Merge(s); ok {
			steps[n-1] = merged
			return steps
		}
	}
	return append(steps, s)
}

// rebase maps a sequence of stacks through a change made to the document
// the first step of the first entry applies to. Entries are listed in
// application order: the top of the stack first.
func rebase(entries []*entry, m *transform.Mapping) {
	cur := m
	for _, e := range entries {
		var steps []transform.Step
		for _, s := range e.steps {
			mapped := s.MapThrough(cur)
			next := transform.NewMapping()
			next.AppendMap(s.StepMap().Invert(), -1)
			next.AppendMapping(cur)
			if mapped != nil {
				next.AppendMap(mapped.StepMap(), 0)
				steps = append(steps, mapped)
			}
			cur = next
		}
		e.steps = steps
		e.selection = mapSelection(e.selection, cur)
	}
}

func mapSelection(rec state.SelectionRecord, m transform.Mappable) state.SelectionRecord {
	switch rec.Type {
	case "all":
		return rec
	case "node":
		res := m.MapResult(rec.Anchor, 1)
		if res.Deleted() {
			return state.SelectionRecord{Type: "text", Anchor: res.Pos, Head: res.Pos}
		}
		rec.Anchor = res.Pos
		return rec
	}
	rec.Anchor = m.Map(rec.Anchor, 1)
	rec.Head = m.Map(rec.Head, 1)
	return rec
}

// rangesFor returns the ranges touched by the last map, in the
// coordinates of the resulting document.
func rangesFor(maps []*transform.StepMap) []int {
	if len(maps) == 0 {
		return nil
	}
	var out []int
	maps[len(maps)-1].ForEach(func(_, _, from, to int) {
		out = append(out, from, to)
	})
	return out
}

func mapRanges(ranges []int, m transform.Mappable) []int {
	if ranges == nil {
		return nil
	}
	out := []int{}
	for i := 0; i < len(ranges); i += 2 {
		from, to := m.Map(ranges[i], 1), m.Map(ranges[i+1], -1)
		if from <= to {
			out = append(out, from, to)
		}
	}
	return out
}

// isAdjacentTo reports whether the first change of tr touches one of
// the previous ranges.
func isAdjacentTo(tr *state.Transaction, prev []int) bool {
	if prev == nil {
		return false
	}
	maps := tr.Mapping().Maps()
	if len(maps) == 0 {
		return true
	}
	adjacent := false
	maps[0].ForEach(func(start, end, _, _ int) {
		for i := 0; i < len(prev); i += 2 {
			if start <= prev[i+1] && end >= prev[i] {
				adjacent = true
			}
		}
	})
	return adjacent
}
