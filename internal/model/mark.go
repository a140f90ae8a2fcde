package model

import (
	"sort"
	"strings"
)

// MarkType is a compiled mark declaration. Rank is the declaration index
// and orders marks inside a set.
type MarkType struct {
	Name   string
	Schema *Schema
	Spec   *MarkSpec
	Groups []string

	rank       int
	attrs      attrSet
	excluded   []*MarkType
	parseRules []*compiledRule
}

// Rank returns the declaration index.
func (t *MarkType) Rank() int { return t.rank }

// Create makes a mark of this type.
func (t *MarkType) Create(attrs Attrs) (*Mark, error) {
	computed, err := t.attrs.compute(t.Name, attrs)
	if err != nil {
		return nil, err
	}
	return &Mark{Type: t, Attrs: computed}, nil
}

// HasRequiredAttrs reports whether some attribute lacks a default.
func (t *MarkType) HasRequiredAttrs() bool { return t.attrs.hasRequired() }

// AttrSpec returns the declaration of the named attribute.
func (t *MarkType) AttrSpec(name string) (AttributeSpec, bool) {
	spec, ok := t.attrs.specs[name]
	return spec, ok
}

// Excludes reports whether marks of this type cannot coexist with other.
func (t *MarkType) Excludes(other *MarkType) bool {
	for _, m := range t.excluded {
		if m == other {
			return true
		}
	}
	return false
}

// Inclusive reports whether the mark extends to text typed at its end.
func (t *MarkType) Inclusive() bool {
	return t.Spec.Inclusive == nil || *t.Spec.Inclusive
}

// Spanning reports whether adjacent marked nodes render as one element.
func (t *MarkType) Spanning() bool {
	return t.Spec.Spanning == nil || *t.Spec.Spanning
}

// IsCode reports whether the mark is a code mark.
func (t *MarkType) IsCode() bool { return t.Spec.Code }

// IsInSet returns the first mark of this type in set, or nil.
func (t *MarkType) IsInSet(set MarkSet) *Mark {
	for _, m := range set {
		if m.Type == t {
			return m
		}
	}
	return nil
}

// RemoveFromSet returns set without marks of this type.
func (t *MarkType) RemoveFromSet(set MarkSet) MarkSet {
	var out MarkSet
	for i, m := range set {
		if m.Type == t {
			if out == nil {
				out = append(MarkSet{}, set[:i]...)
			}
		} else if out != nil {
			out = append(out, m)
		}
	}
	if out == nil {
		return set
	}
	return out
}

func (t *MarkType) String() string { return t.Name }

// Mark is an annotation on inline content. Marks are immutable.
type Mark struct {
	Type  *MarkType
	Attrs Attrs
}

// Eq reports whether two marks have the same type and attributes.
func (m *Mark) Eq(other *Mark) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	return m.Type == other.Type && m.Attrs.Eq(other.Attrs)
}

// AddToSet returns set with m added in rank order. Marks that m excludes
// are dropped; if a mark in set excludes m, set is returned unchanged.
func (m *Mark) AddToSet(set MarkSet) MarkSet {
	var out MarkSet
	copied, placed := false, false
	for i, other := range set {
		if m.Eq(other) {
			return set
		}
		if m.Type.Excludes(other.Type) {
			if !copied {
				out = append(MarkSet{}, set[:i]...)
				copied = true
			}
			continue
		}
		if other.Type.Excludes(m.Type) {
			return set
		}
		if !placed && other.Type.rank > m.Type.rank {
			if !copied {
				out = append(MarkSet{}, set[:i]...)
				copied = true
			}
			out = append(out, m)
			placed = true
		}
		if copied {
			out = append(out, other)
		}
	}
	if !copied {
		out = append(MarkSet{}, set...)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// RemoveFromSet returns set without m.
func (m *Mark) RemoveFromSet(set MarkSet) MarkSet {
	for i, other := range set {
		if m.Eq(other) {
			out := append(MarkSet{}, set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	return set
}

// IsInSet reports whether set contains m.
func (m *Mark) IsInSet(set MarkSet) bool {
	for _, other := range set {
		if m.Eq(other) {
			return true
		}
	}
	return false
}

// ToRecord returns the interchange form of the mark.
func (m *Mark) ToRecord() MarkRecord {
	rec := MarkRecord{Type: m.Type.Name}
	if len(m.Attrs) > 0 {
		rec.Attrs = m.Attrs.Clone()
	}
	return rec
}

func (m *Mark) String() string {
	if len(m.Attrs) == 0 {
		return m.Type.Name
	}
	parts := make([]string, 0, len(m.Attrs))
	for _, k := range m.Attrs.Keys() {
		parts = append(parts, k+"="+formatAttr(m.Attrs[k]))
	}
	return m.Type.Name + "(" + strings.Join(parts, " ") + ")"
}

// MarkSet is a rank-ordered list of marks with no duplicate type unless
// the type permits it. The zero value is the empty set.
type MarkSet []*Mark

// NoMarks is the empty mark set.
var NoMarks = MarkSet{}

// MarkSetFrom sorts marks into a set.
func MarkSetFrom(marks ...*Mark) MarkSet {
	if len(marks) == 0 {
		return NoMarks
	}
	var set MarkSet
	for _, m := range marks {
		if m != nil {
			set = m.AddToSet(set)
		}
	}
	if set == nil {
		return NoMarks
	}
	sort.SliceStable(set, func(i, j int) bool { return set[i].Type.rank < set[j].Type.rank })
	return set
}

// Eq reports whether both sets hold equal marks in the same order.
func (s MarkSet) Eq(other MarkSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Eq(other[i]) {
			return false
		}
	}
	return true
}

// Has reports whether the set contains a mark of type t.
func (s MarkSet) Has(t *MarkType) bool {
	return t.IsInSet(s) != nil
}

func (s MarkSet) String() string {
	parts := make([]string, len(s))
	for i, m := range s {
		parts[i] = m.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}
