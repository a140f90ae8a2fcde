package inputrules

import (
	"regexp"
	"unicode/utf8"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
	"github.com/dshills/folio/internal/transform"
)

// Handler applies a rule to tr, which already contains the typed text.
// Returning false rejects the match; the transaction is then discarded
// and the next rule is tried.
type Handler func(tr *state.Transaction, m *Match) bool

// Rule is an input rule.
type Rule struct {
	// Name identifies the rule in configuration.
	Name string
	// Pattern must match text ending at the caret.
	Pattern *regexp.Regexp
	Handler Handler
	// Undoable rules can be reverted with UndoInputRule.
	Undoable bool
	// InCode lets the rule run when the caret carries a code mark.
	InCode bool
}

// Match is a pattern match mapped onto document positions.
type Match struct {
	// From and To delimit the whole match.
	From, To int

	text   string
	index  []int
	base   int
	groups []string
}

func newMatch(text string, index []int, base int) *Match {
	m := &Match{text: text, index: index, base: base}
	for i := 0; i < len(index); i += 2 {
		if index[i] < 0 {
			m.groups = append(m.groups, "")
			continue
		}
		m.groups = append(m.groups, text[index[i]:index[i+1]])
	}
	m.From, m.To = m.pos(index[0]), m.pos(index[1])
	return m
}

func (m *Match) pos(byteOffset int) int {
	return m.base + utf8.RuneCountInString(m.text[:byteOffset])
}

// Group returns submatch i, or "" when it did not participate.
func (m *Match) Group(i int) string {
	if i < 0 || i >= len(m.groups) {
		return ""
	}
	return m.groups[i]
}

// GroupRange returns the document range of submatch i.
func (m *Match) GroupRange(i int) (from, to int, ok bool) {
	if i < 0 || 2*i+1 >= len(m.index) || m.index[2*i] < 0 {
		return 0, 0, false
	}
	return m.pos(m.index[2*i]), m.pos(m.index[2*i+1]), true
}

// StringRule replaces the match, or its first group when the pattern has
// one, with replacement.
func StringRule(name, pattern, replacement string) *Rule {
	return &Rule{
		Name:     name,
		Pattern:  regexp.MustCompile(pattern),
		Undoable: true,
		Handler: func(tr *state.Transaction, m *Match) bool {
			from, to := m.From, m.To
			if gFrom, gTo, ok := m.GroupRange(1); ok {
				from, to = gFrom, gTo
			}
			return tr.InsertText(replacement, from, to) == nil
		},
	}
}

// WrappingRule wraps the textblock in nodeType when the pattern matches
// at its start. attrs computes the wrapper's attributes. When join is
// given and returns true, a preceding node of the same type absorbs the
// new wrapper.
func WrappingRule(name, pattern string, nodeType *model.NodeType, attrs func(*Match) model.Attrs, join func(*Match, *model.Node) bool) *Rule {
	return &Rule{
		Name:     name,
		Pattern:  regexp.MustCompile(pattern),
		Undoable: true,
		Handler: func(tr *state.Transaction, m *Match) bool {
			var a model.Attrs
			if attrs != nil {
				a = attrs(m)
			}
			start := m.From
			if err := tr.Delete(start, m.To); err != nil {
				return false
			}
			rstart, err := tr.Doc.Resolve(start)
			if err != nil {
				return false
			}
			r := rstart.BlockRange(nil, nil)
			if r == nil {
				return false
			}
			wrapping := transform.FindWrapping(r, nodeType, a)
			if wrapping == nil {
				return false
			}
			if err := tr.Wrap(r, wrapping); err != nil {
				return false
			}
			before := tr.Doc.MustResolve(start - 1).NodeBefore()
			if before != nil && before.Type == nodeType && transform.CanJoin(tr.Doc, start-1) && (join == nil || join(m, before)) {
				return tr.Join(start-1, 1) == nil
			}
			return true
		},
	}
}

// TextblockTypeRule retypes the textblock to nodeType when the pattern
// matches at its start.
func TextblockTypeRule(name, pattern string, nodeType *model.NodeType, attrs func(*Match) model.Attrs) *Rule {
	return &Rule{
		Name:     name,
		Pattern:  regexp.MustCompile(pattern),
		Undoable: true,
		Handler: func(tr *state.Transaction, m *Match) bool {
			rstart, err := tr.Doc.Resolve(m.From)
			if err != nil || rstart.Depth < 1 {
				return false
			}
			if !rstart.Node(-1).CanReplaceWith(rstart.Index(-1), rstart.IndexAfter(-1), nodeType, nil) {
				return false
			}
			var a model.Attrs
			if attrs != nil {
				a = attrs(m)
			}
			if err := tr.Delete(m.From, m.To); err != nil {
				return false
			}
			return tr.SetBlockType(m.From, m.From, nodeType, a) == nil
		},
	}
}

// MarkingRule removes the delimiters around the text and marks it. The
// pattern's first group is the delimited span and its second group the
// enclosed text. The marks are then removed from the stored marks so
// that text typed next is not marked.
func MarkingRule(name, pattern string, markTypes ...*model.MarkType) *Rule {
	return &Rule{
		Name:     name,
		Pattern:  regexp.MustCompile(pattern),
		Undoable: true,
		Handler: func(tr *state.Transaction, m *Match) bool {
			spanFrom, spanTo, ok := m.GroupRange(1)
			if !ok {
				return false
			}
			textFrom, textTo, ok := m.GroupRange(2)
			if !ok || textFrom == textTo {
				return false
			}
			if textTo < spanTo {
				if err := tr.Delete(textTo, spanTo); err != nil {
					return false
				}
			}
			if textFrom > spanFrom {
				if err := tr.Delete(spanFrom, textFrom); err != nil {
					return false
				}
			}
			end := spanFrom + (textTo - textFrom)
			marks := make([]*model.Mark, 0, len(markTypes))
			for _, mt := range markTypes {
				mark, err := mt.Create(nil)
				if err != nil {
					return false
				}
				if err := tr.AddMark(spanFrom, end, mark); err != nil {
					return false
				}
				marks = append(marks, mark)
			}
			for _, mark := range marks {
				tr.RemoveStoredMark(mark)
			}
			return true
		},
	}
}
