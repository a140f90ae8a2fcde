package inputrules

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
)

// DefaultMaxLookback bounds the text examined before the caret.
const DefaultMaxLookback = 500

// Application describes a fired rule. It is stored on the transaction
// under state.MetaInputRule.
type Application struct {
	Rule string
	// From and To are the range the typed text replaced.
	From, To int
	Text     string

	tr        *state.Transaction
	ruleSteps int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxLookback sets how many positions before the caret rules see.
func WithMaxLookback(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLookback = n
		}
	}
}

// WithDisabled drops the named rules.
func WithDisabled(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.disabled[n] = true
		}
	}
}

// WithEnabled keeps only the named rules. An empty list keeps all.
func WithEnabled(names ...string) Option {
	return func(e *Engine) {
		if len(names) == 0 {
			return
		}
		e.enabled = map[string]bool{}
		for _, n := range names {
			e.enabled[n] = true
		}
	}
}

// Engine runs input rules. It remembers the last undoable application
// for UndoInputRule.
type Engine struct {
	mu          sync.Mutex
	all         []*Rule
	rules       []*Rule
	maxLookback int
	enabled     map[string]bool
	disabled    map[string]bool
	last        *Application
}

// New creates an engine with rules in priority order.
func New(rules []*Rule, opts ...Option) *Engine {
	e := &Engine{maxLookback: DefaultMaxLookback, disabled: map[string]bool{}}
	for _, opt := range opts {
		opt(e)
	}
	for _, r := range rules {
		e.Register(r)
	}
	return e
}

// Register appends a rule. It stays inactive while configuration
// disables it.
func (e *Engine) Register(r *Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, r)
	if e.active(r) {
		e.rules = append(e.rules, r)
	}
}

func (e *Engine) active(r *Rule) bool {
	return !e.disabled[r.Name] && (e.enabled == nil || e.enabled[r.Name])
}

// Configure resets the lookback and rule selection to their defaults,
// applies opts and recomputes the active rules from every registered
// rule.
func (e *Engine) Configure(opts ...Option) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxLookback = DefaultMaxLookback
	e.enabled = nil
	e.disabled = map[string]bool{}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = e.rules[:0:0]
	for _, r := range e.all {
		if e.active(r) {
			e.rules = append(e.rules, r)
		}
	}
	e.last = nil
}

// Rules returns the active rules in order.
func (e *Engine) Rules() []*Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Rule(nil), e.rules...)
}

// MaxLookback returns the lookback bound.
func (e *Engine) MaxLookback() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxLookback
}

// Run handles text typed over from..to. It returns nil when no rule
// fires; the caller then inserts the text normally.
func (e *Engine) Run(st *state.State, from, to int, text string) *state.Transaction {
	text = norm.NFC.String(text)
	if text == "" {
		return nil
	}
	rfrom, err := st.Doc.Resolve(from)
	if err != nil {
		return nil
	}
	rto, err := st.Doc.Resolve(to)
	if err != nil || !rfrom.SameParent(rto) {
		return nil
	}
	parent := rfrom.Parent()
	if !parent.IsTextblock() || parent.Type.IsCode() {
		return nil
	}
	caretMarks := st.StoredMarks
	if caretMarks == nil {
		caretMarks = rfrom.Marks()
	}
	inCodeMark := false
	for _, m := range caretMarks {
		if m.Type.IsCode() {
			inCodeMark = true
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	startOffset := max(0, rfrom.ParentOffset-e.maxLookback)
	before := lookbackText(parent, startOffset, rfrom.ParentOffset) + text
	base := rfrom.Start(rfrom.Depth) + startOffset

	for _, rule := range e.rules {
		if inCodeMark && !rule.InCode {
			continue
		}
		index := rule.Pattern.FindStringSubmatchIndex(before)
		if index == nil || index[1] != len(before) || index[1]-index[0] < len(text) {
			continue
		}
		tr := st.Tr()
		if err := tr.InsertText(text, from, to); err != nil {
			return nil
		}
		inserted := len(tr.Steps())
		if !rule.Handler(tr, newMatch(before, index, base)) {
			continue
		}
		app := &Application{Rule: rule.Name, From: from, To: to, Text: text, tr: tr, ruleSteps: inserted}
		tr.SetMeta(state.MetaInputRule, app).
			SetMeta(state.MetaAppendable, false).
			SetMeta(state.MetaUIEvent, "input")
		if rule.Undoable {
			e.last = app
		} else {
			e.last = nil
		}
		return tr
	}
	return nil
}

// UndoInputRule reverts the last rule application, leaving the typed
// text in place. It returns nil when the current state is not the
// direct result of an undoable application.
func (e *Engine) UndoInputRule(st *state.State) *state.Transaction {
	e.mu.Lock()
	app := e.last
	e.mu.Unlock()
	if app == nil || app.tr.Doc != st.Doc {
		return nil
	}
	if !app.tr.Selection().Eq(st.Selection) {
		return nil
	}
	tr := st.Tr()
	steps, docs := app.tr.Steps(), app.tr.Docs()
	for i := len(steps) - 1; i >= app.ruleSteps; i-- {
		if err := tr.Step(steps[i].Invert(docs[i])); err != nil {
			return nil
		}
	}
	tr.SetMeta(state.MetaUIEvent, "undoInputRule")
	return tr
}

// Forget drops the remembered application.
func (e *Engine) Forget() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = nil
}

// lookbackText returns the inline content of parent between the two
// offsets with one rune per position.
func lookbackText(parent *model.Node, from, to int) string {
	var b strings.Builder
	parent.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		switch {
		case n.IsText():
			runes := []rune(n.Text())
			b.WriteString(string(runes[max(from, pos)-pos : min(to-pos, len(runes))]))
		case n.IsLeaf() && n.Type.Spec.LeafText == "\n":
			b.WriteString("\n")
		case n.IsLeaf():
			b.WriteString("\uFFFC")
		}
		return false
	})
	return b.String()
}
