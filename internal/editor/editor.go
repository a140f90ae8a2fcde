package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/folio/internal/commands"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/history"
	"github.com/dshills/folio/internal/input/fuzzy"
	"github.com/dshills/folio/internal/input/key"
	"github.com/dshills/folio/internal/input/keymap"
	"github.com/dshills/folio/internal/inputrules"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/markup"
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/schemas/markdown"
	"github.com/dshills/folio/internal/state"
)

// Editor owns one editor state and turns gestures into transactions.
// It combines commands, keymaps, input rules and undo history behind a
// single mutex, so calls from several goroutines are serialized.
//
// Listeners and bus subscribers run after the state swap, outside the
// lock, and may call back into the editor.
type Editor struct {
	mu sync.Mutex

	state *state.State

	// Core components
	commands *commands.Registry
	keymaps  *keymap.Registry
	rules    *inputrules.Engine
	history  *history.History
	parser   *markup.Parser
	render   *markup.Serializer

	bus       event.Bus
	logger    *logging.Logger
	listeners map[int]Listener
	nextID    int

	// Configuration
	schema         *model.Schema
	initDoc        *model.Node
	maxUndoEntries int
	newGroupDelay  time.Duration
	headingLevels  int
	maxLookback    int
	rulesEnabled   bool
	disabledRules  []string
	enabledRules   []string
	extraRules     []*inputrules.Rule
	userBindings   map[string]string
	extraKeymaps   []*keymap.Keymap
	mac            *bool
	readOnly       bool
}

// notification is collected under the lock and delivered after it.
type notification struct {
	change   StateChange
	rejected *Rejection
	history  bool
	rule     *RuleApplied
}

// New creates an editor. Without a schema or document it edits an empty
// document of the markdown schema.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		logger:         logging.Null(),
		listeners:      make(map[int]Listener),
		maxUndoEntries: history.DefaultMaxEntries,
		headingLevels:  DefaultHeadingLevels,
		maxLookback:    DefaultMaxLookback,
		rulesEnabled:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("editor")

	if e.schema == nil && e.initDoc != nil {
		e.schema = e.initDoc.Type.Schema
	}
	if e.schema == nil {
		e.schema = markdown.Schema()
	}
	st, err := state.Create(state.Config{Schema: e.schema, Doc: e.initDoc})
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	e.state = st

	e.history = history.New(history.Options{MaxEntries: e.maxUndoEntries, NewGroupDelay: e.newGroupDelay})
	e.parser = markup.NewParser(e.schema)
	e.render = markup.NewSerializer(e.schema)

	e.rules = inputrules.New(append(inputrules.Builtin(e.schema, e.headingLevels), e.extraRules...), e.ruleOptions()...)

	e.commands = commands.NewRegistry()
	e.commands.RegisterAll(commands.Builtin(e.schema, e.headingLevels))
	e.commands.Register("undo", e.history.Undo)
	e.commands.Register("redo", e.history.Redo)
	e.commands.Register("undoInputRule", e.rules.UndoInputRule)

	if e.mac != nil {
		e.keymaps = keymap.NewRegistryFor(*e.mac)
	} else {
		e.keymaps = keymap.NewRegistry()
	}
	if err := keymap.LoadDefaults(e.keymaps, e.headingLevels); err != nil {
		return nil, fmt.Errorf("editor: default keymaps: %w", err)
	}
	if len(e.userBindings) > 0 {
		e.extraKeymaps = append(e.extraKeymaps, keymap.UserKeymap(e.userBindings))
	}
	for _, km := range e.extraKeymaps {
		if err := e.keymaps.Register(km); err != nil {
			return nil, fmt.Errorf("editor: keymap %s: %w", km.Name, err)
		}
	}
	return e, nil
}

// State returns the current state.
func (e *Editor) State() *state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Doc returns the current document.
func (e *Editor) Doc() *model.Node {
	return e.State().Doc
}

// Schema returns the editor's schema.
func (e *Editor) Schema() *model.Schema { return e.schema }

// Commands returns the command registry. Commands registered later are
// reachable from keymaps and Exec.
func (e *Editor) Commands() *commands.Registry { return e.commands }

// Keymaps returns the keymap registry.
func (e *Editor) Keymaps() *keymap.Registry { return e.keymaps }

// InputRules returns the input-rule engine.
func (e *Editor) InputRules() *inputrules.Engine { return e.rules }

// History returns the undo history.
func (e *Editor) History() *history.History { return e.history }

// Bus returns the bus notifications are published on, or nil.
func (e *Editor) Bus() event.Bus { return e.bus }

// OnChange registers fn to run after every state swap. The returned
// function removes it.
func (e *Editor) OnChange(fn Listener) (remove func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// Apply applies tr, which must have been started on the current state.
// On failure the state is left untouched.
func (e *Editor) Apply(tr *state.Transaction) (*model.Node, state.Selection, error) {
	e.mu.Lock()
	n, err := e.applyLocked(tr)
	doc, sel := e.state.Doc, e.state.Selection
	listeners := e.listenersLocked()
	e.mu.Unlock()

	e.deliver(n, listeners)
	return doc, sel, err
}

// Can reports whether the named command applies to the current state.
func (e *Editor) Can(name string) bool {
	cmd, ok := e.commands.Get(name)
	if !ok {
		return false
	}
	return cmd(e.State()) != nil
}

// Exec runs the named command. It reports whether the command applied.
func (e *Editor) Exec(name string) (bool, error) {
	cmd, ok := e.commands.Get(name)
	if !ok {
		if hint := fuzzy.Suggest(name, e.commands.Names(), 3); len(hint) > 0 {
			return false, fmt.Errorf("%w: %s (did you mean %s?)", ErrUnknownCommand, name, strings.Join(hint, ", "))
		}
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	e.mu.Lock()
	tr := cmd(e.state)
	if tr == nil {
		e.mu.Unlock()
		return false, nil
	}
	n, err := e.runLocked(tr, name)
	listeners := e.listenersLocked()
	e.mu.Unlock()

	e.deliver(n, listeners)
	return err == nil, err
}

// Undo reverts the last undo step. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	ok, _ := e.Exec("undo")
	return ok
}

// Redo reapplies the last undone step.
func (e *Editor) Redo() bool {
	ok, _ := e.Exec("redo")
	return ok
}

// HandleKey runs the commands bound to ev in priority order until one
// applies. An unbound printable character is typed as text. It reports
// whether the key was consumed.
func (e *Editor) HandleKey(ev key.Event) bool {
	matches := e.keymaps.Lookup(ev)

	e.mu.Lock()
	for _, m := range matches {
		cmd, ok := e.commands.Get(m.Action)
		if !ok {
			e.logger.Debug("key %s bound to unknown command %q", ev.Chord(), m.Action)
			continue
		}
		tr := cmd(e.state)
		if tr == nil {
			continue
		}
		n, err := e.runLocked(tr, m.Action)
		listeners := e.listenersLocked()
		e.mu.Unlock()
		e.deliver(n, listeners)
		return err == nil
	}
	e.mu.Unlock()

	if ev.IsChar() && !ev.IsModified() {
		return e.HandleTextInput(string(ev.Rune)) == nil
	}
	return false
}

// HandleTextInput types text over the selection, giving input rules the
// chance to rewrite it.
func (e *Editor) HandleTextInput(text string) error {
	text = norm.NFC.String(text)
	if text == "" {
		return nil
	}
	e.mu.Lock()
	st := e.state
	from, to := st.Selection.From().Pos, st.Selection.To().Pos

	var tr *state.Transaction
	if e.rulesEnabled {
		tr = e.rules.Run(st, from, to, text)
	}
	if tr == nil {
		tr = st.Tr()
		if err := tr.InsertText(text, from, to); err != nil {
			e.mu.Unlock()
			e.logger.Warn("typing %q at %d: %v", text, from, err)
			return err
		}
		tr.SetMeta(state.MetaUIEvent, "input")
	}
	n, err := e.applyLocked(tr)
	listeners := e.listenersLocked()
	e.mu.Unlock()

	e.deliver(n, listeners)
	return err
}

// HandlePaste replaces the selection with slice as one undo step.
func (e *Editor) HandlePaste(slice *model.Slice) error {
	e.mu.Lock()
	tr := e.state.Tr()
	if err := tr.ReplaceSelection(slice); err != nil {
		e.mu.Unlock()
		e.logger.Warn("paste rejected: %v", err)
		return err
	}
	tr.SetMeta(state.MetaPaste, true).
		SetMeta(state.MetaAppendable, false).
		SetMeta(state.MetaUIEvent, "paste")
	n, err := e.applyLocked(tr)
	listeners := e.listenersLocked()
	e.mu.Unlock()

	e.deliver(n, listeners)
	return err
}

// PasteHTML parses src with the schema's parse rules and pastes the
// result.
func (e *Editor) PasteHTML(src string) error {
	slice, err := e.parser.ParseSlice(src)
	if err != nil {
		return err
	}
	return e.HandlePaste(slice)
}

// PasteText pastes plain text. Blank lines separate paragraphs.
func (e *Editor) PasteText(text string) error {
	text = norm.NFC.String(strings.ReplaceAll(text, "\r\n", "\n"))
	para := e.schema.NodeType("paragraph")
	if para == nil || !strings.Contains(text, "\n\n") {
		return e.HandleTextInput(text)
	}
	var blocks []*model.Node
	for _, chunk := range strings.Split(text, "\n\n") {
		var content []*model.Node
		if chunk = strings.Trim(chunk, "\n"); chunk != "" {
			content = append(content, e.schema.Text(chunk))
		}
		n, err := para.CreateChecked(nil, model.FragmentFrom(content...), nil)
		if err != nil {
			return err
		}
		blocks = append(blocks, n)
	}
	return e.HandlePaste(&model.Slice{Content: model.FragmentFrom(blocks...), OpenStart: 1, OpenEnd: 1})
}

// HTML renders the current document.
func (e *Editor) HTML() (string, error) {
	return e.render.NodeHTML(e.Doc())
}

// SetHTML replaces the document with parsed markup and clears the
// history.
func (e *Editor) SetHTML(src string) error {
	doc, err := e.parser.Parse(src)
	if err != nil {
		return err
	}
	return e.Reset(doc)
}

// Reset replaces the whole state with a fresh one for doc and clears
// the history. Listeners are not notified.
func (e *Editor) Reset(doc *model.Node) error {
	st, err := state.Create(state.Config{Schema: e.schema, Doc: doc})
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = st
	e.history.Clear()
	e.rules.Forget()
	return nil
}

// runLocked applies a command's transaction. A transaction that changes
// nothing counts as handled and is not applied.
func (e *Editor) runLocked(tr *state.Transaction, name string) (notification, error) {
	if len(tr.Steps()) == 0 && !tr.SelectionSet() && !tr.StoredMarksSet() {
		return notification{}, nil
	}
	if _, ok := tr.Meta(state.MetaUIEvent); !ok {
		tr.SetMeta(state.MetaUIEvent, name)
	}
	if tr.MetaString(state.MetaReplay) == "" && tr.DocChanged() {
		if _, isRule := tr.Meta(state.MetaInputRule); !isRule {
			tr.SetMeta(state.MetaAppendable, false)
		}
	}
	return e.applyLocked(tr)
}

func (e *Editor) applyLocked(tr *state.Transaction) (notification, error) {
	if e.readOnly && tr.DocChanged() {
		return e.reject(tr, ErrReadOnly)
	}
	next, err := e.state.Apply(tr)
	if err != nil {
		return e.reject(tr, err)
	}
	old := e.state
	e.state = next
	e.history.Record(tr)

	n := notification{change: StateChange{Old: old, New: next, Transaction: tr}}
	n.history = tr.DocChanged() || tr.MetaString(state.MetaReplay) != ""
	if v, ok := tr.Meta(state.MetaInputRule); ok {
		if app, ok := v.(*inputrules.Application); ok {
			n.rule = &RuleApplied{Rule: app.Rule, Text: app.Text}
		}
	}
	e.logger.WithField("tr", tr.ID).Debug("applied %d steps (%s)", len(tr.Steps()), tr.MetaString(state.MetaUIEvent))
	return n, nil
}

func (e *Editor) reject(tr *state.Transaction, err error) (notification, error) {
	if errors.Is(err, ErrReadOnly) {
		e.logger.Debug("rejected transaction %s: %v", tr.ID, err)
	} else {
		e.logger.Warn("rejected transaction %s: %v", tr.ID, err)
	}
	return notification{rejected: &Rejection{Transaction: tr, Err: err}}, err
}

func (e *Editor) listenersLocked() []Listener {
	out := make([]Listener, 0, len(e.listeners))
	for id := 0; id < e.nextID; id++ {
		if fn, ok := e.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// deliver runs listeners and publishes n on the bus.
func (e *Editor) deliver(n notification, listeners []Listener) {
	if n.change.Transaction != nil {
		for _, fn := range listeners {
			fn(n.change)
		}
	}
	if e.bus == nil {
		return
	}
	tr := n.change.Transaction
	if n.rejected != nil {
		tr = n.rejected.Transaction
	}
	if tr == nil {
		return
	}
	correlation := tr.ID.String()
	publish := func(ev event.TopicProvider) {
		if err := e.bus.Publish(context.Background(), ev); err != nil {
			e.logger.Warn("publish %s: %v", ev.EventTopic(), err)
		}
	}
	if n.rejected != nil {
		publish(event.NewEvent(topic.TransactionRejected, *n.rejected, "editor").WithCorrelation(correlation))
		return
	}
	publish(event.NewEvent(topic.StateChanged, n.change, "editor").WithCorrelation(correlation))
	if n.rule != nil {
		publish(event.NewEvent(topic.InputRuleApplied, *n.rule, "editor").WithCorrelation(correlation))
	}
	if n.history {
		status := HistoryStatus{UndoDepth: e.history.UndoCount(), RedoDepth: e.history.RedoCount()}
		publish(event.NewEvent(topic.HistoryChanged, status, "editor").WithCorrelation(correlation))
	}
}
