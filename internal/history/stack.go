package history

import (
	"sync"
	"time"

	"github.com/dshills/folio/internal/state"
)

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 100

// metaEntry tags replay transactions with the entry they replay.
const metaEntry = "history.entry"

// Options configures a History.
type Options struct {
	// MaxEntries caps the undo stack. Zero means DefaultMaxEntries.
	MaxEntries int

	// NewGroupDelay, when positive, starts a new undo step if more time
	// than this passed since the previous change.
	NewGroupDelay time.Duration
}

// History manages the undo and redo stacks of one editor.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	// Merge state of the last recorded change.
	prevRanges     []int
	prevAppendable bool
	prevTime       time.Time

	// Grouping state
	grouping  bool
	groupOpen bool
	groupName string

	// Configuration
	maxEntries    int
	newGroupDelay time.Duration
}

// New creates a history.
func New(opts Options) *History {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: opts.MaxEntries, newGroupDelay: opts.NewGroupDelay}
}

// Record updates the history after tr was applied.
func (h *History) Record(tr *state.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch replay := tr.MetaString(state.MetaReplay); {
	case replay == "undo":
		h.replayLocked(tr, &h.undoStack, &h.redoStack)
	case replay == "redo":
		h.replayLocked(tr, &h.redoStack, &h.undoStack)
	case !tr.DocChanged():
		if tr.SelectionSet() {
			h.prevAppendable = false
			h.groupOpen = false
		}
	case !tr.AddToHistory():
		h.rebaseLocked(tr)
	default:
		h.pushLocked(tr)
	}
}

func (h *History) pushLocked(tr *state.Transaction) {
	inverted := invertSteps(tr)
	appendable := tr.Appendable()

	merge := len(h.undoStack) > 0
	if h.grouping {
		merge = merge && h.groupOpen
	} else {
		merge = merge && appendable && h.prevAppendable && isAdjacentTo(tr, h.prevRanges)
		if h.newGroupDelay > 0 && tr.Time.Sub(h.prevTime) > h.newGroupDelay {
			merge = false
		}
	}

	if merge {
		top := h.undoStack[len(h.undoStack)-1]
		steps := inverted
		for _, s := range top.steps {
			steps = appendStep(steps, s)
		}
		top.steps = steps
		top.timestamp = tr.Time
	} else {
		desc := tr.MetaString(state.MetaUIEvent)
		if h.grouping && h.groupName != "" {
			desc = h.groupName
		}
		h.undoStack = append(h.undoStack, &entry{
			steps:       inverted,
			selection:   tr.SelectionBefore().ToRecord(),
			description: desc,
			timestamp:   tr.Time,
		})
		h.groupOpen = h.grouping
	}

	// Clear redo stack
	h.redoStack = nil

	h.prevRanges = rangesFor(tr.Mapping().Maps())
	h.prevAppendable = appendable
	h.prevTime = tr.Time

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// replayLocked moves the replayed entry from one stack to the other.
func (h *History) replayLocked(tr *state.Transaction, from, to *[]*entry) {
	e, _ := tr.Meta(metaEntry)
	if n := len(*from); n == 0 || (*from)[n-1] != e {
		// Not the entry on top of the stack: treat as a foreign change.
		h.rebaseLocked(tr)
		return
	}
	popped := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]
	*to = append(*to, &entry{
		steps:       invertSteps(tr),
		selection:   tr.SelectionBefore().ToRecord(),
		description: popped.description,
		timestamp:   tr.Time,
	})
	h.prevRanges = nil
	h.prevAppendable = false
	h.groupOpen = false
}

// rebaseLocked maps the stored entries over a change that is not
// recorded itself.
func (h *History) rebaseLocked(tr *state.Transaction) {
	if !tr.DocChanged() {
		return
	}
	undo := make([]*entry, 0, len(h.undoStack))
	for i := len(h.undoStack) - 1; i >= 0; i-- {
		undo = append(undo, h.undoStack[i])
	}
	rebase(undo, tr.Mapping())
	redo := make([]*entry, 0, len(h.redoStack))
	for i := len(h.redoStack) - 1; i >= 0; i-- {
		redo = append(redo, h.redoStack[i])
	}
	rebase(redo, tr.Mapping())
	h.undoStack = dropEmpty(h.undoStack)
	h.redoStack = dropEmpty(h.redoStack)
	h.prevRanges = mapRanges(h.prevRanges, tr.Mapping())
}

func dropEmpty(stack []*entry) []*entry {
	out := stack[:0]
	for _, e := range stack {
		if len(e.steps) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Undo returns the transaction that undoes the last change in st, or nil
// when there is nothing to undo. Record the transaction once it has been
// applied.
func (h *History) Undo(st *state.State) *state.Transaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replayTr(st, h.undoStack, "undo")
}

// Redo returns the transaction that redoes the last undone change, or
// nil when there is nothing to redo.
func (h *History) Redo(st *state.State) *state.Transaction {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replayTr(st, h.redoStack, "redo")
}

func (h *History) replayTr(st *state.State, stack []*entry, kind string) *state.Transaction {
	if len(stack) == 0 {
		return nil
	}
	e := stack[len(stack)-1]
	tr := st.Tr()
	for _, s := range e.steps {
		tr.MaybeStep(s)
	}
	tr.SetSelection(state.RestoreSelection(tr.Doc, e.selection))
	tr.SetMeta(state.MetaReplay, kind).
		SetMeta(state.MetaAppendable, false).
		SetMeta(metaEntry, e)
	return tr
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a group: every change recorded until EndGroup
// becomes one undo step.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}
	h.grouping = true
	h.groupOpen = false
	h.groupName = name
}

// EndGroup closes the current group.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupOpen = false
	h.prevAppendable = false
}

// IsGrouping returns true inside BeginGroup/EndGroup.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Close prevents the next change from merging into the current undo step.
func (h *History) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prevAppendable = false
	h.groupOpen = false
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.prevRanges = nil
	h.prevAppendable = false
	h.grouping = false
	h.groupOpen = false
}

// UndoInfo describes the undo stack, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo describes the redo stack, oldest first.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(stack []*entry) []OperationInfo {
	result := make([]OperationInfo, len(stack))
	for i, e := range stack {
		result[i] = e.info()
	}
	return result
}

// PeekUndo describes the next undo step without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// SetMaxEntries changes the undo depth, dropping the oldest entries
// when the stack is larger.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the undo depth.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
