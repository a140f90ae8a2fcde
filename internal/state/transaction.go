package state

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/transform"
)

// Metadata keys understood by the editor and the history.
const (
	// MetaAddToHistory set to false keeps a transaction out of the history.
	MetaAddToHistory = "addToHistory"
	// MetaAppendable set to false prevents merging into the previous
	// history entry.
	MetaAppendable = "appendable"
	// MetaReplay is "undo" or "redo" on transactions produced by the history.
	MetaReplay = "replay"
	// MetaInputRule holds the *inputrules.Application of a fired rule.
	MetaInputRule = "inputRule"
	// MetaPaste marks pasted content.
	MetaPaste = "paste"
	// MetaUIEvent names the gesture that produced the transaction.
	MetaUIEvent = "uiEvent"
)

// Transaction is a Transform that also tracks the selection, stored
// marks and metadata. It is built from a State with State.Tr and is not
// safe for concurrent use.
type Transaction struct {
	*transform.Transform

	// ID uniquely identifies the transaction.
	ID uuid.UUID
	// Time is when the transaction was created.
	Time time.Time

	selBefore       Selection
	curSelection    Selection
	curSelectionFor int
	selectionSet    bool

	storedMarks    model.MarkSet
	storedMarksFor int
	storedMarksSet bool

	meta map[string]any
}

func newTransaction(st *State) *Transaction {
	return &Transaction{
		Transform:    transform.New(st.Doc),
		ID:           uuid.New(),
		Time:         time.Now(),
		selBefore:    st.Selection,
		curSelection: st.Selection,
		storedMarks:  st.StoredMarks,
	}
}

// Selection returns the transaction's selection, mapped through any
// steps added since it was set.
func (tr *Transaction) Selection() Selection {
	if n := len(tr.Steps()); tr.curSelectionFor < n {
		tr.curSelection = tr.curSelection.Map(tr.Doc, tr.Mapping().SliceFrom(tr.curSelectionFor))
		tr.curSelectionFor = n
	}
	return tr.curSelection
}

// SelectionBefore returns the selection of the state the transaction
// was started on.
func (tr *Transaction) SelectionBefore() Selection { return tr.selBefore }

// SetSelection replaces the selection. The selection must point into the
// transaction's current document.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	tr.curSelection = sel
	tr.curSelectionFor = len(tr.Steps())
	tr.selectionSet = true
	tr.storedMarks = nil
	tr.storedMarksSet = false
	return tr
}

// SelectionSet reports whether SetSelection was called.
func (tr *Transaction) SelectionSet() bool { return tr.selectionSet }

// StoredMarks returns the marks for the next typed text, or nil. Adding
// a step after the marks were set clears them.
func (tr *Transaction) StoredMarks() model.MarkSet {
	if tr.storedMarksFor != len(tr.Steps()) {
		return nil
	}
	return tr.storedMarks
}

// SetStoredMarks sets the stored marks. Pass nil to clear them.
func (tr *Transaction) SetStoredMarks(marks model.MarkSet) *Transaction {
	tr.storedMarks = marks
	tr.storedMarksFor = len(tr.Steps())
	tr.storedMarksSet = true
	return tr
}

// StoredMarksSet reports whether the stored marks were set explicitly
// after the last step.
func (tr *Transaction) StoredMarksSet() bool {
	return tr.storedMarksSet && tr.storedMarksFor == len(tr.Steps())
}

// EnsureMarks makes marks the stored marks unless the marks at the
// cursor already match.
func (tr *Transaction) EnsureMarks(marks model.MarkSet) *Transaction {
	current := tr.StoredMarks()
	if current == nil {
		current = tr.Selection().Head().Marks()
	}
	if !current.Eq(marks) {
		tr.SetStoredMarks(marks)
	}
	return tr
}

// AddStoredMark adds mark to the marks for the next typed text.
func (tr *Transaction) AddStoredMark(mark *model.Mark) *Transaction {
	return tr.EnsureMarks(mark.AddToSet(tr.currentMarks()))
}

// RemoveStoredMark removes a mark or every mark of a type from the
// marks for the next typed text.
func (tr *Transaction) RemoveStoredMark(mark *model.Mark) *Transaction {
	return tr.EnsureMarks(mark.RemoveFromSet(tr.currentMarks()))
}

// RemoveStoredMarkType removes every mark of t from the next typed text.
func (tr *Transaction) RemoveStoredMarkType(t *model.MarkType) *Transaction {
	return tr.EnsureMarks(t.RemoveFromSet(tr.currentMarks()))
}

func (tr *Transaction) currentMarks() model.MarkSet {
	if marks := tr.StoredMarks(); marks != nil {
		return marks
	}
	return tr.Selection().Head().Marks()
}

// ReplaceSelection replaces the selection with slice.
func (tr *Transaction) ReplaceSelection(slice *model.Slice) error {
	return tr.Selection().replace(tr, slice)
}

// ReplaceSelectionWith replaces the selection with node. With
// inheritMarks an inline node takes the stored marks or the marks at
// the selection start.
func (tr *Transaction) ReplaceSelectionWith(node *model.Node, inheritMarks bool) error {
	sel := tr.Selection()
	if inheritMarks {
		marks := tr.StoredMarks()
		if marks == nil {
			if sel.Empty() {
				marks = sel.From().Marks()
			} else {
				marks = sel.From().MarksAcross(sel.To())
			}
		}
		node = node.WithMarks(marks)
	}
	return sel.replaceWith(tr, node)
}

// DeleteSelection deletes the selected content.
func (tr *Transaction) DeleteSelection() error {
	return tr.Selection().replace(tr, model.EmptySlice)
}

// InsertText inserts text, normalised to NFC. With from < 0 it replaces
// the selection and inherits the marks there; otherwise it replaces
// from..to (to < 0 meaning from) and puts the cursor after the text
// when the selection was a range. Empty text deletes.
func (tr *Transaction) InsertText(text string, from, to int) error {
	text = norm.NFC.String(text)
	schema := tr.Doc.Type.Schema
	if from < 0 {
		if text == "" {
			return tr.DeleteSelection()
		}
		return tr.ReplaceSelectionWith(schema.Text(text), true)
	}
	if to < 0 {
		to = from
	}
	if text == "" {
		return tr.DeleteRange(from, to)
	}
	marks := tr.StoredMarks()
	if marks == nil {
		rfrom, err := tr.Doc.Resolve(from)
		if err != nil {
			return err
		}
		if to == from {
			marks = rfrom.Marks()
		} else {
			rto, err := tr.Doc.Resolve(to)
			if err != nil {
				return err
			}
			marks = rfrom.MarksAcross(rto)
		}
	}
	if err := tr.ReplaceRangeWith(from, to, schema.Text(text, marks...)); err != nil {
		return err
	}
	if sel := tr.Selection(); !sel.Empty() {
		tr.SetSelection(Near(sel.To(), 1))
	}
	return nil
}

// SetMeta stores a metadata value.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	if tr.meta == nil {
		tr.meta = map[string]any{}
	}
	tr.meta[key] = value
	return tr
}

// Meta returns a metadata value.
func (tr *Transaction) Meta(key string) (any, bool) {
	v, ok := tr.meta[key]
	return v, ok
}

// MetaBool returns a boolean metadata value, def when unset.
func (tr *Transaction) MetaBool(key string, def bool) bool {
	if v, ok := tr.meta[key].(bool); ok {
		return v
	}
	return def
}

// MetaString returns a string metadata value.
func (tr *Transaction) MetaString(key string) string {
	s, _ := tr.meta[key].(string)
	return s
}

// IsGeneric reports whether the transaction carries no metadata.
func (tr *Transaction) IsGeneric() bool { return len(tr.meta) == 0 }

// AddToHistory reports whether the history should record the transaction.
func (tr *Transaction) AddToHistory() bool { return tr.MetaBool(MetaAddToHistory, true) }

// Appendable reports whether the transaction may merge into the
// previous history entry.
func (tr *Transaction) Appendable() bool { return tr.MetaBool(MetaAppendable, true) }
