package state

import (
	"fmt"

	"github.com/dshills/folio/internal/model"
)

// State is an immutable editor state.
type State struct {
	Doc         *model.Node
	Selection   Selection
	StoredMarks model.MarkSet
	Schema      *model.Schema
}

// Config configures Create.
type Config struct {
	// Schema is required unless Doc is given.
	Schema *model.Schema
	// Doc defaults to the schema's minimal document.
	Doc *model.Node
	// Selection defaults to the start of the document.
	Selection Selection
	// StoredMarks are the initial stored marks.
	StoredMarks model.MarkSet
}

// Create builds a state.
func Create(cfg Config) (*State, error) {
	schema := cfg.Schema
	doc := cfg.Doc
	if doc == nil {
		if schema == nil {
			return nil, fmt.Errorf("state: a schema or a document is required")
		}
		var err error
		if doc, err = schema.TopNodeDefault(); err != nil {
			return nil, err
		}
	}
	if schema == nil {
		schema = doc.Type.Schema
	}
	sel := cfg.Selection
	if sel == nil {
		sel = AtStart(doc)
	}
	return &State{Doc: doc, Selection: sel, StoredMarks: cfg.StoredMarks, Schema: schema}, nil
}

// Tr starts a transaction on the state.
func (s *State) Tr() *Transaction { return newTransaction(s) }

// Apply returns the state after tr. The transaction must have been
// started on this state's document.
func (s *State) Apply(tr *Transaction) (*State, error) {
	if tr.Before() != s.Doc {
		return nil, ErrMismatchedTransaction
	}
	sel := tr.Selection()
	var marks model.MarkSet
	if ts, ok := sel.(*TextSelection); ok && ts.Empty() {
		marks = tr.StoredMarks()
	}
	return &State{Doc: tr.Doc, Selection: sel, StoredMarks: marks, Schema: s.Schema}, nil
}

// WithSelection returns a copy of the state with sel.
func (s *State) WithSelection(sel Selection) *State {
	next := *s
	next.Selection = sel
	next.StoredMarks = nil
	return &next
}

// Record is the interchange form of a state.
type Record struct {
	Doc       model.Record    `json:"doc"`
	Selection SelectionRecord `json:"selection"`
}

// ToRecord returns the interchange form.
func (s *State) ToRecord() Record {
	return Record{Doc: s.Doc.ToRecord(), Selection: s.Selection.ToRecord()}
}

// FromRecord restores a state.
func FromRecord(schema *model.Schema, rec Record) (*State, error) {
	doc, err := schema.NodeFromRecord(rec.Doc)
	if err != nil {
		return nil, err
	}
	sel, err := SelectionFromRecord(doc, rec.Selection)
	if err != nil {
		return nil, err
	}
	return &State{Doc: doc, Selection: sel, Schema: schema}, nil
}
