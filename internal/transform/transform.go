package transform

import (
	"github.com/dshills/folio/internal/model"
)

// Transform accumulates steps against a starting document. Every
// successful step appends to Steps, Docs and the Mapping; a failed step
// leaves the transform untouched.
type Transform struct {
	// Doc is the current document.
	Doc *model.Node

	steps   []Step
	docs    []*model.Node
	mapping *Mapping
}

// New starts a transform at doc.
func New(doc *model.Node) *Transform {
	return &Transform{Doc: doc, mapping: NewMapping()}
}

// Steps returns the applied steps.
func (tr *Transform) Steps() []Step { return tr.steps }

// Docs returns the document before each step.
func (tr *Transform) Docs() []*model.Node { return tr.docs }

// Mapping returns the composed mapping of all steps.
func (tr *Transform) Mapping() *Mapping { return tr.mapping }

// Before returns the starting document.
func (tr *Transform) Before() *model.Node {
	if len(tr.docs) > 0 {
		return tr.docs[0]
	}
	return tr.Doc
}

// DocChanged reports whether any step was applied.
func (tr *Transform) DocChanged() bool { return len(tr.steps) > 0 }

// Step applies step, returning a *StepError when it fails.
func (tr *Transform) Step(step Step) error {
	doc, err := step.Apply(tr.Doc)
	if err != nil {
		return &StepError{Step: step, Err: err}
	}
	tr.addStep(step, doc)
	return nil
}

// MaybeStep applies step and reports whether it succeeded.
func (tr *Transform) MaybeStep(step Step) bool {
	return tr.Step(step) == nil
}

func (tr *Transform) addStep(step Step, doc *model.Node) {
	tr.docs = append(tr.docs, tr.Doc)
	tr.steps = append(tr.steps, step)
	tr.mapping.AppendMap(step.StepMap(), -1)
	tr.Doc = doc
}

// Apply applies steps to doc in order. It is pure: doc is not modified
// and the resulting mapping covers all steps.
func Apply(doc *model.Node, steps []Step) (*model.Node, *Mapping, error) {
	tr := New(doc)
	for _, s := range steps {
		if err := tr.Step(s); err != nil {
			return nil, nil, err
		}
	}
	return tr.Doc, tr.mapping, nil
}
