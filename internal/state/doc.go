// Package state holds the editor state: a document, a selection and the
// marks to apply to the next typed text.
//
// A State is immutable. Changes are described by a Transaction created
// with State.Tr, which embeds a transform.Transform and additionally
// tracks the selection, stored marks and metadata. State.Apply returns
// the new state; the original stays valid.
//
//	tr := st.Tr()
//	if err := tr.InsertText("hello", -1, -1); err != nil {
//		return err
//	}
//	next, err := st.Apply(tr)
//
// Selections come in three kinds: TextSelection (a cursor or a range of
// inline content), NodeSelection (one whole node) and AllSelection. They
// are mapped through every step added to a transaction, lazily, when the
// transaction's selection is next read.
package state
