// Package history provides undo and redo for editor transactions.
//
// Every recorded document change is stored as the inverse of its steps
// plus the selection to restore. Consecutive changes are merged into one
// undo step while they are appendable and touch each other:
//
//	h := history.New(history.Options{MaxEntries: 100})
//	h.Record(tr)            // after applying tr to the state
//	if undo := h.Undo(st); undo != nil {
//		st, _ = st.Apply(undo)
//		h.Record(undo)      // moves the entry to the redo stack
//	}
//
// Undo and Redo do not change the stacks by themselves. The returned
// transaction carries replay metadata; recording it after it has been
// applied moves the entry to the opposite stack, so a replay that fails
// to apply leaves the history intact.
//
// # Grouping
//
// A change merges into the top undo entry when it is appendable, the
// previously recorded change was appendable, no selection-only
// transaction happened in between, and its changed range touches the
// previous change's range. BeginGroup and EndGroup force every change in
// between into a single entry.
//
// # Unrecorded changes
//
// Changes recorded with addToHistory set to false are not undoable, but
// the stored entries are rebased over them so undo keeps working on the
// surrounding content.
package history
