// Package inputrules turns patterns in typed text into document changes.
//
// An Engine holds an ordered list of rules. When text is typed, Run
// inserts it and looks at the text before the caret in the current
// textblock, bounded by MaxLookback positions. Non-text leaves appear as
// U+FFFC and hard breaks as "\n". Rules are tried in order; the first
// whose pattern matches at the caret and whose handler accepts the match
// adds its steps to the transaction:
//
//	eng := inputrules.New(inputrules.Builtin(schema, 6))
//	if tr := eng.Run(st, from, to, text); tr != nil {
//		st, _ = st.Apply(tr)
//	}
//
// The returned transaction holds the literal insertion followed by the
// rule's steps and is not appendable, so it forms its own undo step.
// UndoInputRule reverts the last rule application to the literal typed
// text, as long as nothing changed since.
package inputrules
