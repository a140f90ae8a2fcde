// Package commands holds the editing commands bound to keys.
//
// A Command looks at a State and either returns the Transaction that
// performs it or nil when it does not apply. Returning nil lets a caller
// fall through to the next candidate, so key bindings can list several
// actions for one chord and the first applicable one wins:
//
//	enter := commands.Chain(
//		commands.NewlineInCode,
//		commands.CreateParagraphNear,
//		commands.LiftEmptyBlock,
//		commands.SplitBlock,
//	)
//
// Commands never mutate the state they are given. A command that wants
// to consume a key without changing anything returns an empty
// transaction.
//
// Builtin builds the named command set for a schema; the names match the
// actions used by the default keymaps. Commands whose node or mark type
// is missing from the schema are left out.
package commands
