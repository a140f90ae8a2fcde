// Package editor is the boundary between folio's editing core and a view.
//
// An Editor holds the current state and exposes the operations a view
// needs: Apply for transactions it builds itself, Can and Exec for named
// commands, and HandleKey, HandleTextInput and the paste methods for raw
// gestures. Every successful application swaps the state, records the
// transaction in the undo history, and then notifies listeners and the
// event bus:
//
//	ed, err := editor.New(editor.WithBus(bus), editor.WithLogger(log))
//	ed.OnChange(func(c editor.StateChange) { view.Update(c.New) })
//	ed.HandleKey(key.MustParse("Mod-b"))
//	ed.HandleTextInput("bold")
//
// Failed transactions leave the state untouched, are logged, and are
// published on topic.TransactionRejected.
//
// Reconfigure swaps the runtime settings of a live editor, such as undo
// depth and user bindings, without touching its document.
package editor
