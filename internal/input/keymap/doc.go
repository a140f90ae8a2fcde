// Package keymap maps key chords to named editing commands.
//
// A Keymap is a named layer of bindings with a priority. The Registry
// indexes every registered layer by canonical chord; Lookup returns all
// bindings for a key event, highest priority first, so the caller can run
// them in turn until one applies.
//
// # Layers
//
// Three priorities are conventional:
//
//	PriorityBase    (0)   base editing: Enter, Backspace, arrows
//	PriorityDefault (10)  marks, block types, lists, history
//	PriorityUser    (100) user bindings from configuration or files
//
// Several bindings may share a chord inside one layer. They are tried in
// declaration order, which is how the base layer chains Enter through
// newline-in-code, create-paragraph-near, lift-empty-block and split-block.
//
// # Chords
//
// Binding keys use the notations understood by key.Parse: "Mod-b",
// "Shift-Ctrl-8", "Ctrl+S", "<C-s>".
//
// # Usage
//
//	registry := keymap.NewRegistry()
//	if err := keymap.LoadDefaults(registry, 6); err != nil {
//	    return err
//	}
//	for _, m := range registry.Lookup(ev) {
//	    // run m.Action, stop at the first command that applies
//	}
package keymap
