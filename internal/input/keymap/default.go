package keymap

import "fmt"

// LoadDefaults registers the base and default editing layers.
// maxHeading bounds the heading shortcuts (Shift-Ctrl-1 and up).
func LoadDefaults(r *Registry, maxHeading int) error {
	keymaps := []*Keymap{
		DefaultBaseKeymap(),
		DefaultEditingKeymap(maxHeading, r.Mac()),
	}

	for _, km := range keymaps {
		if err := r.Register(km); err != nil {
			return err
		}
	}

	return nil
}

// DefaultBaseKeymap returns the base editing bindings. Chords bound more
// than once are tried in order.
func DefaultBaseKeymap() *Keymap {
	return &Keymap{
		Name:     "base",
		Priority: PriorityBase,
		Source:   "default",
		Bindings: []Binding{
			// Enter
			{Keys: "Enter", Action: "newlineInCode", Description: "Insert a newline in code", Category: "Editing"},
			{Keys: "Enter", Action: "createParagraphNear", Description: "Create a paragraph next to a selected block", Category: "Editing"},
			{Keys: "Enter", Action: "liftEmptyBlock", Description: "Lift an empty textblock", Category: "Editing"},
			{Keys: "Enter", Action: "splitBlock", Description: "Split the textblock", Category: "Editing"},

			// Deletion
			{Keys: "Backspace", Action: "deleteSelection", Description: "Delete the selection", Category: "Editing"},
			{Keys: "Backspace", Action: "joinBackward", Description: "Join with the previous block", Category: "Editing"},
			{Keys: "Backspace", Action: "deleteCharBackward", Description: "Delete the previous character", Category: "Editing"},
			{Keys: "Delete", Action: "deleteSelection", Description: "Delete the selection", Category: "Editing"},
			{Keys: "Delete", Action: "joinForward", Description: "Join with the next block", Category: "Editing"},
			{Keys: "Delete", Action: "deleteCharForward", Description: "Delete the next character", Category: "Editing"},

			// Selection
			{Keys: "Mod-a", Action: "selectAll", Description: "Select the whole document", Category: "Selection"},

			// Movement
			{Keys: "ArrowLeft", Action: "moveLeft", Description: "Move left", Category: "Movement"},
			{Keys: "ArrowRight", Action: "moveRight", Description: "Move right", Category: "Movement"},
			{Keys: "ArrowUp", Action: "moveUp", Description: "Move to the previous textblock", Category: "Movement"},
			{Keys: "ArrowDown", Action: "moveDown", Description: "Move to the next textblock", Category: "Movement"},
			{Keys: "Home", Action: "moveLineStart", Description: "Move to textblock start", Category: "Movement"},
			{Keys: "End", Action: "moveLineEnd", Description: "Move to textblock end", Category: "Movement"},
			{Keys: "Shift-ArrowLeft", Action: "extendLeft", Description: "Extend selection left", Category: "Movement"},
			{Keys: "Shift-ArrowRight", Action: "extendRight", Description: "Extend selection right", Category: "Movement"},
			{Keys: "Shift-Home", Action: "extendLineStart", Description: "Extend selection to textblock start", Category: "Movement"},
			{Keys: "Shift-End", Action: "extendLineEnd", Description: "Extend selection to textblock end", Category: "Movement"},
		},
	}
}

// DefaultEditingKeymap returns the rich-text bindings: history, marks,
// block types and lists.
func DefaultEditingKeymap(maxHeading int, mac bool) *Keymap {
	km := &Keymap{
		Name:     "editing",
		Priority: PriorityDefault,
		Source:   "default",
		Bindings: []Binding{
			// History
			{Keys: "Mod-z", Action: "undo", Description: "Undo", Category: "History"},
			{Keys: "Shift-Mod-z", Action: "redo", Description: "Redo", Category: "History"},
			{Keys: "Backspace", Action: "undoInputRule", Description: "Revert the last input rule", Category: "History"},

			// Structure
			{Keys: "Alt-ArrowUp", Action: "joinUp", Description: "Join with the block above", Category: "Structure"},
			{Keys: "Alt-ArrowDown", Action: "joinDown", Description: "Join with the block below", Category: "Structure"},
			{Keys: "Mod-[", Action: "liftListItem", Description: "Lift the list item", Category: "Structure"},
			{Keys: "Mod-[", Action: "lift", Description: "Lift out of the enclosing block", Category: "Structure"},
			{Keys: "Escape", Action: "selectParentNode", Description: "Select the parent node", Category: "Selection"},

			// Marks
			{Keys: "Mod-b", Action: "toggleStrong", Description: "Toggle strong", Category: "Marks"},
			{Keys: "Mod-i", Action: "toggleEm", Description: "Toggle emphasis", Category: "Marks"},
			{Keys: "Mod-`", Action: "toggleCode", Description: "Toggle code", Category: "Marks"},
			{Keys: "Mod-u", Action: "toggleUnderline", Description: "Toggle underline", Category: "Marks"},
			{Keys: "Mod-d", Action: "toggleStrike", Description: "Toggle strikethrough", Category: "Marks"},

			// Wrapping
			{Keys: "Shift-Ctrl-8", Action: "wrapBulletList", Description: "Wrap in a bullet list", Category: "Lists"},
			{Keys: "Shift-Ctrl-9", Action: "wrapOrderedList", Description: "Wrap in an ordered list", Category: "Lists"},
			{Keys: "Ctrl->", Action: "wrapBlockquote", Description: "Wrap in a blockquote", Category: "Structure"},

			// Breaks and lists
			{Keys: "Mod-Enter", Action: "hardBreak", Description: "Insert a hard break", Category: "Editing"},
			{Keys: "Shift-Enter", Action: "hardBreak", Description: "Insert a hard break", Category: "Editing"},
			{Keys: "Enter", Action: "splitListItem", Description: "Split the list item", Category: "Lists"},
			{Keys: "Mod-]", Action: "sinkListItem", Description: "Sink the list item", Category: "Lists"},

			// Block types
			{Keys: "Shift-Ctrl-0", Action: "setParagraph", Description: "Make a paragraph", Category: "Blocks"},
			{Keys: "Shift-Ctrl-\\", Action: "setCodeBlock", Description: "Make a code block", Category: "Blocks"},
			{Keys: "Mod-_", Action: "insertHorizontalRule", Description: "Insert a horizontal rule", Category: "Blocks"},

			// Tab does nothing rather than leaving the editor.
			{Keys: "Tab", Action: "swallowTab", Description: "Ignore Tab", Category: "Editing"},
			{Keys: "Shift-Tab", Action: "swallowTab", Description: "Ignore Shift-Tab", Category: "Editing"},
		},
	}
	if !mac {
		km.Bindings = append(km.Bindings, Binding{Keys: "Mod-y", Action: "redo", Description: "Redo", Category: "History"})
	} else {
		km.Bindings = append(km.Bindings, Binding{Keys: "Ctrl-Enter", Action: "hardBreak", Description: "Insert a hard break", Category: "Editing"})
	}
	for level := 1; level <= maxHeading && level <= 6; level++ {
		km.Bindings = append(km.Bindings, Binding{
			Keys:        fmt.Sprintf("Shift-Ctrl-%d", level),
			Action:      fmt.Sprintf("setHeading%d", level),
			Description: fmt.Sprintf("Make a level %d heading", level),
			Category:    "Blocks",
		})
	}
	return km
}
