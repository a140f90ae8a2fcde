package commands

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
)

// objectReplacement stands in for inline leaves that have no single-rune
// leaf text.
const objectReplacement = '￼'

func cursorOf(sel state.Selection) *model.ResolvedPos {
	if ts, ok := sel.(*state.TextSelection); ok {
		return ts.CursorPos()
	}
	return nil
}

func atBlockStart(st *state.State) *model.ResolvedPos {
	c := cursorOf(st.Selection)
	if c == nil || c.ParentOffset > 0 {
		return nil
	}
	return c
}

func atBlockEnd(st *state.State) *model.ResolvedPos {
	c := cursorOf(st.Selection)
	if c == nil || c.ParentOffset < c.Parent().Content.Size() {
		return nil
	}
	return c
}

func isolating(n *model.Node) bool { return n.Type.Spec.Isolating }

func findCutBefore(pos *model.ResolvedPos) *model.ResolvedPos {
	if isolating(pos.Parent()) {
		return nil
	}
	for i := pos.Depth - 1; i >= 0; i-- {
		if pos.Index(i) > 0 {
			return pos.Doc().MustResolve(pos.Before(i + 1))
		}
		if isolating(pos.Node(i)) {
			break
		}
	}
	return nil
}

func findCutAfter(pos *model.ResolvedPos) *model.ResolvedPos {
	if isolating(pos.Parent()) {
		return nil
	}
	for i := pos.Depth - 1; i >= 0; i-- {
		parent := pos.Node(i)
		if pos.Index(i)+1 < parent.ChildCount() {
			return pos.Doc().MustResolve(pos.After(i + 1))
		}
		if isolating(parent) {
			break
		}
	}
	return nil
}

// textblockAt reports whether a textblock sits at the start (or end) of
// n. With only set, every node on the way must have a single child.
func textblockAt(n *model.Node, atEnd, only bool) bool {
	for scan := n; scan != nil; {
		if scan.IsTextblock() {
			return true
		}
		if only && scan.ChildCount() != 1 {
			return false
		}
		if atEnd {
			scan = scan.LastChild()
		} else {
			scan = scan.FirstChild()
		}
	}
	return false
}

// defaultBlockAt returns the first textblock type allowed by match that
// needs no attributes.
func defaultBlockAt(match *model.ContentMatch) *model.NodeType {
	if match == nil {
		return nil
	}
	for i := 0; i < match.EdgeCount(); i++ {
		t, _ := match.Edge(i)
		if t.IsTextblock() && !t.HasRequiredAttrs() {
			return t
		}
	}
	return nil
}

// inlineText renders the inline content of a textblock with one rune per
// position, so rune offsets equal content offsets.
func inlineText(parent *model.Node) []rune {
	out := make([]rune, 0, parent.Content.Size())
	parent.ForEach(func(child *model.Node, _, _ int) {
		if child.IsText() {
			out = append(out, []rune(child.Text())...)
			return
		}
		leaf := []rune(child.Type.Spec.LeafText)
		if len(leaf) == 1 {
			out = append(out, leaf[0])
		} else {
			out = append(out, objectReplacement)
		}
	})
	return out
}

// graphemeBounds returns the rune offsets at which grapheme clusters of
// text end, starting with 0.
func graphemeBounds(text []rune) []int {
	bounds := []int{0}
	gr := uniseg.NewGraphemes(string(text))
	pos := 0
	for gr.Next() {
		pos += len(gr.Runes())
		bounds = append(bounds, pos)
	}
	return bounds
}

// prevGrapheme returns the start of the cluster ending at or spanning off.
func prevGrapheme(text []rune, off int) int {
	prev := 0
	for _, b := range graphemeBounds(text) {
		if b >= off {
			break
		}
		prev = b
	}
	return prev
}

// nextGrapheme returns the end of the cluster starting at or spanning off.
func nextGrapheme(text []rune, off int) int {
	for _, b := range graphemeBounds(text) {
		if b > off {
			return b
		}
	}
	return len(text)
}

func lineStart(text []rune, off int) int {
	for i := off - 1; i >= 0; i-- {
		if text[i] == '\n' {
			return i + 1
		}
	}
	return 0
}

func lineEnd(text []rune, off int) int {
	for i := off; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return len(text)
}

// canInsert reports whether a node of type t fits somewhere around the
// selection start.
func canInsert(st *state.State, t *model.NodeType) bool {
	from := st.Selection.From()
	for d := from.Depth; d >= 0; d-- {
		index := from.Index(d)
		if from.Node(d).CanReplaceWith(index, index, t, nil) {
			return true
		}
	}
	return false
}
