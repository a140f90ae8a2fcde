package commands

import (
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
	"github.com/dshills/folio/internal/transform"
)

// SetBlockType turns the textblocks in the selection into t with attrs.
// It does not apply when every selected textblock already has that
// markup or none of them may be retyped.
func SetBlockType(t *model.NodeType, attrs model.Attrs) Command {
	return func(st *state.State) *state.Transaction {
		from, to := st.Selection.From().Pos, st.Selection.To().Pos
		applicable := false
		st.Doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
			if applicable {
				return false
			}
			if !n.IsTextblock() || n.HasMarkup(t, attrs, n.Marks) {
				return true
			}
			if n.Type == t {
				applicable = true
				return true
			}
			rpos := st.Doc.MustResolve(pos)
			index := rpos.Index(rpos.Depth)
			applicable = rpos.Parent().CanReplaceWith(index, index+1, t, nil)
			return true
		})
		if !applicable {
			return nil
		}
		tr := st.Tr()
		if err := tr.SetBlockType(from, to, t, attrs); err != nil {
			return nil
		}
		return tr
	}
}

// WrapIn wraps the selected blocks in a node of type t.
func WrapIn(t *model.NodeType, attrs model.Attrs) Command {
	return func(st *state.State) *state.Transaction {
		r := st.Selection.From().BlockRange(st.Selection.To(), nil)
		if r == nil {
			return nil
		}
		wrapping := transform.FindWrapping(r, t, attrs)
		if wrapping == nil {
			return nil
		}
		tr := st.Tr()
		if err := tr.Wrap(r, wrapping); err != nil {
			return nil
		}
		return tr
	}
}

// InsertNode replaces the selection with a fresh node of type t when it
// fits near the selection.
func InsertNode(t *model.NodeType) Command {
	return func(st *state.State) *state.Transaction {
		if !canInsert(st, t) {
			return nil
		}
		n, err := t.CreateAndFill(nil, nil, nil)
		if err != nil {
			return nil
		}
		tr := st.Tr()
		if err := tr.ReplaceSelectionWith(n, true); err != nil {
			return nil
		}
		return tr
	}
}

// HardBreak leaves a code block, or inserts a break node of type br.
func HardBreak(br *model.NodeType) Command {
	return Chain(ExitCode, InsertNode(br))
}
