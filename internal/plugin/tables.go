package plugin

import (
	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/model"
	"github.com/dshills/folio/internal/state"
)

func selectionTable(L *glua.LState, sel state.Selection) *glua.LTable {
	t := L.NewTable()
	t.RawSetString("from", glua.LNumber(sel.From().Pos))
	t.RawSetString("to", glua.LNumber(sel.To().Pos))
	t.RawSetString("anchor", glua.LNumber(sel.Anchor().Pos))
	t.RawSetString("head", glua.LNumber(sel.Head().Pos))
	t.RawSetString("empty", glua.LBool(sel.Empty()))
	kind := "text"
	switch sel.(type) {
	case *state.NodeSelection:
		kind = "node"
	case *state.AllSelection:
		kind = "all"
	}
	t.RawSetString("kind", glua.LString(kind))
	return t
}

// stateTable exposes a read-only view of st:
//
//	st.size, st.selection, st:text(), st:text_between(from, to),
//	st:block(), st:marks()
func (h *Host) stateTable(L *glua.LState, st *state.State) *glua.LTable {
	t := L.NewTable()
	t.RawSetString("size", glua.LNumber(st.Doc.Content.Size()))
	t.RawSetString("selection", selectionTable(L, st.Selection))
	L.SetFuncs(t, map[string]glua.LGFunction{
		"text": func(L *glua.LState) int {
			L.Push(glua.LString(st.Doc.TextContent()))
			return 1
		},
		"text_between": func(L *glua.LState) int {
			from, to := L.CheckInt(2), L.CheckInt(3)
			if from < 0 || to > st.Doc.Content.Size() || from > to {
				L.ArgError(2, "range outside the document")
				return 0
			}
			L.Push(glua.LString(st.Doc.TextBetween(from, to, "\n", "")))
			return 1
		},
		"block": func(L *glua.LState) int {
			parent := st.Selection.From().Parent()
			b := L.NewTable()
			b.RawSetString("type", glua.LString(parent.Type.Name))
			b.RawSetString("attrs", h.bridge.ToLua(map[string]any(parent.Attrs)))
			L.Push(b)
			return 1
		},
		"marks": func(L *glua.LState) int {
			marks := st.StoredMarks
			if marks == nil {
				marks = st.Selection.From().Marks()
			}
			names := make([]string, 0, len(marks))
			for _, m := range marks {
				names = append(names, m.Type.Name)
			}
			L.Push(h.bridge.ToLua(names))
			return 1
		},
	})
	return t
}

// trTable exposes editing methods on tr. Every method raises a Lua
// error when the edit cannot be made.
//
//	tr:insert(text [, from [, to]]), tr:delete(from, to),
//	tr:add_mark(from, to, name [, attrs]), tr:remove_mark(from, to, name),
//	tr:set_block(from, to, name [, attrs]), tr:select(anchor [, head]),
//	tr:meta(key, value), tr:size(), tr:selection()
func (h *Host) trTable(L *glua.LState, tr *state.Transaction) *glua.LTable {
	schema := tr.Doc.Type.Schema
	check := func(L *glua.LState, err error) {
		if err != nil {
			L.RaiseError("%v", err)
		}
	}
	markType := func(L *glua.LState, n int) *model.MarkType {
		name := L.CheckString(n)
		mt := schema.MarkType(name)
		if mt == nil {
			L.ArgError(n, "unknown mark "+name)
		}
		return mt
	}

	t := L.NewTable()
	L.SetFuncs(t, map[string]glua.LGFunction{
		"insert": func(L *glua.LState) int {
			text := L.CheckString(2)
			sel := tr.Selection()
			from := L.OptInt(3, sel.From().Pos)
			to := L.OptInt(4, from)
			if L.GetTop() < 3 {
				to = sel.To().Pos
			}
			check(L, tr.InsertText(text, from, to))
			return 0
		},
		"delete": func(L *glua.LState) int {
			check(L, tr.Delete(L.CheckInt(2), L.CheckInt(3)))
			return 0
		},
		"add_mark": func(L *glua.LState) int {
			from, to := L.CheckInt(2), L.CheckInt(3)
			mt := markType(L, 4)
			m, err := schema.Mark(mt.Name, model.Attrs(h.bridge.ToMap(L.Get(5))))
			check(L, err)
			check(L, tr.AddMark(from, to, m))
			return 0
		},
		"remove_mark": func(L *glua.LState) int {
			from, to := L.CheckInt(2), L.CheckInt(3)
			check(L, tr.RemoveMarkType(from, to, markType(L, 4)))
			return 0
		},
		"set_block": func(L *glua.LState) int {
			from, to := L.CheckInt(2), L.CheckInt(3)
			name := L.CheckString(4)
			nt := schema.NodeType(name)
			if nt == nil {
				L.ArgError(4, "unknown node type "+name)
				return 0
			}
			check(L, tr.SetBlockType(from, to, nt, model.Attrs(h.bridge.ToMap(L.Get(5)))))
			return 0
		},
		"select": func(L *glua.LState) int {
			anchor := L.CheckInt(2)
			head := L.OptInt(3, anchor)
			sel, err := state.NewTextSelection(tr.Doc, anchor, head)
			check(L, err)
			tr.SetSelection(sel)
			return 0
		},
		"meta": func(L *glua.LState) int {
			tr.SetMeta(L.CheckString(2), h.bridge.ToGo(L.Get(3)))
			return 0
		},
		"size": func(L *glua.LState) int {
			L.Push(glua.LNumber(tr.Doc.Content.Size()))
			return 1
		},
		"selection": func(L *glua.LState) int {
			L.Push(selectionTable(L, tr.Selection()))
			return 1
		},
	})
	return t
}

// payloadTable converts bus payloads. Editor notifications get a
// compact form; anything else goes through the bridge.
func (h *Host) payloadTable(L *glua.LState, payload any) glua.LValue {
	switch p := payload.(type) {
	case editor.StateChange:
		t := L.NewTable()
		t.RawSetString("doc_changed", glua.LBool(p.DocChanged()))
		t.RawSetString("ui_event", glua.LString(p.Transaction.MetaString(state.MetaUIEvent)))
		t.RawSetString("size", glua.LNumber(p.New.Doc.Content.Size()))
		t.RawSetString("selection", selectionTable(L, p.New.Selection))
		return t
	case editor.Rejection:
		t := L.NewTable()
		t.RawSetString("error", glua.LString(p.Err.Error()))
		return t
	case editor.HistoryStatus:
		t := L.NewTable()
		t.RawSetString("undo", glua.LNumber(p.UndoDepth))
		t.RawSetString("redo", glua.LNumber(p.RedoDepth))
		return t
	case editor.RuleApplied:
		t := L.NewTable()
		t.RawSetString("rule", glua.LString(p.Rule))
		t.RawSetString("text", glua.LString(p.Text))
		return t
	}
	return h.bridge.ToLua(payload)
}
