package lua

import (
	"reflect"
	"testing"

	glua "github.com/yuin/gopher-lua"
)

func TestToGo(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	b := NewBridge(L)

	arr := L.NewTable()
	arr.Append(glua.LString("a"))
	arr.Append(glua.LNumber(2))
	obj := L.NewTable()
	obj.RawSetString("level", glua.LNumber(2))
	obj.RawSetString("ratio", glua.LNumber(0.5))
	obj.RawSetString("tags", arr)
	cyclic := L.NewTable()
	cyclic.RawSetString("self", cyclic)

	tests := []struct {
		name string
		in   glua.LValue
		want any
	}{
		{"nil", glua.LNil, nil},
		{"bool", glua.LTrue, true},
		{"int", glua.LNumber(42), 42},
		{"float", glua.LNumber(3.5), 3.5},
		{"string", glua.LString("x"), "x"},
		{"array", arr, []any{"a", 2}},
		{"map", obj, map[string]any{"level": 2, "ratio": 0.5, "tags": []any{"a", 2}}},
		{"cycle", cyclic, map[string]any{"self": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.ToGo(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToGo() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestToLua(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	b := NewBridge(L)

	type payload struct {
		Name    string `json:"name"`
		Count   int
		Skipped string `json:"-"`
		hidden  bool
	}
	tbl, ok := b.ToLua(&payload{Name: "n", Count: 3, Skipped: "s"}).(*glua.LTable)
	if !ok {
		t.Fatal("struct pointer should convert to a table")
	}
	if tbl.RawGetString("name") != glua.LString("n") || tbl.RawGetString("Count") != glua.LNumber(3) {
		t.Errorf("unexpected table fields")
	}
	if tbl.RawGetString("Skipped") != glua.LNil || tbl.RawGetString("hidden") != glua.LNil {
		t.Error("skipped and unexported fields should be absent")
	}

	type attrs map[string]any
	m, ok := b.ToLua(attrs{"level": 2}).(*glua.LTable)
	if !ok || m.RawGetString("level") != glua.LNumber(2) {
		t.Errorf("named map type not converted")
	}

	list := b.ToLua([]string{"a", "b"}).(*glua.LTable)
	if list.Len() != 2 || list.RawGetInt(2) != glua.LString("b") {
		t.Error("string slice not converted")
	}

	if _, ok := b.ToLua(make(chan int)).(*glua.LUserData); !ok {
		t.Error("channels should become userdata")
	}
}

func TestToLuaCycles(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	b := NewBridge(L)

	type node struct {
		Name     string
		Parent   *node
		Children []*node
		Index    map[string]*node
	}
	root := &node{Name: "root", Index: map[string]*node{}}
	child := &node{Name: "child", Parent: root}
	root.Children = []*node{child}
	root.Index["child"] = child
	child.Index = root.Index

	tbl, ok := b.ToLua(root).(*glua.LTable)
	if !ok {
		t.Fatal("cyclic struct should convert to a table")
	}
	kids := tbl.RawGetString("Children").(*glua.LTable)
	first := kids.RawGetInt(1).(*glua.LTable)
	if first.RawGetString("Parent") != tbl {
		t.Error("back pointer should reuse the root table")
	}
	if tbl.RawGetString("Index").(*glua.LTable).RawGetString("child") != first {
		t.Error("shared pointer should convert once")
	}

	type chain struct{ Next any }
	var deep any = "end"
	for i := 0; i < MaxDepth*2; i++ {
		deep = chain{Next: deep}
	}
	cur := b.ToLua(deep)
	for i := 0; ; i++ {
		t2, ok := cur.(*glua.LTable)
		if !ok {
			if _, ud := cur.(*glua.LUserData); !ud || i > MaxDepth {
				t.Errorf("depth %d: got %T, want userdata within MaxDepth", i, cur)
			}
			break
		}
		cur = t2.RawGetString("Next")
	}
}

func TestFieldHelpers(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	b := NewBridge(L)
	if err := L.DoString(`t = {name = "x", on = true, fn = function() end}`); err != nil {
		t.Fatal(err)
	}
	tbl := L.GetGlobal("t").(*glua.LTable)
	if s, ok := b.String(tbl, "name"); !ok || s != "x" {
		t.Error("String")
	}
	if v, ok := b.Bool(tbl, "on"); !ok || !v {
		t.Error("Bool")
	}
	if _, ok := b.Func(tbl, "fn"); !ok {
		t.Error("Func")
	}
	if _, ok := b.String(tbl, "missing"); ok {
		t.Error("missing field reported present")
	}
}
