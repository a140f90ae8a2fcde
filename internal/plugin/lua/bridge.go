package lua

import (
	"math"
	"reflect"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts values between Lua and Go.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a bridge for L.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGo converts lv. Integral numbers become int, sequences become
// []any and other tables become map[string]any. Functions convert to
// nil and cyclic references are cut.
func (b *Bridge) ToGo(lv lua.LValue) any {
	return b.toGo(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGo(lv lua.LValue, seen map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if seen[v] {
			return nil
		}
		seen[v] = true
		defer delete(seen, v)
		return b.tableToGo(v, seen)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func (b *Bridge) tableToGo(t *lua.LTable, seen map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })
	if n > 0 && n == count {
		out := make([]any, n)
		for i := 1; i <= n; i++ {
			out[i-1] = b.toGo(t.RawGetInt(i), seen)
		}
		return out
	}
	out := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		out[k.String()] = b.toGo(v, seen)
	})
	return out
}

// ToMap converts a table to a map, or returns nil when lv is not a
// table.
func (b *Bridge) ToMap(lv lua.LValue) map[string]any {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil
	}
	out := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		out[k.String()] = b.ToGo(v)
	})
	return out
}

// MaxDepth bounds how far ToLua descends into nested Go values. Deeper
// values become userdata.
const MaxDepth = 16

// ref identifies a pointer or map already converted by one ToLua call.
type ref struct {
	t reflect.Type
	p uintptr
}

// ToLua converts v. Structs become tables keyed by their json tag or
// field name; values with no Lua form become userdata. A pointer or map
// reached twice converts to the same table, so cyclic graphs terminate.
func (b *Bridge) ToLua(v any) lua.LValue {
	return b.toLua(v, make(map[ref]lua.LValue), 0)
}

func (b *Bridge) toLua(v any, seen map[ref]lua.LValue, depth int) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []string:
		t := b.L.CreateTable(len(val), 0)
		for i, s := range val {
			t.RawSetInt(i+1, lua.LString(s))
		}
		return t
	}
	return b.reflectToLua(reflect.ValueOf(v), v, seen, depth)
}

func (b *Bridge) reflectToLua(rv reflect.Value, orig any, seen map[ref]lua.LValue, depth int) lua.LValue {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	}
	if depth >= MaxDepth {
		return b.userData(orig)
	}
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return lua.LNil
		}
		key := ref{rv.Type(), rv.Pointer()}
		if lv, ok := seen[key]; ok {
			return lv
		}
		if rv.Elem().Kind() == reflect.Struct {
			t := b.L.NewTable()
			seen[key] = t
			b.fillStruct(t, rv.Elem(), seen, depth+1)
			return t
		}
		lv := b.toLua(rv.Elem().Interface(), seen, depth+1)
		seen[key] = lv
		return lv
	case reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return b.toLua(rv.Elem().Interface(), seen, depth+1)
	case reflect.Slice, reflect.Array:
		t := b.L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, b.toLua(rv.Index(i).Interface(), seen, depth+1))
		}
		return t
	case reflect.Map:
		if rv.IsNil() {
			return lua.LNil
		}
		key := ref{rv.Type(), rv.Pointer()}
		if lv, ok := seen[key]; ok {
			return lv
		}
		t := b.L.NewTable()
		seen[key] = t
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			t.RawSet(b.toLua(k.Interface(), seen, depth+1), b.toLua(rv.MapIndex(k).Interface(), seen, depth+1))
		}
		return t
	case reflect.Struct:
		t := b.L.NewTable()
		b.fillStruct(t, rv, seen, depth+1)
		return t
	}
	return b.userData(orig)
}

func (b *Bridge) fillStruct(t *lua.LTable, rv reflect.Value, seen map[ref]lua.LValue, depth int) {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}
		t.RawSetString(name, b.toLua(rv.Field(i).Interface(), seen, depth))
	}
}

func (b *Bridge) userData(v any) *lua.LUserData {
	ud := b.L.NewUserData()
	ud.Value = v
	return ud
}

// String returns the string field key of t.
func (b *Bridge) String(t *lua.LTable, key string) (string, bool) {
	s, ok := t.RawGetString(key).(lua.LString)
	return string(s), ok
}

// Bool returns the boolean field key of t.
func (b *Bridge) Bool(t *lua.LTable, key string) (bool, bool) {
	v, ok := t.RawGetString(key).(lua.LBool)
	return bool(v), ok
}

// Func returns the function field key of t.
func (b *Bridge) Func(t *lua.LTable, key string) (*lua.LFunction, bool) {
	fn, ok := t.RawGetString(key).(*lua.LFunction)
	return fn, ok
}
