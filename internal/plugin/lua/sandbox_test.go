package lua

import (
	"strings"
	"testing"

	glua "github.com/yuin/gopher-lua"
)

func TestSandboxRemovesLoaders(t *testing.T) {
	st := newTestState(t)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "io", "os", "debug"} {
		if v := st.Global(name); v != glua.LNil {
			t.Errorf("%s should not be available, got %s", name, v.Type())
		}
	}
}

func TestSandboxRequire(t *testing.T) {
	st := newTestState(t)
	if err := st.DoString("ok", `local s = require("string"); assert(s.upper("a") == "A")`); err != nil {
		t.Errorf("builtin module: %v", err)
	}

	err := st.DoString("io", `require("io")`)
	if err == nil || !strings.Contains(err.Error(), "not available") {
		t.Errorf("expected io to be refused, got %v", err)
	}

	st.Preload("greeting", func(L *glua.LState) int {
		mod := L.NewTable()
		mod.RawSetString("word", glua.LString("hi"))
		L.Push(mod)
		return 1
	})
	if err := st.DoString("preload", `word = require("greeting").word`); err != nil {
		t.Fatal(err)
	}
	if st.Global("word") != glua.LString("hi") {
		t.Errorf("word = %v", st.Global("word"))
	}
}

func TestSandboxStdlib(t *testing.T) {
	st := newTestState(t)
	code := `
		local t = {3, 1, 2}
		table.sort(t)
		result = string.format("%d%d%d", t[1], t[2], t[3]) .. math.floor(2.7)
	`
	if err := st.DoString("stdlib", code); err != nil {
		t.Fatal(err)
	}
	if st.Global("result") != glua.LString("1232") {
		t.Errorf("result = %v", st.Global("result"))
	}
}
