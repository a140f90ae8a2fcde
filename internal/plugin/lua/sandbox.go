package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// removedGlobals load code from disk or strings and would bypass require.
var removedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "module"}

// builtinModules may always be required.
var builtinModules = []string{lua.TabLibName, lua.StringLibName, lua.MathLibName}

const allowedKey = "__folio_allowed"

// installSandbox strips the file loaders and replaces require with one
// that only resolves allowed names.
func installSandbox(L *lua.LState) {
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	allowed := L.NewTable()
	for _, name := range builtinModules {
		allowed.RawSetString(name, lua.LTrue)
	}
	L.SetField(L.Get(lua.RegistryIndex), allowedKey, allowed)

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	require := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !moduleAllowed(L, name) {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(require)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

func allowModule(L *lua.LState, name string) {
	if allowed, ok := L.GetField(L.Get(lua.RegistryIndex), allowedKey).(*lua.LTable); ok {
		allowed.RawSetString(name, lua.LTrue)
	}
}

func moduleAllowed(L *lua.LState, name string) bool {
	allowed, ok := L.GetField(L.Get(lua.RegistryIndex), allowedKey).(*lua.LTable)
	return ok && allowed.RawGetString(name) == lua.LTrue
}
