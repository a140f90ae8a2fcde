// Package lua runs editor scripts on gopher-lua.
//
// A State is a sandboxed interpreter: only the base, table, string and
// math libraries are opened, the file loading builtins are removed and
// require resolves nothing but those libraries and modules installed
// with Preload. Every call runs under a timeout enforced through the
// interpreter's context, so a runaway loop fails instead of hanging the
// editor.
//
//	st, err := lua.NewState(lua.WithTimeout(time.Second))
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//	st.Preload("folio", loader)
//	err = st.DoFile("scripts/arrows.lua")
//
// Bridge converts between Lua values and the plain Go values used for
// node and mark attributes.
package lua
