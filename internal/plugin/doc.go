// Package plugin extends an editor with Lua scripts.
//
// A Host owns one sandboxed interpreter bound to an editor. Scripts
// require the "folio" module to contribute behaviour:
//
//	local folio = require("folio")
//
//	-- Commands receive the state and a transaction. Returning true
//	-- applies the transaction; anything else leaves the command inactive.
//	folio.command("insertArrow", function(st, tr)
//	  tr:insert("→")
//	  return true
//	end)
//
//	-- Substitution rule. Patterns use Go regexp syntax and must end at
//	-- the caret, so they normally finish with "$".
//	folio.rule{ name = "arrow", pattern = "->$", replace = "→" }
//
//	-- Rules may compute their own edit.
//	folio.rule{ name = "shout", pattern = [[!!(\w+)!!$]], handler = function(tr, m)
//	  tr:insert(string.upper(m.groups[1]), m.from, m.to)
//	  return true
//	end }
//
//	folio.bind("Mod-Shift-a", "insertArrow")
//
//	folio.on("state.changed", function(topic, ev)
//	  folio.log("debug", "changed: " .. tostring(ev.doc_changed))
//	end)
//
// Positions are document positions as used by the editor. Script
// callbacks run while the editor is applying a gesture and must not
// block; the interpreter enforces a per-call timeout.
package plugin
