package plugin

import (
	"context"
	"fmt"
	"regexp"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/folio/internal/commands"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/inputrules"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/plugin/lua"
	"github.com/dshills/folio/internal/state"
)

func (h *Host) openModule(L *glua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]glua.LGFunction{
		"command":  h.luaCommand,
		"rule":     h.luaRule,
		"bind":     h.luaBind,
		"on":       h.luaOn,
		"log":      h.luaLog,
		"commands": h.luaCommandNames,
	})
	L.Push(mod)
	return 1
}

// folio.command(name, fn)
func (h *Host) luaCommand(L *glua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	s := h.current(L)
	h.ed.Commands().Register(name, h.command(name, fn))
	s.Commands = append(s.Commands, name)
	return 0
}

// command adapts fn to a command. The Lua function runs against a fresh
// transaction; a truthy result makes the command active.
func (h *Host) command(name string, fn *glua.LFunction) commands.Command {
	return func(st *state.State) *state.Transaction {
		tr := st.Tr()
		var active bool
		err := h.lua.Run(name, func(L *glua.LState) error {
			ret, err := lua.CallFunction(L, fn, h.stateTable(L, st), h.trTable(L, tr))
			if err != nil {
				return err
			}
			active = len(ret) > 0 && glua.LVAsBool(ret[0])
			return nil
		})
		if err != nil {
			h.logger.Warn("command %s: %v", name, err)
			return nil
		}
		if !active {
			return nil
		}
		return tr
	}
}

// folio.rule{name=, pattern=, replace= | handler=, undoable=, in_code=}
func (h *Host) luaRule(L *glua.LState) int {
	spec := L.CheckTable(1)
	s := h.current(L)
	rule, err := h.rule(spec)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}
	h.ed.InputRules().Register(rule)
	s.Rules = append(s.Rules, rule.Name)
	return 0
}

func (h *Host) rule(spec *glua.LTable) (*inputrules.Rule, error) {
	name, _ := h.bridge.String(spec, "name")
	pattern, _ := h.bridge.String(spec, "pattern")
	if name == "" || pattern == "" {
		return nil, errorf(ErrInvalidRule, "name and pattern are required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errorf(ErrInvalidRule, "%s: %v", name, err)
	}

	var rule *inputrules.Rule
	if replace, ok := h.bridge.String(spec, "replace"); ok {
		rule = inputrules.StringRule(name, pattern, replace)
	} else if fn, ok := h.bridge.Func(spec, "handler"); ok {
		rule = &inputrules.Rule{
			Name:     name,
			Pattern:  re,
			Undoable: true,
			Handler:  h.ruleHandler(name, re.NumSubexp(), fn),
		}
	} else {
		return nil, errorf(ErrInvalidRule, "%s: needs replace or handler", name)
	}
	if v, ok := h.bridge.Bool(spec, "undoable"); ok {
		rule.Undoable = v
	}
	if v, ok := h.bridge.Bool(spec, "in_code"); ok {
		rule.InCode = v
	}
	return rule, nil
}

func (h *Host) ruleHandler(name string, groups int, fn *glua.LFunction) inputrules.Handler {
	return func(tr *state.Transaction, m *inputrules.Match) bool {
		var ok bool
		err := h.lua.Run(name, func(L *glua.LState) error {
			match := L.NewTable()
			match.RawSetString("from", glua.LNumber(m.From))
			match.RawSetString("to", glua.LNumber(m.To))
			match.RawSetString("text", glua.LString(m.Group(0)))
			list := L.CreateTable(groups, 0)
			for i := 1; i <= groups; i++ {
				list.RawSetInt(i, glua.LString(m.Group(i)))
			}
			match.RawSetString("groups", list)
			ret, err := lua.CallFunction(L, fn, h.trTable(L, tr), match)
			if err != nil {
				return err
			}
			ok = len(ret) > 0 && glua.LVAsBool(ret[0])
			return nil
		})
		if err != nil {
			h.logger.Warn("input rule %s: %v", name, err)
			return false
		}
		return ok
	}
}

// folio.bind(keys, command)
func (h *Host) luaBind(L *glua.LState) int {
	keys := L.CheckString(1)
	cmd := L.CheckString(2)
	h.current(L).Bindings[keys] = cmd
	return 0
}

// folio.on(pattern, fn). fn receives the topic and a table form of the
// payload.
func (h *Host) luaOn(L *glua.LState) int {
	pattern := topic.Topic(L.CheckString(1))
	fn := L.CheckFunction(2)
	h.current(L)
	if !topic.Known(pattern) {
		L.ArgError(1, fmt.Sprintf("no topic matches %q", pattern))
		return 0
	}
	if h.bus == nil {
		L.RaiseError("no event bus is configured")
		return 0
	}
	sub, err := h.bus.Subscribe(pattern, event.HandlerFunc(func(_ context.Context, ev any) error {
		env := event.ToEnvelope(ev)
		return h.lua.Run(string(env.Topic), func(L *glua.LState) error {
			_, err := lua.CallFunction(L, fn, glua.LString(env.Topic), h.payloadTable(L, env.Payload))
			return err
		})
	}))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()
	return 0
}

// folio.log(level, message)
func (h *Host) luaLog(L *glua.LState) int {
	level := logging.ParseLevel(L.CheckString(1))
	msg := L.CheckString(2)
	switch level {
	case logging.LevelDebug:
		h.logger.Debug("%s", msg)
	case logging.LevelWarn:
		h.logger.Warn("%s", msg)
	case logging.LevelError:
		h.logger.Error("%s", msg)
	default:
		h.logger.Info("%s", msg)
	}
	return 0
}

// folio.commands() lists registered command names.
func (h *Host) luaCommandNames(L *glua.LState) int {
	L.Push(h.bridge.ToLua(h.ed.Commands().Names()))
	return 1
}
