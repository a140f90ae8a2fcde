package editor

import (
	"fmt"

	"github.com/dshills/folio/internal/input/keymap"
	"github.com/dshills/folio/internal/inputrules"
)

// Settings are the options a running editor can change. Schema,
// platform and heading levels are fixed at construction.
type Settings struct {
	MaxUndoEntries int
	InputRules     bool
	MaxLookback    int
	DisabledRules  []string
	EnabledRules   []string
	UserBindings   map[string]string
	ReadOnly       bool
}

// Settings returns the current settings.
func (e *Editor) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Settings{
		MaxUndoEntries: e.history.MaxEntries(),
		InputRules:     e.rulesEnabled,
		MaxLookback:    e.rules.MaxLookback(),
		DisabledRules:  append([]string(nil), e.disabledRules...),
		EnabledRules:   append([]string(nil), e.enabledRules...),
		UserBindings:   copyBindings(e.userBindings),
		ReadOnly:       e.readOnly,
	}
}

// Reconfigure applies s to the running editor. The undo stack is trimmed
// to the new depth, rules registered by scripts stay registered and the
// user keymap is replaced. Nothing changes when the bindings are invalid.
func (e *Editor) Reconfigure(s Settings) error {
	var user *keymap.Keymap
	if len(s.UserBindings) > 0 {
		user = keymap.UserKeymap(s.UserBindings)
		if err := user.Validate(); err != nil {
			return fmt.Errorf("editor: user bindings: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if user != nil {
		if err := e.keymaps.Register(user); err != nil {
			return fmt.Errorf("editor: user bindings: %w", err)
		}
	} else {
		e.keymaps.Unregister(keymap.UserKeymapName)
	}
	e.userBindings = copyBindings(s.UserBindings)

	e.maxUndoEntries = s.MaxUndoEntries
	e.history.SetMaxEntries(s.MaxUndoEntries)

	e.rulesEnabled = s.InputRules
	e.maxLookback = s.MaxLookback
	e.disabledRules = append([]string(nil), s.DisabledRules...)
	e.enabledRules = append([]string(nil), s.EnabledRules...)
	e.rules.Configure(e.ruleOptions()...)

	e.readOnly = s.ReadOnly
	e.logger.WithFields(map[string]any{
		"undo":     e.history.MaxEntries(),
		"rules":    len(e.rules.Rules()),
		"bindings": len(s.UserBindings),
	}).Info("settings changed")
	return nil
}

func (e *Editor) ruleOptions() []inputrules.Option {
	opts := []inputrules.Option{inputrules.WithMaxLookback(e.maxLookback)}
	if len(e.disabledRules) > 0 {
		opts = append(opts, inputrules.WithDisabled(e.disabledRules...))
	}
	if len(e.enabledRules) > 0 {
		opts = append(opts, inputrules.WithEnabled(e.enabledRules...))
	}
	return opts
}

func copyBindings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
