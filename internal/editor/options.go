package editor

import (
	"time"

	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/input/keymap"
	"github.com/dshills/folio/internal/inputrules"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/model"
)

// Default configuration values.
const (
	DefaultHeadingLevels = 6
	DefaultMaxLookback   = 500
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithSchema sets the schema. It is implied by WithDoc.
func WithSchema(s *model.Schema) Option {
	return func(e *Editor) {
		e.schema = s
	}
}

// WithDoc sets the initial document.
func WithDoc(doc *model.Node) Option {
	return func(e *Editor) {
		e.initDoc = doc
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBus publishes notifications on b.
func WithBus(b event.Bus) Option {
	return func(e *Editor) {
		e.bus = b
	}
}

// WithMaxUndoEntries caps the undo depth.
func WithMaxUndoEntries(max int) Option {
	return func(e *Editor) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithNewGroupDelay starts a new undo step after a pause in typing.
func WithNewGroupDelay(d time.Duration) Option {
	return func(e *Editor) {
		e.newGroupDelay = d
	}
}

// WithHeadingLevels bounds the heading commands, rules and shortcuts.
func WithHeadingLevels(n int) Option {
	return func(e *Editor) {
		if n > 0 && n <= 6 {
			e.headingLevels = n
		}
	}
}

// WithMaxLookback bounds the text input rules can see.
func WithMaxLookback(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxLookback = n
		}
	}
}

// WithInputRules disables input rules entirely when enabled is false.
func WithInputRules(enabled bool) Option {
	return func(e *Editor) {
		e.rulesEnabled = enabled
	}
}

// WithDisabledRules turns off the named input rules.
func WithDisabledRules(names ...string) Option {
	return func(e *Editor) {
		e.disabledRules = append(e.disabledRules, names...)
	}
}

// WithEnabledRules keeps only the named input rules.
func WithEnabledRules(names ...string) Option {
	return func(e *Editor) {
		e.enabledRules = append(e.enabledRules, names...)
	}
}

// WithRules appends rules after the built-in set.
func WithRules(rules ...*inputrules.Rule) Option {
	return func(e *Editor) {
		e.extraRules = append(e.extraRules, rules...)
	}
}

// WithUserBindings adds a chord to command layer above the defaults.
func WithUserBindings(bindings map[string]string) Option {
	return func(e *Editor) {
		e.userBindings = bindings
	}
}

// WithKeymaps registers additional keymap layers.
func WithKeymaps(kms ...*keymap.Keymap) Option {
	return func(e *Editor) {
		e.extraKeymaps = append(e.extraKeymaps, kms...)
	}
}

// WithMac selects what "Mod" means in bindings.
func WithMac(mac bool) Option {
	return func(e *Editor) {
		e.mac = &mac
	}
}

// WithReadOnly rejects every document change. Selection changes are
// still applied.
func WithReadOnly() Option {
	return func(e *Editor) {
		e.readOnly = true
	}
}
