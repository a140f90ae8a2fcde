package plugin

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/folio/internal/editor"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/input/keymap"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/plugin/lua"
)

// ModuleName is the name scripts require.
const ModuleName = "folio"

// Script describes what a loaded script contributed. It is the payload
// of topic.ScriptLoaded.
type Script struct {
	Name     string            `json:"name"`
	Path     string            `json:"path,omitempty"`
	Commands []string          `json:"commands"`
	Rules    []string          `json:"rules"`
	Bindings map[string]string `json:"bindings"`
}

// Host runs scripts against one editor.
type Host struct {
	mu sync.Mutex
	// loadMu serializes loads so declarations reach the right script.
	loadMu sync.Mutex

	ed      *editor.Editor
	lua     *lua.State
	bridge  *lua.Bridge
	bus     event.Bus
	logger  *logging.Logger
	timeout time.Duration

	// loading is the script whose chunk is running, if any.
	loading *Script
	scripts []*Script
	subs    []event.Subscription
	closed  bool
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger used for script errors and folio.log.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithBus overrides the bus used for folio.on and load notifications.
// It defaults to the editor's bus.
func WithBus(b event.Bus) Option {
	return func(h *Host) {
		h.bus = b
	}
}

// WithTimeout bounds each script call.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

// NewHost creates a host for ed.
func NewHost(ed *editor.Editor, opts ...Option) (*Host, error) {
	h := &Host{
		ed:      ed,
		bus:     ed.Bus(),
		logger:  logging.Null(),
		timeout: lua.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.WithComponent("script")

	st, err := lua.NewState(lua.WithTimeout(h.timeout))
	if err != nil {
		return nil, err
	}
	h.lua = st
	h.bridge = lua.NewBridge(st.L)
	st.Preload(ModuleName, h.openModule)
	return h, nil
}

// LoadFile runs the script at path.
func (h *Host) LoadFile(path string) (*Script, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return h.load(&Script{Name: name, Path: path}, func() error { return h.lua.DoFile(path) })
}

// LoadString runs code as a script called name.
func (h *Host) LoadString(name, code string) (*Script, error) {
	return h.load(&Script{Name: name}, func() error { return h.lua.DoString(name, code) })
}

// LoadFiles runs each path in order and stops at the first failure.
func (h *Host) LoadFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := h.LoadFile(p); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) load(s *Script, run func() error) (*Script, error) {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHostClosed
	}
	s.Bindings = map[string]string{}
	h.loading = s
	h.mu.Unlock()

	err := run()

	h.mu.Lock()
	h.loading = nil
	if err == nil {
		h.scripts = append(h.scripts, s)
	}
	h.mu.Unlock()
	if err != nil {
		h.logger.Warn("loading %s: %v", s.Name, err)
		return nil, err
	}

	if len(s.Bindings) > 0 {
		km := keymap.UserKeymap(s.Bindings)
		km.Name = "script:" + s.Name
		km.Source = s.Path
		if km.Source == "" {
			km.Source = "script"
		}
		if err := h.ed.Keymaps().Register(km); err != nil {
			return nil, fmt.Errorf("script %s: %w", s.Name, err)
		}
	}

	h.logger.WithFields(map[string]any{
		"commands": len(s.Commands),
		"rules":    len(s.Rules),
		"bindings": len(s.Bindings),
	}).Info("loaded script %s", s.Name)
	h.publish(topic.ScriptLoaded, *s)
	return s, nil
}

// Scripts returns the scripts loaded so far.
func (h *Host) Scripts() []*Script {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Script(nil), h.scripts...)
}

// Close cancels bus subscriptions and releases the interpreter.
// Commands and rules registered by scripts become inactive.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	return h.lua.Close()
}

func (h *Host) publish(t topic.Topic, payload Script) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(context.Background(), event.NewEvent(t, payload, "plugin")); err != nil {
		h.logger.Warn("publish %s: %v", t, err)
	}
}

// current returns the script being loaded. Module functions that
// declare things are only valid while a script's main chunk runs.
func (h *Host) current(L *glua.LState) *Script {
	h.mu.Lock()
	s := h.loading
	h.mu.Unlock()
	if s == nil {
		L.RaiseError("declarations are only allowed while a script loads")
	}
	return s
}
