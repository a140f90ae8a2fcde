package commands

import (
	"sort"
	"sync"

	"github.com/dshills/folio/internal/state"
)

// Command computes a transaction for st, or returns nil when it does not
// apply.
type Command func(st *state.State) *state.Transaction

// Chain returns a command that tries cmds in order and returns the first
// transaction produced.
func Chain(cmds ...Command) Command {
	return func(st *state.State) *state.Transaction {
		for _, cmd := range cmds {
			if tr := cmd(st); tr != nil {
				return tr
			}
		}
		return nil
	}
}

// Registry maps action names to commands. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register binds name to cmd, replacing any earlier command.
func (r *Registry) Register(name string, cmd Command) {
	if name == "" || cmd == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = cmd
}

// RegisterAll registers every entry of cmds.
func (r *Registry) RegisterAll(cmds map[string]Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, cmd := range cmds {
		if name != "" && cmd != nil {
			r.commands[name] = cmd
		}
	}
}

// Unregister removes name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get returns the command bound to name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
