package keymap

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/folio/internal/input/key"
)

// Registry manages keymap layers and provides binding lookup.
type Registry struct {
	mu sync.RWMutex

	mac bool
	seq int

	// keymaps holds all registered keymaps by name.
	keymaps map[string]*registered

	// index maps canonical chords to bindings.
	index map[string][]indexEntry
}

type registered struct {
	*ParsedKeymap
	seq int
}

type indexEntry struct {
	Binding *ParsedBinding
	Keymap  *registered
}

// NewRegistry creates a registry resolving "Mod" for the current
// platform.
func NewRegistry() *Registry {
	return NewRegistryFor(key.Mac)
}

// NewRegistryFor creates a registry. mac selects the meaning of "Mod".
func NewRegistryFor(mac bool) *Registry {
	return &Registry{
		mac:     mac,
		keymaps: make(map[string]*registered),
		index:   make(map[string][]indexEntry),
	}
}

// Mac reports which meaning of "Mod" the registry uses.
func (r *Registry) Mac() bool {
	return r.mac
}

// Register adds a keymap to the registry.
// If a keymap with the same name already exists, it is replaced.
func (r *Registry) Register(km *Keymap) error {
	if km == nil {
		return errors.New("keymap: nil keymap")
	}

	parsed, err := km.Parse(r.mac)
	if err != nil {
		return fmt.Errorf("parsing keymap %q: %w", km.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked(km.Name)

	r.seq++
	reg := &registered{ParsedKeymap: parsed, seq: r.seq}
	r.keymaps[km.Name] = reg

	for i := range parsed.ParsedBindings {
		pb := &parsed.ParsedBindings[i]
		r.index[pb.Chord] = append(r.index[pb.Chord], indexEntry{Binding: pb, Keymap: reg})
	}

	return nil
}

// Unregister removes a keymap from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked(name)
}

// unregisterLocked removes a keymap without acquiring the lock.
// Caller must hold the write lock.
func (r *Registry) unregisterLocked(name string) {
	km, ok := r.keymaps[name]
	if !ok {
		return
	}

	for i := range km.ParsedBindings {
		chord := km.ParsedBindings[i].Chord
		entries := r.index[chord]
		filtered := entries[:0]
		for _, e := range entries {
			if e.Keymap != km {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			delete(r.index, chord)
		} else {
			r.index[chord] = filtered
		}
	}

	delete(r.keymaps, name)
}

// Get returns a keymap by name.
func (r *Registry) Get(name string) *ParsedKeymap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if km, ok := r.keymaps[name]; ok {
		return km.ParsedKeymap
	}
	return nil
}

// Lookup returns every binding for the event, highest priority first.
//
// Besides the exact chord, a shifted character matches bindings on its
// unshifted key ("Shift-Ctrl-8" for Ctrl+*), and a character reported
// with Shift matches bindings written without it ("Ctrl->").
func (r *Registry) Lookup(ev key.Event) []BindingMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]BindingMatch, 0)
	seen := make(map[*ParsedBinding]bool)
	for rank, chord := range candidates(ev) {
		for _, entry := range r.index[chord] {
			if seen[entry.Binding] {
				continue
			}
			seen[entry.Binding] = true
			matches = append(matches, BindingMatch{
				ParsedBinding: entry.Binding,
				Keymap:        entry.Keymap.Keymap,
				fallback:      rank,
				seq:           -entry.Keymap.seq,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].less(matches[j])
	})
	return matches
}

// candidates lists the chords an event answers to, most specific first.
func candidates(ev key.Event) []string {
	ev = ev.Normalize()
	out := []string{ev.Chord()}
	if !ev.IsRune() {
		return out
	}
	if base, ok := shiftedBase[ev.Rune]; ok {
		out = append(out, key.NewRuneEvent(base, ev.Modifiers|key.ModShift).Chord())
	}
	if ev.Modifiers.Has(key.ModShift) && !isLetter(ev.Rune) {
		out = append(out, key.NewRuneEvent(ev.Rune, ev.Modifiers&^key.ModShift).Chord())
	}
	return out
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// shiftedBase maps shifted characters of a US layout to their key.
var shiftedBase = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
	'_': '-', '+': '=', '{': '[', '}': ']', '|': '\\',
	':': ';', '"': '\'', '<': ',', '>': '.', '?': '/', '~': '`',
}

// Keymaps returns all registered keymaps, highest priority first.
func (r *Registry) Keymaps() []*ParsedKeymap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]*registered, 0, len(r.keymaps))
	for _, km := range r.keymaps {
		regs = append(regs, km)
	}
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].Priority != regs[j].Priority {
			return regs[i].Priority > regs[j].Priority
		}
		return regs[i].seq > regs[j].seq
	})
	result := make([]*ParsedKeymap, len(regs))
	for i, km := range regs {
		result[i] = km.ParsedKeymap
	}
	return result
}

// AllBindings returns every registered binding, highest priority first.
func (r *Registry) AllBindings() []BindingMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]BindingMatch, 0)
	for _, km := range r.keymaps {
		for i := range km.ParsedBindings {
			matches = append(matches, BindingMatch{
				ParsedBinding: &km.ParsedBindings[i],
				Keymap:        km.Keymap,
				seq:           -km.seq,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].less(matches[j])
	})

	return matches
}
