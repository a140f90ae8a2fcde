package event

import (
	"sort"
	"sync"

	"github.com/dshills/folio/internal/event/topic"
)

// Registry holds subscriptions and matches them against topics.
// Matching is a linear scan; folio has few subscribers.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*subscription
	seq  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]*subscription)}
}

// Add registers sub.
func (r *Registry) Add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	sub.seq = r.seq
	r.subs[sub.id] = sub
}

// Remove unregisters the subscription with id. It reports whether the id
// was registered.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[id]; !ok {
		return false
	}
	delete(r.subs, id)
	return true
}

// Match returns the subscriptions whose pattern matches t, ordered by
// priority and then by registration order.
func (r *Registry) Match(t topic.Topic) []*subscription {
	r.mu.RLock()
	var out []*subscription
	for _, sub := range r.subs {
		if !sub.isCancelled() && t.Matches(sub.pattern) {
			out = append(out, sub)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].priority() != out[j].priority() {
			return out[i].priority() < out[j].priority()
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Count returns the number of live subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, sub := range r.subs {
		if !sub.isCancelled() {
			n++
		}
	}
	return n
}

// Prune drops cancelled subscriptions and returns how many were removed.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, sub := range r.subs {
		if sub.isCancelled() {
			delete(r.subs, id)
			n++
		}
	}
	return n
}

// Clear removes every subscription.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		sub.Cancel()
	}
	r.subs = make(map[string]*subscription)
}
