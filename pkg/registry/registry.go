// Package registry tracks open connection handles and force-closes the
// ones that stay open too long.
package registry

import (
	"slices"
	"sync"
	"time"
)

// Entry is an open connection as seen by the registry.
type Entry interface {
	ID() string
	OpenedAt() time.Time
	// OpenStack is the call stack captured when the connection was opened.
	OpenStack() string
	Close() error
}

// Registry maps connection identifiers to open entries. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds e. Returns false, leaving the registry unchanged, if the
// identifier is already present.
func (r *Registry) Register(e Entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[e.ID()]; exists {
		return false
	}
	r.entries[e.ID()] = e
	return true
}

// Remove deletes id. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns the registered entries ordered by open time. The
// registry lock is not held while callers work through the result, so
// entries may close concurrently.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b Entry) int {
		return a.OpenedAt().Compare(b.OpenedAt())
	})
	return out
}
