package gate

import (
	"context"
	"sync"
	"time"
)

// Registry keeps one value per view instance, so each admin tab talking to
// the gateway gets its own gate. Entries idle longer than the expiry are
// swept unless busy reports they still hold an open request.
type Registry[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	create  func(viewID string) V
	busy    func(V) bool
	idle    time.Duration
	now     func() time.Time
}

type entry[V any] struct {
	value   V
	touched time.Time
}

func NewRegistry[V any](idle time.Duration, create func(viewID string) V, busy func(V) bool) *Registry[V] {
	return &Registry[V]{
		entries: make(map[string]*entry[V]),
		create:  create,
		busy:    busy,
		idle:    idle,
		now:     time.Now,
	}
}

// Get returns the view's value, creating it on first use.
func (r *Registry[V]) Get(viewID string) V {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[viewID]
	if !ok {
		e = &entry[V]{value: r.create(viewID)}
		r.entries[viewID] = e
	}
	e.touched = r.now()
	return e.value
}

// Lookup returns the view's value only if it already exists. Unlike Get it
// never creates one, so unknown ids cost nothing.
func (r *Registry[V]) Lookup(viewID string) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[viewID]
	if !ok {
		var zero V
		return zero, false
	}
	e.touched = r.now()
	return e.value, true
}

func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops idle entries and returns how many were removed.
func (r *Registry[V]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idle)
	removed := 0
	for id, e := range r.entries {
		if e.touched.After(cutoff) {
			continue
		}
		if r.busy != nil && r.busy(e.value) {
			continue
		}
		delete(r.entries, id)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry[V]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
