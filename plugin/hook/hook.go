// Package hook provides the named extension points that plugins attach to.
//
// Two kinds of hooks exist:
//   - Filters transform a payload; each registered filter receives the
//     previous filter's output and may replace it entirely.
//   - Actions are side-effect only; their return values are ignored.
//
// Firing a name nobody registered is a pass-through, not an error.
package hook

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// FilterFunc transforms a payload. Returning a different value replaces
// the payload for subsequent filters and for the caller.
type FilterFunc func(ctx context.Context, payload any) (any, error)

// ActionFunc runs a side effect for a fired action hook.
type ActionFunc func(ctx context.Context, payload any) error

type filterEntry struct {
	priority int
	seq      int
	fn       FilterFunc
}

type actionEntry struct {
	priority int
	seq      int
	fn       ActionFunc
}

// Registry holds hook registrations and dispatches fires to them.
type Registry struct {
	mu      sync.RWMutex
	seq     int
	filters map[string][]filterEntry
	actions map[string][]actionEntry
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{
		filters: make(map[string][]filterEntry),
		actions: make(map[string][]actionEntry),
	}
}

// RegisterFilter attaches a filter to a named hook. Filters run in
// ascending priority order; ties run in registration order.
func (r *Registry) RegisterFilter(name string, priority int, fn FilterFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entries := append(r.filters[name], filterEntry{priority: priority, seq: r.seq, fn: fn})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	r.filters[name] = entries
}

// RegisterAction attaches an action to a named hook.
func (r *Registry) RegisterAction(name string, priority int, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entries := append(r.actions[name], actionEntry{priority: priority, seq: r.seq, fn: fn})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	r.actions[name] = entries
}

// FireFilter runs the filters registered for name over payload and
// returns the final payload. The first error aborts the chain.
func (r *Registry) FireFilter(ctx context.Context, name string, payload any) (any, error) {
	r.mu.RLock()
	entries := r.filters[name]
	r.mu.RUnlock()

	var err error
	for _, entry := range entries {
		payload, err = entry.fn(ctx, payload)
		if err != nil {
			return nil, errors.Wrapf(err, "filter hook %q", name)
		}
	}
	return payload, nil
}

// FireAction runs the actions registered for name. The first error aborts
// the chain and propagates; action return values are otherwise ignored.
func (r *Registry) FireAction(ctx context.Context, name string, payload any) error {
	r.mu.RLock()
	entries := r.actions[name]
	r.mu.RUnlock()

	for _, entry := range entries {
		if err := entry.fn(ctx, payload); err != nil {
			return errors.Wrapf(err, "action hook %q", name)
		}
	}
	return nil
}
