// Package notification tracks the notification type identifiers known to
// the instance. The set is dynamic: plugins register additional types at
// runtime, so consumers re-read the catalog on every use instead of
// snapshotting it.
package notification

import (
	"context"
	"sort"
	"sync"
)

// Default notification types shipped with the forum.
var defaultTypes = []string{
	"notificationType_upvote",
	"notificationType_new-topic",
	"notificationType_new-reply",
	"notificationType_follow",
	"notificationType_chat",
	"notificationType_group-invite",
	"notificationType_new-register",
	"notificationType_post-queue",
	"notificationType_new-post-flag",
	"notificationType_new-user-flag",
}

// Registry is the catalog of notification type identifiers.
type Registry struct {
	mu    sync.RWMutex
	types map[string]struct{}
}

// NewRegistry creates a registry seeded with the built-in types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]struct{}, len(defaultTypes))}
	for _, t := range defaultTypes {
		r.types[t] = struct{}{}
	}
	return r
}

// Register adds a notification type. Registering an existing type is a no-op.
func (r *Registry) Register(name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	r.types[name] = struct{}{}
	r.mu.Unlock()
}

// Unregister removes a notification type.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.types, name)
	r.mu.Unlock()
}

// ListTypes returns the current notification type identifiers, sorted.
func (r *Registry) ListTypes(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]string, 0, len(r.types))
	for t := range r.types {
		list = append(list, t)
	}
	sort.Strings(list)
	return list, nil
}
