package plugins

import (
	"errors"
	"fmt"
	"sync"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/pkg/logger"
)

// ErrInitialize marks an advisory registration error: the plugin's
// Initialize hook failed but the registration itself completed. Callers
// should log it and may keep using the registry.
var ErrInitialize = errors.New("plugin initialize failed")

// Check validates an implementation at registration time, before the
// registry accepts it.
type Check[T Plugin] func(item T) error

// Registry is a concurrency-safe named-plugin store. List returns plugins in
// registration order. All operations appear atomic to concurrent observers.
type Registry[T Plugin] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T

	checks []Check[T]
	log    logger.Logger
}

// NewRegistry builds an empty registry. Each check runs against every
// candidate implementation during Register.
func NewRegistry[T Plugin](log logger.Logger, checks ...Check[T]) *Registry[T] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry[T]{
		items:  make(map[string]T),
		checks: checks,
		log:    log,
	}
}

// Register adds item under its name. It fails on an empty name, a duplicate
// name, or a failing registration check. A failing Initialize hook is
// advisory: the registration still completes and the error (wrapping
// ErrInitialize) is returned for the caller to log.
func (r *Registry[T]) Register(item T) error {
	name := item.Name()
	if name == "" {
		return errs.NewPlugin(name, nil, "invalid plugin: empty name")
	}
	for _, check := range r.checks {
		if err := check(item); err != nil {
			return errs.NewPlugin(name, err, "invalid plugin %q", name)
		}
	}

	r.mu.Lock()
	if _, exists := r.items[name]; exists {
		r.mu.Unlock()
		return errs.NewPlugin(name, nil, "plugin %q is already registered", name)
	}
	r.items[name] = item
	r.order = append(r.order, name)
	r.mu.Unlock()

	if err := item.Initialize(); err != nil {
		r.log.Warn("plugin initialize failed, registration kept",
			logger.String("plugin", name),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %s: %v", ErrInitialize, name, err)
	}
	return nil
}

// Unregister removes name and invokes its Shutdown hook. Removing an absent
// name is a no-op.
func (r *Registry[T]) Unregister(name string) {
	r.mu.Lock()
	item, exists := r.items[name]
	if exists {
		delete(r.items, name)
		for i, n := range r.order {
			if n == name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if exists {
		if err := item.Shutdown(); err != nil {
			r.log.Warn("plugin shutdown failed",
				logger.String("plugin", name),
				logger.Error(err),
			)
		}
	}
}

// Get returns the plugin registered under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[name]
	return item, ok
}

// List returns all plugins in registration order.
func (r *Registry[T]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.items[name])
	}
	return out
}

// Names returns registered names in registration order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered plugins.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear unregisters everything, invoking each plugin's Shutdown hook.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	removed := make([]T, 0, len(r.order))
	for _, name := range r.order {
		removed = append(removed, r.items[name])
	}
	r.items = make(map[string]T)
	r.order = nil
	r.mu.Unlock()

	for _, item := range removed {
		if err := item.Shutdown(); err != nil {
			r.log.Warn("plugin shutdown failed",
				logger.String("plugin", item.Name()),
				logger.Error(err),
			)
		}
	}
}
