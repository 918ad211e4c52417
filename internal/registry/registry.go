package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateCapability is returned by Register when a capability name has
// already been claimed by another handle.
var ErrDuplicateCapability = errors.New("DUPLICATE_CAPABILITY")

// Handle identifies whatever owns a capability: a local component runtime or
// the Remote Access Broker standing in for a remote producer. The registry
// itself doesn't care which; it is opaque storage.
type Handle interface{}

// Registry is the process-local capability directory. It is safe for
// concurrent Register calls during bootstrap (shared maps are always guarded
// by a mutex here, even on paths that happen to run single-threaded today)
// and lock-free for Lookup after Freeze.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Handle
	frozen bool
}

// New returns an empty, unfrozen registry.
func New() *Registry {
	return &Registry{byName: make(map[string]Handle)}
}

// Register claims name for handle. It fails with ErrDuplicateCapability if
// name is already registered, and panics if called after Freeze — that would
// be a bootstrap ordering bug, not a runtime condition callers should handle.
func (r *Registry) Register(name string, handle Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		panic("registry: Register called after Freeze")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCapability, name)
	}
	r.byName[name] = handle
	return nil
}

// Freeze seals the registry. After Freeze, Lookup never takes a lock: the
// map is logically immutable for the remainder of the process (I5).
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup returns the handle owning name, or ok=false if nothing has claimed
// it.
func (r *Registry) Lookup(name string) (Handle, bool) {
	if r.frozen {
		h, ok := r.byName[name]
		return h, ok
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byName[name]
	return h, ok
}

// Names returns every registered capability name. Used by the RAB bootstrap
// to publish this process's capability set to its peers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
