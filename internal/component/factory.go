package component

import (
	"fmt"
	"sync"

	"github.com/jgcri/cassandra-go/internal/registry"
)

// Instance pairs a component's Base with the Runner that will execute as its
// body. A Constructor returns one of these per section, having already
// declared whatever static capabilities the type always provides, during
// its own construction phase.
type Instance struct {
	*Base
	Runner Runner
}

// Finalizer is the optional second half of two-phase capability
// declaration: a Runner that needs to inspect its finalized parameters
// before the component starts implements this to fold params into its own
// state, declare parameter-derived capabilities, and validate. A Runner
// with nothing to finalize simply doesn't implement it.
type Finalizer interface {
	Finalize(b *Base, params Params) error
}

// Constructor builds one instance of a component type tag, given the
// instance's fully disambiguated name and the registry it will declare
// capabilities into.
type Constructor func(name string, reg *registry.Registry) (*Instance, error)

// Factory is a closed type-tag -> Constructor mapping, standing in for
// dynamically evaluating the section name as a constructor call: unknown
// tags are a ConfigError, not a runtime lookup into the language's
// namespace.
type Factory struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewFactory returns an empty factory. Callers register every component
// type tag a deployment should recognize before bootstrap runs.
func NewFactory() *Factory {
	return &Factory{ctors: make(map[string]Constructor)}
}

// Register associates typeTag with ctor. Re-registering the same tag
// overwrites the previous constructor, which is convenient for tests that
// want to stub out one type without rebuilding the whole factory.
func (f *Factory) Register(typeTag string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[typeTag] = ctor
}

// Create instantiates typeTag under instance name, or fails with
// ErrConfigInvalid if typeTag was never registered.
func (f *Factory) Create(typeTag, name string, reg *registry.Registry) (*Instance, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[typeTag]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown component type %q", ErrConfigInvalid, typeTag)
	}
	return ctor(name, reg)
}
