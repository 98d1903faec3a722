package methods

import (
	"sort"
	"sync"

	"github.com/YuminosukeSato/regbench/pkg/errors"
)

// Factory builds a new plugin value. Each Lookup calls it afresh so that
// callers may mutate the returned grid and estimator.
type Factory func() *Plugin

// Registry maps estimator names to plugin factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Registering a name twice is an error.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return errors.NewValidationError("name", "must not be empty", name)
	}
	if factory == nil {
		return errors.NewValidationError("factory", "must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return errors.Newf("estimator %q is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister is Register that panics on error, for static initialization.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup builds the plugin registered under name. An unknown name returns
// an error wrapping errors.ErrUnknownEstimator.
func (r *Registry) Lookup(name string) (*Plugin, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownEstimator, "%q (available: %v)", name, r.Names())
	}

	p := factory()
	if p == nil || p.New == nil {
		return nil, errors.Newf("estimator %q: factory returned no estimator constructor", name)
	}
	return p, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry holding the built-in estimators.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.MustRegister("linear", Linear)
		defaultRegistry.MustRegister("ridge", Ridge)
		defaultRegistry.MustRegister("lasso", Lasso)
		defaultRegistry.MustRegister("tree", Tree)
		defaultRegistry.MustRegister("genetic", Genetic)
	})
	return defaultRegistry
}
