package lock

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a live Provider from backend settings.
type Constructor func(Settings) (Provider, error)

// Registry maps backend names to constructors. It has two lifecycle phases:
// open, during which backends register, and sealed, after which names
// resolve to providers. Resolving before the seal or registering after it is
// a configuration error, so late-loading backends cannot be silently missed.
type Registry struct {
	mu     sync.Mutex
	ctors  map[string]Constructor
	sealed bool
}

// NewRegistry returns an open registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register records a named backend constructor. Duplicate names, empty
// names, nil constructors, and registration after Seal are all rejected.
func (r *Registry) Register(name string, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("lock: provider %q registered after the registration barrier", name)
	}
	if name == "" {
		return fmt.Errorf("lock: provider registration requires a name")
	}
	if ctor == nil {
		return fmt.Errorf("lock: provider %q registered without a constructor", name)
	}
	if _, dup := r.ctors[name]; dup {
		return fmt.Errorf("lock: provider %q already registered", name)
	}
	r.ctors[name] = ctor
	return nil
}

// Seal marks the end of the registration phase. Idempotent.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// New resolves name into a live provider. The registry must be sealed
// first; an unsealed resolve means some backend may not have loaded yet.
func (r *Registry) New(name string, settings Settings) (Provider, error) {
	r.mu.Lock()
	sealed := r.sealed
	ctor := r.ctors[name]
	r.mu.Unlock()
	if !sealed {
		return nil, fmt.Errorf("lock: provider %q resolved before the registration barrier", name)
	}
	if ctor == nil {
		return nil, fmt.Errorf("lock: unknown provider %q (registered: %v)", name, r.Names())
	}
	return ctor(settings)
}

// Names lists the registered backend names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the builtin backends, which self-register from
// their package init functions.
var DefaultRegistry = NewRegistry()

// Register adds a backend to the default registry and panics on error, the
// way database/sql drivers do: a duplicate or malformed registration is a
// programming error caught at process start.
func Register(name string, ctor Constructor) {
	if err := DefaultRegistry.Register(name, ctor); err != nil {
		panic(err)
	}
}
