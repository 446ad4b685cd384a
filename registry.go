package objects

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry maps Go types and class-path keys to their class descriptors.
// A class must be registered before instances encode or documents naming
// it decode. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Class
	byKey  map[string]*Class
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*Class),
		byKey:  make(map[string]*Class),
	}
}

// DefaultRegistry is the registry used when a call does not supply its
// own via WithRegistry.
var DefaultRegistry = NewRegistry()

// Add registers cls. Re-adding the same descriptor is a no-op;
// registering a different class under an occupied type or key fails.
func (r *Registry) Add(cls *Class) error {
	if cls == nil {
		return fmt.Errorf("objects: nil class")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byType[cls.typ]; ok && existing != cls {
		return fmt.Errorf("objects: type %s already registered", cls.typ)
	}
	if existing, ok := r.byKey[cls.Key()]; ok && existing != cls {
		return fmt.Errorf("objects: class key %q already registered", cls.Key())
	}
	r.byType[cls.typ] = cls
	r.byKey[cls.Key()] = cls
	return nil
}

// ClassFor returns the class registered for t, dereferencing a pointer
// type first.
func (r *Registry) ClassFor(t reflect.Type) (*Class, error) {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.RLock()
	cls, ok := r.byType[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("objects: type %s not registered", t)
	}
	return cls, nil
}

// ClassOf returns the class registered for v's dynamic type.
func (r *Registry) ClassOf(v any) (*Class, error) {
	if v == nil {
		return nil, fmt.Errorf("objects: nil value")
	}
	return r.ClassFor(reflect.TypeOf(v))
}

// ClassByKey returns the class registered under a pkgpath.Type key.
func (r *Registry) ClassByKey(key string) (*Class, bool) {
	r.mu.RLock()
	cls, ok := r.byKey[key]
	r.mu.RUnlock()
	return cls, ok
}

// Keys returns all registered class keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.byKey))
	for key := range r.byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Register builds the class for T and adds it to the default registry.
func Register[T any](ctor func(*Args) (T, error), opts ...ClassOption) (*Class, error) {
	cls, err := NewClass(ctor, opts...)
	if err != nil {
		return nil, err
	}
	if err := DefaultRegistry.Add(cls); err != nil {
		return nil, err
	}
	return cls, nil
}

// MustRegister is Register, panicking on error.
func MustRegister[T any](ctor func(*Args) (T, error), opts ...ClassOption) *Class {
	cls, err := Register(ctor, opts...)
	if err != nil {
		panic(err)
	}
	return cls
}
