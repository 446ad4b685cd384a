// Package objects makes Go values reversibly serializable: an instance
// encodes into a plain YAML-friendly document carrying enough identity
// for an equivalent instance to be rebuilt later, even against a drifted
// constructor signature.
//
// A serializable type embeds Object, declares its constructor parameters
// through NewClass or Register, and round-trips through ToDocument /
// FromDocument (or the YAML convenience wrappers). Per-parameter
// resolvers from the resolver subpackage handle values without a natural
// wire shape.
package objects

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/goliatone/go-objects/internal/reflectutil"
	"github.com/goliatone/go-objects/resolver"
)

// Object is the embeddable base for serializable types. It records
// provenance (whether the instance was rebuilt from a document) and
// carries the extras bag for classes accepting open-ended arguments.
type Object struct {
	loaded bool
	extras *extrasBag
}

type extrasBag struct {
	keys   []string
	values map[string]any
}

func newExtrasBag() *extrasBag {
	return &extrasBag{values: make(map[string]any)}
}

func (b *extrasBag) set(key string, value any) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = value
}

// NewBase builds the embedded base for an instance of a class accepting
// extras, forwarding the constructor's additional named arguments. Keys
// are recorded sorted so downstream encoding is deterministic.
func NewBase(extras map[string]any) Object {
	bag := newExtrasBag()
	keys := make([]string, 0, len(extras))
	for key := range extras {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		bag.set(key, extras[key])
	}
	return Object{extras: bag}
}

// IsLoadedFromDict reports whether this instance was rebuilt from a
// stored document rather than constructed directly.
func (o *Object) IsLoadedFromDict() bool {
	return o.loaded
}

// SetExtra stores an additional named argument on the instance.
func (o *Object) SetExtra(key string, value any) {
	if o.extras == nil {
		o.extras = newExtrasBag()
	}
	o.extras.set(key, value)
}

// Extra returns the extra stored under key.
func (o *Object) Extra(key string) (any, bool) {
	if o.extras == nil {
		return nil, false
	}
	value, ok := o.extras.values[key]
	return value, ok
}

// ExtraKeys returns the extra keys in insertion order.
func (o *Object) ExtraKeys() []string {
	if o.extras == nil {
		return nil
	}
	out := make([]string, len(o.extras.keys))
	copy(out, o.extras.keys)
	return out
}

// Extras returns a shallow copy of the extras bag.
func (o *Object) Extras() map[string]any {
	if o.extras == nil {
		return nil
	}
	out := make(map[string]any, len(o.extras.values))
	for key, value := range o.extras.values {
		out[key] = value
	}
	return out
}

func (o *Object) hasBase() bool {
	return o.extras != nil
}

// Args carries the named argument values a constructor receives when an
// instance is rebuilt from a document.
type Args struct {
	base   Object
	values map[string]any
	order  []string
}

// Base returns the embedded Object the constructor must install on the
// instance it builds. It carries provenance and any extra arguments.
func (a *Args) Base() Object {
	return a.base
}

// Has reports whether an argument named name was supplied.
func (a *Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Get returns the raw argument value for name.
func (a *Args) Get(name string) (any, bool) {
	value, ok := a.values[name]
	return value, ok
}

// Names returns the supplied argument names in signature order.
func (a *Args) Names() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Arg returns the argument named name converted to T.
func Arg[T any](a *Args, name string) (T, error) {
	var zero T
	value, ok := a.values[name]
	if !ok {
		return zero, fmt.Errorf("objects: no argument %q", name)
	}
	target := reflect.New(reflect.TypeFor[T]()).Elem()
	if err := reflectutil.Assign(target, value); err != nil {
		return zero, fmt.Errorf("objects: argument %q: %w", name, err)
	}
	return target.Interface().(T), nil
}

// ArgOr returns the argument named name converted to T, or fallback when
// it was not supplied.
func ArgOr[T any](a *Args, name string, fallback T) (T, error) {
	if !a.Has(name) {
		return fallback, nil
	}
	return Arg[T](a, name)
}

// ArgSlice returns the argument named name as a []T, converting element
// by element.
func ArgSlice[T any](a *Args, name string) ([]T, error) {
	return Arg[[]T](a, name)
}

// Arguments harvests the non-hidden constructor arguments off a live
// instance, in declaration order, with borrowed parameters read from
// their carriers. The instance's type must be registered.
func Arguments(v any, opts ...Option) (*Dict, error) {
	cfg := newConfig(opts)
	cls, err := cfg.registry.ClassOf(v)
	if err != nil {
		return nil, err
	}
	args, _, err := cls.harvest(v)
	return args, err
}

// HiddenArguments returns the hidden parameters and their declared
// defaults, in declaration order.
func HiddenArguments(v any, opts ...Option) (*Dict, error) {
	cfg := newConfig(opts)
	cls, err := cfg.registry.ClassOf(v)
	if err != nil {
		return nil, err
	}
	_, hidden, err := cls.harvest(v)
	return hidden, err
}

// BorrowedArguments returns the parameter-to-carrier mapping declared
// for v's class.
func BorrowedArguments(v any, opts ...Option) (map[string]string, error) {
	cfg := newConfig(opts)
	cls, err := cfg.registry.ClassOf(v)
	if err != nil {
		return nil, err
	}
	return cls.Borrowed(), nil
}

// Resolvers returns the per-parameter resolvers declared for v's class.
func Resolvers(v any, opts ...Option) (map[string]resolver.Resolver, error) {
	cfg := newConfig(opts)
	cls, err := cfg.registry.ClassOf(v)
	if err != nil {
		return nil, err
	}
	return cls.Resolvers(), nil
}
