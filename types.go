package objects

import (
	"reflect"
	"sort"
	"sync"

	"github.com/goliatone/go-objects/resolver"
)

// ParamSpec describes a single declared constructor parameter.
type ParamSpec struct {
	// Name is the parameter name used in documents and for field lookup.
	Name string
	// HasDefault distinguishes an explicit default from none; only
	// defaulted parameters may be hidden, and only they are recoverable
	// when absent from a stored document.
	HasDefault bool
	// Default is the declared default value.
	Default any
	// Hidden excludes the parameter from serialization and identity; it
	// always rebuilds from Default unless overridden at decode time.
	Hidden bool
	// Carrier names the attribute the parameter's value is borrowed
	// from; empty for ordinary parameters.
	Carrier string
	// Resolver transforms the parameter's value to and from its wire
	// shape; nil for parameters using default encoding.
	Resolver resolver.Resolver
}

// Signature is the ordered parameter list declared for a class
// constructor.
type Signature struct {
	// Params are the declared parameters in declaration order.
	Params []ParamSpec
	// AcceptsExtras marks a constructor taking an open-ended bag of
	// additional named arguments.
	AcceptsExtras bool
}

// Param returns the descriptor for name.
func (s Signature) Param(name string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Names returns the parameter names in declaration order.
func (s Signature) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// Required returns the names of parameters without a default, sorted.
func (s Signature) Required() []string {
	var names []string
	for _, p := range s.Params {
		if !p.HasDefault {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Class is a registered serializable type: its reflected shape, declared
// constructor signature, package identity, and constructor.
type Class struct {
	typ       reflect.Type // underlying struct type
	ptr       bool         // instances are pointers to typ
	name      string
	pkgPath   string
	pkgName   string
	version   string
	ctor      func(*Args) (any, error)
	sig       Signature
	baseIndex []int // index path of the embedded Object field

	fieldsOnce sync.Once
	fieldErr   error
	fields     map[string][]int // param name -> own field index path
}

// Name returns the type name.
func (c *Class) Name() string {
	return c.name
}

// PkgPath returns the import path of the declaring package.
func (c *Class) PkgPath() string {
	return c.pkgPath
}

// Key returns the registry lookup key, pkgpath.Type.
func (c *Class) Key() string {
	return c.pkgPath + "." + c.name
}

// Version returns the explicitly registered package version, if any.
func (c *Class) Version() string {
	return c.version
}

// Signature returns the declared constructor signature.
func (c *Class) Signature() Signature {
	return c.sig
}

// Resolvers returns the declared per-parameter resolvers.
func (c *Class) Resolvers() map[string]resolver.Resolver {
	out := make(map[string]resolver.Resolver)
	for _, p := range c.sig.Params {
		if p.Resolver != nil {
			out[p.Name] = p.Resolver
		}
	}
	return out
}

// Borrowed returns the parameter-to-carrier mapping.
func (c *Class) Borrowed() map[string]string {
	out := make(map[string]string)
	for _, p := range c.sig.Params {
		if p.Carrier != "" {
			out[p.Name] = p.Carrier
		}
	}
	return out
}

func (c *Class) resolverFor(name string) resolver.Resolver {
	p, ok := c.sig.Param(name)
	if !ok {
		return nil
	}
	return p.Resolver
}

// instance unwraps v to the underlying struct value for this class.
func (c *Class) instance(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Type() != c.typ {
		return reflect.Value{}, false
	}
	return rv, true
}
