package objects

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-objects/resolver"
)

// ParamOption configures a declared constructor parameter.
type ParamOption func(*ParamSpec)

// Default declares the parameter's default value, making it optional.
func Default(value any) ParamOption {
	return func(p *ParamSpec) {
		p.HasDefault = true
		p.Default = value
	}
}

// Hidden excludes the parameter from serialization and identity. Hidden
// parameters require a default.
func Hidden() ParamOption {
	return func(p *ParamSpec) {
		p.Hidden = true
	}
}

// WithResolver attaches a value resolver to the parameter.
func WithResolver(r resolver.Resolver) ParamOption {
	return func(p *ParamSpec) {
		p.Resolver = r
	}
}

// ClassOption configures a class under construction.
type ClassOption func(*classConfig) error

type classConfig struct {
	params  []ParamSpec
	extras  bool
	pkgName string
	version string
}

func (cfg *classConfig) add(spec ParamSpec) error {
	for _, existing := range cfg.params {
		if existing.Name == spec.Name {
			return fmt.Errorf("duplicate parameter %q", spec.Name)
		}
	}
	cfg.params = append(cfg.params, spec)
	return nil
}

// Param declares an ordinary constructor parameter. Declaration order is
// the serialization order.
func Param(name string, opts ...ParamOption) ClassOption {
	return func(cfg *classConfig) error {
		spec := ParamSpec{Name: name}
		for _, opt := range opts {
			opt(&spec)
		}
		return cfg.add(spec)
	}
}

// Borrowed declares a parameter whose value lives on the named carrier
// attribute instead of on the object itself.
func Borrowed(name, carrier string, opts ...ParamOption) ClassOption {
	return func(cfg *classConfig) error {
		if carrier == "" {
			return fmt.Errorf("parameter %q: empty borrow carrier", name)
		}
		spec := ParamSpec{Name: name, Carrier: carrier}
		for _, opt := range opts {
			opt(&spec)
		}
		return cfg.add(spec)
	}
}

// Extras marks the constructor as accepting an open-ended bag of
// additional named arguments. Instances must forward the bag via NewBase.
func Extras() ClassOption {
	return func(cfg *classConfig) error {
		cfg.extras = true
		return nil
	}
}

// Package overrides the declaring package name and pins the version
// recorded in class references. Without it the package name derives from
// the import path and the version from build info.
func Package(name, version string) ClassOption {
	return func(cfg *classConfig) error {
		cfg.pkgName = name
		cfg.version = version
		return nil
	}
}

// Inherit copies parameter configuration (defaults, hidden flags,
// resolvers, carriers) from P's registered class onto same-named
// parameters the child declares without its own configuration, and
// appends P's parameters the child does not declare at all. P must
// already be registered in the default registry.
func Inherit[P any]() ClassOption {
	return func(cfg *classConfig) error {
		parent, err := DefaultRegistry.ClassFor(reflect.TypeFor[P]())
		if err != nil {
			return fmt.Errorf("inherit: %w", err)
		}
		for _, pp := range parent.sig.Params {
			idx := -1
			for i, own := range cfg.params {
				if own.Name == pp.Name {
					idx = i
					break
				}
			}
			if idx < 0 {
				cfg.params = append(cfg.params, pp)
				continue
			}
			own := &cfg.params[idx]
			if !own.HasDefault && pp.HasDefault {
				own.HasDefault = true
				own.Default = pp.Default
			}
			if !own.Hidden {
				own.Hidden = pp.Hidden
			}
			if own.Resolver == nil {
				own.Resolver = pp.Resolver
			}
			if own.Carrier == "" {
				own.Carrier = pp.Carrier
			}
		}
		if parent.sig.AcceptsExtras {
			cfg.extras = true
		}
		return nil
	}
}

// NewClass builds the class descriptor for T: its declared constructor
// signature plus the constructor used to rebuild instances from stored
// documents. T must be a struct embedding Object, or a pointer to one.
// Configuration problems surface here as ConfigurationError.
func NewClass[T any](ctor func(*Args) (T, error), opts ...ClassOption) (*Class, error) {
	t := reflect.TypeFor[T]()
	ptr := t.Kind() == reflect.Pointer
	if ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &ConfigurationError{Class: t.String(), Reason: "serializable types must be structs"}
	}
	base, ok := baseFieldIndex(t)
	if !ok {
		return nil, &ConfigurationError{Class: t.Name(), Reason: "type does not embed objects.Object"}
	}
	if ctor == nil {
		return nil, &ConfigurationError{Class: t.Name(), Reason: "nil constructor"}
	}

	cfg := classConfig{}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, &ConfigurationError{Class: t.Name(), Reason: err.Error()}
		}
	}
	var hiddenBare []string
	for _, p := range cfg.params {
		if p.Hidden && !p.HasDefault {
			hiddenBare = append(hiddenBare, p.Name)
		}
	}
	if len(hiddenBare) > 0 {
		return nil, &ConfigurationError{
			Class:  t.Name(),
			Params: hiddenBare,
			Reason: "hidden parameters require a default",
		}
	}

	pkgName := cfg.pkgName
	if pkgName == "" {
		pkgName = pathHead(t.PkgPath())
	}
	return &Class{
		typ:       t,
		ptr:       ptr,
		name:      t.Name(),
		pkgPath:   t.PkgPath(),
		pkgName:   pkgName,
		version:   cfg.version,
		ctor:      func(a *Args) (any, error) { return ctor(a) },
		sig:       Signature{Params: cfg.params, AcceptsExtras: cfg.extras},
		baseIndex: base,
	}, nil
}

// MustClass is NewClass, panicking on error. Intended for package-level
// declarations.
func MustClass[T any](ctor func(*Args) (T, error), opts ...ClassOption) *Class {
	cls, err := NewClass(ctor, opts...)
	if err != nil {
		panic(err)
	}
	return cls
}

var objectType = reflect.TypeFor[Object]()

func baseFieldIndex(t reflect.Type) ([]int, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == objectType {
			return f.Index, true
		}
	}
	return nil, false
}
