// Package params provides serializable, versioned parameter
// declarations: typed values with defaults, choice constraints, and a
// version range restricting where a parameter applies.
package params

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/blang/semver/v4"

	"github.com/goliatone/go-objects"
	"github.com/goliatone/go-objects/resolver"
)

// Parameter declares a single named value: its type, documentation,
// current and default values, allowed choices, and the version range it
// applies to.
type Parameter struct {
	objects.Object

	ValueType    reflect.Type `objects:"value_type"`
	Description  string
	Value        any
	DefaultValue any `objects:"default_value"`
	Choices      []any
	Version      string

	versionRange semver.Range
}

// ParameterOption configures a Parameter under construction.
type ParameterOption func(*Parameter)

// ValueType sets the parameter's value type. Defaults to string.
func ValueType(t reflect.Type) ParameterOption {
	return func(p *Parameter) { p.ValueType = t }
}

// Description sets the human-readable description.
func Description(text string) ParameterOption {
	return func(p *Parameter) { p.Description = text }
}

// Value sets the initial value.
func Value(value any) ParameterOption {
	return func(p *Parameter) { p.Value = value }
}

// DefaultValue sets the value used when none is assigned.
func DefaultValue(value any) ParameterOption {
	return func(p *Parameter) { p.DefaultValue = value }
}

// Choices restricts assignable values to the given set.
func Choices(choices ...any) ParameterOption {
	return func(p *Parameter) { p.Choices = choices }
}

// Version restricts the parameter to a semver range, e.g. ">=1.0.0 <2.0.0".
func Version(spec string) ParameterOption {
	return func(p *Parameter) { p.Version = spec }
}

// NewParameter constructs a Parameter. An invalid version range fails
// construction; an initial value unset falls back to the default.
func NewParameter(opts ...ParameterOption) (*Parameter, error) {
	p := &Parameter{ValueType: reflect.TypeFor[string]()}
	for _, opt := range opts {
		opt(p)
	}
	if p.Value == nil {
		p.Value = p.DefaultValue
	}
	if err := p.compileRange(); err != nil {
		return nil, err
	}
	if p.Value != nil {
		if err := p.check(p.Value); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Parameter) compileRange() error {
	if p.Version == "" {
		p.versionRange = nil
		return nil
	}
	r, err := semver.ParseRange(p.Version)
	if err != nil {
		return fmt.Errorf("params: invalid version range %q: %w", p.Version, err)
	}
	p.versionRange = r
	return nil
}

func (p *Parameter) check(value any) error {
	if p.ValueType != nil && !reflect.TypeOf(value).AssignableTo(p.ValueType) {
		return fmt.Errorf("params: value %v (%T) is not assignable to %s", value, value, p.ValueType)
	}
	if len(p.Choices) > 0 {
		for _, choice := range p.Choices {
			if reflect.DeepEqual(choice, value) {
				return nil
			}
		}
		return fmt.Errorf("params: value %v is not one of %v", value, p.Choices)
	}
	return nil
}

// Set assigns a new value, enforcing the declared type and choices.
func (p *Parameter) Set(value any) error {
	if err := p.check(value); err != nil {
		return err
	}
	p.Value = value
	return nil
}

// Matches reports whether the parameter applies to the given version. A
// parameter without a version range applies everywhere.
func (p *Parameter) Matches(version string) bool {
	if p.Version == "" {
		return true
	}
	if p.versionRange == nil {
		if err := p.compileRange(); err != nil {
			return false
		}
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return false
	}
	return p.versionRange(v)
}

// Set is a serializable named collection of parameters, stored in the
// extras bag so arbitrary parameter names round-trip.
type Set struct {
	objects.Object
}

// NewSet constructs an empty parameter set.
func NewSet() *Set {
	return &Set{Object: objects.NewBase(nil)}
}

// Add stores p under name, replacing any previous parameter.
func (s *Set) Add(name string, p *Parameter) {
	s.SetExtra(name, p)
}

// Parameter returns the parameter stored under name.
func (s *Set) Parameter(name string) (*Parameter, bool) {
	raw, ok := s.Extra(name)
	if !ok {
		return nil, false
	}
	p, ok := raw.(*Parameter)
	return p, ok
}

// Value returns the current value of the named parameter.
func (s *Set) Value(name string) (any, bool) {
	p, ok := s.Parameter(name)
	if !ok {
		return nil, false
	}
	return p.Value, true
}

// SetValue assigns a new value to the named parameter.
func (s *Set) SetValue(name string, value any) error {
	p, ok := s.Parameter(name)
	if !ok {
		return fmt.Errorf("params: no parameter %q", name)
	}
	return p.Set(value)
}

// Names returns the parameter names, sorted.
func (s *Set) Names() []string {
	names := s.ExtraKeys()
	sort.Strings(names)
	return names
}

// Values returns a name-to-value snapshot of the set.
func (s *Set) Values() map[string]any {
	out := make(map[string]any)
	for _, name := range s.Names() {
		if p, ok := s.Parameter(name); ok {
			out[name] = p.Value
		}
	}
	return out
}

// FilterByVersion returns a new set holding only the parameters that
// apply to version.
func (s *Set) FilterByVersion(version string) *Set {
	out := NewSet()
	for _, name := range s.Names() {
		if p, ok := s.Parameter(name); ok && p.Matches(version) {
			out.Add(name, p)
		}
	}
	return out
}

// ToPath renders the set as a filesystem-friendly path fragment,
// name=value pairs joined by delimiter. Values render via fmt.
func (s *Set) ToPath(delimiter string, exclude ...string) string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}
	var parts []string
	for _, name := range s.Names() {
		if skip[name] {
			continue
		}
		if value, ok := s.Value(name); ok && value != nil {
			parts = append(parts, fmt.Sprintf("%s=%v", name, value))
		}
	}
	return strings.Join(parts, delimiter)
}

func init() {
	objects.MustRegister(
		func(a *objects.Args) (*Parameter, error) {
			p := &Parameter{Object: a.Base()}
			if raw, ok := a.Get("value_type"); ok {
				if t, ok := raw.(reflect.Type); ok {
					p.ValueType = t
				}
			}
			if p.ValueType == nil {
				p.ValueType = reflect.TypeFor[string]()
			}
			p.Description, _ = raw[string](a, "description")
			if v, ok := a.Get("value"); ok {
				p.Value = v
			}
			if v, ok := a.Get("default_value"); ok {
				p.DefaultValue = v
			}
			if choices, err := objects.ArgOr[[]any](a, "choices", nil); err == nil {
				p.Choices = choices
			}
			p.Version, _ = raw[string](a, "version")
			if p.Value == nil {
				p.Value = p.DefaultValue
			}
			if err := p.compileRange(); err != nil {
				return nil, err
			}
			return p, nil
		},
		objects.Param("value_type",
			objects.Default(reflect.TypeFor[string]()),
			objects.WithResolver(resolver.NewTypeRef())),
		objects.Param("description", objects.Default("")),
		objects.Param("value", objects.Default(nil)),
		objects.Param("default_value", objects.Default(nil)),
		objects.Param("choices", objects.Default(nil)),
		objects.Param("version", objects.Default("")),
	)

	objects.MustRegister(
		func(a *objects.Args) (*Set, error) {
			s := &Set{Object: a.Base()}
			return s, nil
		},
		objects.Extras(),
	)
}

func raw[T any](a *objects.Args, name string) (T, bool) {
	var zero T
	value, ok := a.Get(name)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
