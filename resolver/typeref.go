package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
)

var (
	// ErrConflictingTypeName indicates an attempt to re-register a type
	// under a different name, or a name under a different type.
	ErrConflictingTypeName = errors.New("resolver: conflicting type name registration")
)

// typeTable is the process-wide bidirectional type<->name mapping backing
// the TypeRef resolver.
type typeTable struct {
	mu     sync.RWMutex
	byType map[reflect.Type]string
	byName map[string]reflect.Type
}

var types = &typeTable{
	byType: make(map[reflect.Type]string),
	byName: make(map[string]reflect.Type),
}

func init() {
	for name, t := range map[string]reflect.Type{
		"string":    reflect.TypeFor[string](),
		"bool":      reflect.TypeFor[bool](),
		"int":       reflect.TypeFor[int](),
		"int64":     reflect.TypeFor[int64](),
		"float64":   reflect.TypeFor[float64](),
		"time.Time": reflect.TypeFor[time.Time](),
	} {
		if err := RegisterTypeName(t, name); err != nil {
			panic(err)
		}
	}
}

// RegisterTypeName associates t with a stable name used when a type
// reference is serialized. Registration is idempotent for the same pair
// and rejects conflicting pairs.
func RegisterTypeName(t reflect.Type, name string) error {
	if t == nil {
		return fmt.Errorf("resolver: nil reflect.Type provided")
	}
	if name == "" {
		return fmt.Errorf("resolver: empty type name provided")
	}
	types.mu.Lock()
	defer types.mu.Unlock()
	if existing, ok := types.byType[t]; ok && existing != name {
		return fmt.Errorf("%w: %s already named %q", ErrConflictingTypeName, t, existing)
	}
	if existing, ok := types.byName[name]; ok && existing != t {
		return fmt.Errorf("%w: %q already names %s", ErrConflictingTypeName, name, existing)
	}
	types.byType[t] = name
	types.byName[name] = t
	return nil
}

// TypeRef encodes a reflect.Type as its registered name and resolves the
// name back to the type on decode.
type TypeRef struct{}

// NewTypeRef constructs a type-reference resolver.
func NewTypeRef() TypeRef {
	return TypeRef{}
}

// Encode converts a reflect.Type into its registered name.
func (TypeRef) Encode(_ Context, value any) (any, error) {
	t, ok := value.(reflect.Type)
	if !ok {
		return nil, fmt.Errorf("resolver: type reference must be a reflect.Type, got %T", value)
	}
	types.mu.RLock()
	name, ok := types.byType[t]
	types.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("resolver: type %s has no registered name; call RegisterTypeName", t)
	}
	return name, nil
}

// Decode resolves a stored name back to its reflect.Type.
func (TypeRef) Decode(_ Context, value any) (any, error) {
	name, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("resolver: type reference must be a string, got %T", value)
	}
	types.mu.RLock()
	t, ok := types.byName[name]
	types.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("resolver: no type registered under name %q", name)
	}
	return t, nil
}

// EncodedType reports the string wire shape.
func (TypeRef) EncodedType() Type {
	return TypeString
}
