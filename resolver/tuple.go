package resolver

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-objects/internal/reflectutil"
)

// Tuple encodes a fixed-size value of type T (an array, or a slice used
// as one) as a sequence node and rebuilds T on decode.
type Tuple[T any] struct{}

// NewTuple constructs a tuple resolver for T.
func NewTuple[T any]() Tuple[T] {
	return Tuple[T]{}
}

// Encode converts the value into a plain sequence.
func (Tuple[T]) Encode(_ Context, value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Array && rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("resolver: tuple value must be an array or slice, got %T", value)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// Decode rebuilds a T from a stored sequence.
func (Tuple[T]) Decode(_ Context, value any) (any, error) {
	target := reflect.New(reflect.TypeFor[T]()).Elem()
	if err := reflectutil.Assign(target, value); err != nil {
		return nil, fmt.Errorf("resolver: decode tuple: %w", err)
	}
	return target.Interface(), nil
}

// EncodedType reports the sequence wire shape.
func (Tuple[T]) EncodedType() Type {
	return TypeList
}
