// Package resolver provides pluggable value transformers for arguments
// whose runtime type is not part of the primitive document model (bool,
// numbers, strings, sequences, string-keyed mappings, nil). A resolver
// encodes such a value into a primitive wire shape and decodes it back.
//
// Resolvers never see nil: the encoder passes nil through untouched.
package resolver

import (
	"fmt"
	"reflect"
)

// Type identifies the primitive wire shape a resolver produces on encode
// and expects on decode.
type Type int

const (
	// TypeString is a scalar string node.
	TypeString Type = iota
	// TypeBool is a scalar boolean node.
	TypeBool
	// TypeInt is a scalar integer node.
	TypeInt
	// TypeFloat is a scalar floating-point node.
	TypeFloat
	// TypeList is a sequence node.
	TypeList
	// TypeMap is a string-keyed mapping node.
	TypeMap
)

// String returns the wire-shape name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Matches reports whether a stored document value has this wire shape.
// Decoders use it to decide whether a stored node should pass through a
// parameter's resolver or is already in its decoded form.
func (t Type) Matches(value any) bool {
	if value == nil {
		return false
	}
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBool:
		_, ok := value.(bool)
		return ok
	case TypeInt:
		switch reflect.ValueOf(value).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return true
		}
		return false
	case TypeFloat:
		switch value.(type) {
		case float32, float64:
			return true
		}
		return false
	case TypeList:
		k := reflect.ValueOf(value).Kind()
		return k == reflect.Slice || k == reflect.Array
	case TypeMap:
		return reflect.ValueOf(value).Kind() == reflect.Map
	}
	return false
}

// Context carries per-call state into Encode and Decode. Root is the
// directory of the document when it is written to or read from a file,
// empty otherwise.
type Context struct {
	Root string
}

// Resolver translates a runtime value to and from its primitive wire
// shape. Encode output must be representable in the document model;
// Decode receives the stored node and reconstructs the runtime value.
type Resolver interface {
	Encode(ctx Context, value any) (any, error)
	Decode(ctx Context, value any) (any, error)
	EncodedType() Type
}
