// Package reflectutil contains the reflection helpers shared by the
// harvesting and decoding layers: parameter-name to struct-field matching,
// borrowed-value access through carrier attributes, and loose value
// assignment for document primitives.
package reflectutil

import (
	"fmt"
	"reflect"
	"strings"
)

// Tag is the struct tag consulted when matching parameter names to fields.
const Tag = "objects"

// Fold canonicalizes a parameter or field name for matching: lower case
// with underscores removed, so that "sampling_rate" matches "SamplingRate".
func Fold(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// Deref unwraps pointers and interfaces until a concrete value remains.
// The second result is false when the chain ends in nil.
func Deref(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

// FieldIndex locates the exported field of t bound to the parameter name.
// An explicit `objects:"<name>"` tag wins; otherwise the folded field name
// must equal the folded parameter name.
func FieldIndex(t reflect.Type, name string) ([]int, bool) {
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	folded := Fold(name)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag, ok := field.Tag.Lookup(Tag); ok {
			if tagName, _, _ := strings.Cut(tag, ","); tagName == name {
				return field.Index, true
			}
			continue
		}
		if field.Anonymous {
			continue
		}
		if Fold(field.Name) == folded {
			return field.Index, true
		}
	}
	return nil, false
}

// Borrow reads the value bound to name inside a carrier value. The carrier
// may be a struct (field lookup via FieldIndex) or a string-keyed map.
func Borrow(carrier reflect.Value, name string) (any, bool) {
	carrier, ok := Deref(carrier)
	if !ok {
		return nil, false
	}
	switch carrier.Kind() {
	case reflect.Struct:
		index, ok := FieldIndex(carrier.Type(), name)
		if !ok {
			return nil, false
		}
		return carrier.FieldByIndex(index).Interface(), true
	case reflect.Map:
		if carrier.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		item := carrier.MapIndex(reflect.ValueOf(name).Convert(carrier.Type().Key()))
		if !item.IsValid() {
			return nil, false
		}
		return item.Interface(), true
	}
	return nil, false
}

// Assign stores value into dst, converting document primitives to the
// destination type where the conversion is lossless in spirit: numeric
// widening, named-type conversion, and element-wise assignment into
// slices and arrays.
func Assign(dst reflect.Value, value any) error {
	if !dst.CanSet() {
		return fmt.Errorf("reflectutil: destination is not settable")
	}
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	switch dst.Kind() {
	case reflect.Pointer:
		elem := reflect.New(dst.Type().Elem())
		if err := Assign(elem.Elem(), value); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case reflect.Slice:
		items, ok := asList(src)
		if !ok {
			break
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if err := Assign(out.Index(i), item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		items, ok := asList(src)
		if !ok {
			break
		}
		if len(items) != dst.Len() {
			return fmt.Errorf("reflectutil: expected %d elements, got %d", dst.Len(), len(items))
		}
		for i, item := range items {
			if err := Assign(dst.Index(i), item); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	case reflect.Map:
		if src.Kind() != reflect.Map {
			break
		}
		out := reflect.MakeMapWithSize(dst.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			key := reflect.New(dst.Type().Key()).Elem()
			if err := Assign(key, iter.Key().Interface()); err != nil {
				return err
			}
			item := reflect.New(dst.Type().Elem()).Elem()
			if err := Assign(item, iter.Value().Interface()); err != nil {
				return err
			}
			out.SetMapIndex(key, item)
		}
		dst.Set(out)
		return nil
	}
	if src.Type().ConvertibleTo(dst.Type()) && convertible(src.Kind(), dst.Kind()) {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("reflectutil: cannot assign %T to %s", value, dst.Type())
}

func asList(v reflect.Value) ([]any, bool) {
	v, ok := Deref(v)
	if !ok {
		return nil, false
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, v.Len())
	for i := range items {
		items[i] = v.Index(i).Interface()
	}
	return items, true
}

func convertible(src, dst reflect.Kind) bool {
	return (isNumeric(src) && isNumeric(dst)) || (src == reflect.String && dst == reflect.String)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
