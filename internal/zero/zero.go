// Package zero reports whether values are nil or equal to their type's zero value.
package zero

import "reflect"

// IsNil reports whether v is an untyped nil or a nil pointer, map, slice,
// channel, function or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}

// IsZero reports whether v is nil or equal to the zero value of its dynamic type.
func IsZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}

// Of reports whether v equals the zero value of V. It works for
// non-comparable types and for interface type parameters.
func Of[V any](v V) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
