package view

import "reflect"

// Truthy reports whether v is eligible for decoration. Only nil (including
// typed nil pointers, maps, slices, funcs, channels and interfaces) and the
// boolean false are falsy; empty strings and zero numbers are truthy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	case reflect.Bool:
		return rv.Bool()
	}
	return true
}
