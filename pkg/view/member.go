package view

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// MemberResolver lets a wrapped value answer member lookups itself, without
// reflection. ok reports whether the value supports the member at all.
type MemberResolver interface {
	ResolveMember(name string, args ...any) (value any, ok bool, err error)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// resolveMember looks name up on value: MemberResolver, exported methods
// (called with args), string-keyed map entries, then exported struct fields.
// Each step tries the name as given and its exported spelling
// ("first_name" -> "FirstName").
func resolveMember(value any, name string, args []any) (any, bool, error) {
	if value == nil || name == "" {
		return nil, false, nil
	}
	if resolver, ok := value.(MemberResolver); ok {
		return resolver.ResolveMember(name, args...)
	}

	candidates := memberNames(name)
	rv := reflect.ValueOf(value)

	for _, candidate := range candidates {
		if method := rv.MethodByName(candidate); method.IsValid() {
			out, err := callMethod(method, args)
			return out, true, err
		}
	}

	base := rv
	for base.Kind() == reflect.Pointer || base.Kind() == reflect.Interface {
		if base.IsNil() {
			return nil, false, nil
		}
		base = base.Elem()
	}

	switch base.Kind() {
	case reflect.Map:
		keyType := base.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil, false, nil
		}
		for _, candidate := range candidates {
			entry := base.MapIndex(reflect.ValueOf(candidate).Convert(keyType))
			if entry.IsValid() {
				return entry.Interface(), true, nil
			}
		}
	case reflect.Struct:
		for _, candidate := range candidates {
			field, ok := base.Type().FieldByName(candidate)
			if !ok || !field.IsExported() {
				continue
			}
			fv, err := base.FieldByIndexErr(field.Index)
			if err != nil {
				return nil, false, nil
			}
			return fv.Interface(), true, nil
		}
	}
	return nil, false, nil
}

func memberNames(name string) []string {
	exported := exportedName(name)
	if exported == name {
		return []string{name}
	}
	return []string{name, exported}
}

func exportedName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func callMethod(method reflect.Value, args []any) (any, error) {
	t := method.Type()
	if err := checkArity(t, len(args)); err != nil {
		return nil, err
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		param := paramType(t, i)
		converted, err := convertArg(arg, param)
		if err != nil {
			return nil, fmt.Errorf("view: argument %d: %w", i, err)
		}
		in[i] = converted
	}

	out := method.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if t.Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	case 2:
		if t.Out(1) != errorType {
			return nil, errors.New("view: member methods must return (value) or (value, error)")
		}
		return out[0].Interface(), asError(out[1])
	default:
		return nil, errors.New("view: member methods must return (value) or (value, error)")
	}
}

func checkArity(t reflect.Type, n int) error {
	if t.IsVariadic() {
		if n < t.NumIn()-1 {
			return fmt.Errorf("view: method expects at least %d arguments, got %d", t.NumIn()-1, n)
		}
		return nil
	}
	if n != t.NumIn() {
		return fmt.Errorf("view: method expects %d arguments, got %d", t.NumIn(), n)
	}
	return nil
}

func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(i)
}

func convertArg(arg any, param reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(param), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(param) {
		return av, nil
	}
	// int -> string conversion yields a rune, never what a template meant.
	if av.Type().ConvertibleTo(param) && !(param.Kind() == reflect.String && av.Kind() != reflect.String) {
		return av.Convert(param), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, param)
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}
