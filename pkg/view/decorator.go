package view

import (
	"reflect"

	"github.com/jinzhu/inflection"
)

// DecorateOptions steer how a decorator wraps one value.
type DecorateOptions struct {
	// As forces the part class of the value.
	As *PartClass
	// EachAs forces the part class of every element of a collection.
	EachAs *PartClass
	// Extra is passed to created parts as constructor options.
	Extra map[string]any
}

// Decorator turns a named value into what templates see: usually a *Part,
// or the value itself when no rule applies.
type Decorator interface {
	Decorate(name string, value any, ctx *Context, opts DecorateOptions) (any, error)
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(name string, value any, ctx *Context, opts DecorateOptions) (any, error)

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(name string, value any, ctx *Context, opts DecorateOptions) (any, error) {
	return fn(name, value, ctx, opts)
}

// DecoratorOption configures NewDecorator.
type DecoratorOption func(*PartDecorator)

// WithPartClassFor registers the class used for values named name.
func WithPartClassFor(name string, class *PartClass) DecoratorOption {
	return func(d *PartDecorator) {
		if class != nil {
			d.classes[name] = class
		}
	}
}

// WithFallbackClass replaces the class used when nothing else matches.
func WithFallbackClass(class *PartClass) DecoratorOption {
	return func(d *PartDecorator) {
		if class != nil {
			d.fallback = class
		}
	}
}

// PartDecorator is the default rule table:
//
//   - the class comes from opts.As, else the class registered for the name,
//     else the fallback class;
//   - slices and arrays (other than []byte) become a part wrapping a []any of
//     their decorated elements, named with the singular of name and using
//     opts.EachAs when set;
//   - any other value becomes a single part.
type PartDecorator struct {
	classes  map[string]*PartClass
	fallback *PartClass
}

var defaultDecorator Decorator = NewDecorator()

// DefaultDecorator returns the decorator used when a controller type
// configures none.
func DefaultDecorator() Decorator {
	return defaultDecorator
}

// NewDecorator builds the default decorator.
func NewDecorator(options ...DecoratorOption) *PartDecorator {
	d := &PartDecorator{
		classes:  make(map[string]*PartClass),
		fallback: defaultPartClass,
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decorate implements Decorator.
func (d *PartDecorator) Decorate(name string, value any, ctx *Context, opts DecorateOptions) (any, error) {
	class := d.classFor(name, opts.As)
	extra := partOptions(opts.Extra)

	if isCollection(value) {
		items := reflect.ValueOf(value)
		elemName := Singularize(name)
		elemOpts := DecorateOptions{As: opts.EachAs, Extra: opts.Extra}

		elements := make([]any, items.Len())
		for i := range elements {
			elem := items.Index(i).Interface()
			if !Truthy(elem) {
				elements[i] = elem
				continue
			}
			decorated, err := d.Decorate(elemName, elem, ctx, elemOpts)
			if err != nil {
				return nil, err
			}
			elements[i] = decorated
		}
		return class.New(name, elements, ctx, extra...), nil
	}

	return class.New(name, value, ctx, extra...), nil
}

func (d *PartDecorator) classFor(name string, forced *PartClass) *PartClass {
	if forced != nil {
		return forced
	}
	if class, ok := d.classes[name]; ok {
		return class
	}
	return d.fallback
}

func partOptions(extra map[string]any) []PartOption {
	if len(extra) == 0 {
		return nil
	}
	opts := make([]PartOption, 0, len(extra))
	for key, value := range extra {
		opts = append(opts, WithPartOption(key, value))
	}
	return opts
}

func isCollection(value any) bool {
	if value == nil {
		return false
	}
	if _, ok := value.([]byte); ok {
		return false
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// Singularize derives the element name of a collection local ("users"
// names its elements "user", "people" names them "person").
func Singularize(name string) string {
	if singular := inflection.Singular(name); singular != "" {
		return singular
	}
	return name
}
