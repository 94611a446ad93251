package view

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-view/pkg/render/template"
)

// Part wraps one value for a render. Declared attributes are decorated on
// first access and memoised; anything else resolves against the wrapped
// value. A Part is local to one render and is not safe for concurrent use.
type Part struct {
	class     *PartClass
	name      string
	value     any
	context   *Context
	options   map[string]any
	decorated map[string]any
}

var (
	_ template.MemberAccessor  = (*Part)(nil)
	_ template.PartialRenderer = (*Part)(nil)
)

// PartOption configures NewPart and Part.New.
type PartOption func(*partConfig)

type partConfig struct {
	class    *PartClass
	name     string
	value    any
	hasName  bool
	hasValue bool
	options  map[string]any
}

// WithPartClass picks the class of the new part.
func WithPartClass(class *PartClass) PartOption {
	return func(cfg *partConfig) {
		if class != nil {
			cfg.class = class
		}
	}
}

// WithPartName overrides the name when re-wrapping with Part.New.
func WithPartName(name string) PartOption {
	return func(cfg *partConfig) {
		cfg.name = name
		cfg.hasName = true
	}
}

// WithPartValue overrides the value when re-wrapping with Part.New.
func WithPartValue(value any) PartOption {
	return func(cfg *partConfig) {
		cfg.value = value
		cfg.hasValue = true
	}
}

// WithPartOption stores an extra constructor option, read back with
// Part.Option.
func WithPartOption(key string, value any) PartOption {
	return func(cfg *partConfig) {
		if cfg.options == nil {
			cfg.options = make(map[string]any)
		}
		cfg.options[key] = value
	}
}

// NewPart wraps value under name for a render bound to ctx.
func NewPart(name string, value any, ctx *Context, opts ...PartOption) *Part {
	cfg := partConfig{class: defaultPartClass, name: name, value: value}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Part{
		class:   cfg.class,
		name:    cfg.name,
		value:   cfg.value,
		context: ctx,
		options: cfg.options,
	}
}

// Name returns the local name the part was created for.
func (p *Part) Name() string { return p.name }

// Value returns the wrapped value.
func (p *Part) Value() any { return p.value }

// Context returns the render context the part belongs to.
func (p *Part) Context() *Context { return p.context }

// Class returns the part class.
func (p *Part) Class() *PartClass { return p.class }

// Option returns an extra constructor option.
func (p *Part) Option(key string) (any, bool) {
	value, ok := p.options[key]
	return value, ok
}

// Get resolves member, in order: class methods, decorated attributes
// (decorated once, then served from cache), members of the wrapped value
// (called with args when they are methods), and the convenience names
// "context", "render" and "value". Anything else is an
// *UnsupportedMemberError.
func (p *Part) Get(member string, args ...any) (any, error) {
	if fn, ok := p.class.method(member); ok {
		return fn(p, args...)
	}
	if opts, ok := p.class.Decorated(member); ok {
		return p.resolveDecorated(member, opts)
	}
	if value, ok, err := resolveMember(p.value, member, args); ok || err != nil {
		return value, err
	}

	switch member {
	case "context":
		return p.context, nil
	case "value":
		return p.value, nil
	case "render":
		if len(args) == 0 {
			return nil, fmt.Errorf("view: part %q: render needs a partial name", p.name)
		}
		partial, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("view: part %q: partial name must be a string, got %T", p.name, args[0])
		}
		return p.Render(partial, args[1:]...)
	}

	return nil, p.unsupported(member)
}

// Render renders partial with this part injected as a local, under its own
// name unless the "as" argument (or As option) says otherwise. Remaining
// arguments follow the scope render conventions.
func (p *Part) Render(partial string, args ...any) (string, error) {
	opts, err := parseRenderArgs(args)
	if err != nil {
		return "", err
	}
	renderer := p.context.Renderer()
	if renderer == nil {
		return "", fmt.Errorf("view: part %q render %q: %w", p.name, partial, ErrMissingRenderer)
	}

	alias := opts.as
	if alias == "" {
		alias = p.name
	}
	locals := copyLocals(opts.locals)
	if locals == nil {
		locals = make(map[string]any, 1)
	}
	locals[alias] = p

	return renderer.Partial(partial, NewScope(locals, p.context), opts.block)
}

// New re-wraps into another part sharing this part's context. Name and value
// carry over unless overridden; the class defaults to the receiver's.
func (p *Part) New(opts ...PartOption) *Part {
	base := []PartOption{WithPartClass(p.class)}
	for key, value := range p.options {
		base = append(base, WithPartOption(key, value))
	}
	return NewPart(p.name, p.value, p.context, append(base, opts...)...)
}

// String renders the wrapped value's textual form.
func (p *Part) String() string {
	if p.value == nil {
		return ""
	}
	return fmt.Sprint(p.value)
}

// Equal compares name, value and context only. Class and the decoration
// cache do not take part.
func (p *Part) Equal(other *Part) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.name == other.name &&
		equalValues(p.value, other.value) &&
		p.context.Equal(other.context)
}

// equalValues compares wrapped values, treating nested parts (the elements
// of a collection part) by Part.Equal so their decoration caches are ignored.
func equalValues(a, b any) bool {
	switch x := a.(type) {
	case *Part:
		y, ok := b.(*Part)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalValues(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for key, value := range x {
			other, found := y[key]
			if !found || !equalValues(value, other) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func (p *Part) resolveDecorated(member string, opts DecorateOptions) (any, error) {
	if value, ok := p.decorated[member]; ok {
		return value, nil
	}

	raw, found, err := resolveMember(p.value, member, nil)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, p.unsupported(member)
	}

	result := raw
	if Truthy(raw) {
		decorator := p.context.Decorator()
		if decorator == nil {
			return nil, fmt.Errorf("view: part %q decorate %q: %w", p.name, member, ErrMissingDecorator)
		}
		result, err = decorator.Decorate(member, raw, p.context, opts)
		if err != nil {
			return nil, err
		}
	}

	if p.decorated == nil {
		p.decorated = make(map[string]any)
	}
	p.decorated[member] = result
	return result, nil
}

func (p *Part) unsupported(member string) error {
	return &UnsupportedMemberError{Member: member, Part: p.name, Value: p.value}
}
