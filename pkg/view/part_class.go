package view

import "sort"

// PartMethod is a method defined on a PartClass. It takes precedence over
// every other member resolution step.
type PartMethod func(p *Part, args ...any) (any, error)

// PartClass describes a kind of part: which attributes of the wrapped value
// are decorated on access, and which extra methods the part offers. Classes
// are declared up front and treated as read-only once renders start.
type PartClass struct {
	name      string
	decorated map[string]DecorateOptions
	methods   map[string]PartMethod
}

var defaultPartClass = NewPartClass("part")

// DefaultPartClass returns the plain class used when no rule picks another.
func DefaultPartClass() *PartClass {
	return defaultPartClass
}

// NewPartClass declares an empty part class.
func NewPartClass(name string) *PartClass {
	return &PartClass{
		name:      name,
		decorated: make(map[string]DecorateOptions),
		methods:   make(map[string]PartMethod),
	}
}

// Name returns the class name.
func (c *PartClass) Name() string {
	if c == nil {
		return defaultPartClass.name
	}
	return c.name
}

// Decorate declares attributes routed through the decorator on access.
func (c *PartClass) Decorate(names ...string) *PartClass {
	return c.DecorateWith(DecorateOptions{}, names...)
}

// DecorateWith declares decorated attributes sharing opts.
func (c *PartClass) DecorateWith(opts DecorateOptions, names ...string) *PartClass {
	for _, name := range names {
		c.decorated[name] = opts
	}
	return c
}

// Method defines a class method. fn receives the part it is called on.
func (c *PartClass) Method(name string, fn PartMethod) *PartClass {
	if fn != nil {
		c.methods[name] = fn
	}
	return c
}

// Extend declares a subclass holding a snapshot of the receiver's
// decorated attributes and methods.
func (c *PartClass) Extend(name string) *PartClass {
	sub := NewPartClass(name)
	if c == nil {
		return sub
	}
	for attr, opts := range c.decorated {
		sub.decorated[attr] = opts
	}
	for method, fn := range c.methods {
		sub.methods[method] = fn
	}
	return sub
}

// Decorated reports the options of a declared decorated attribute.
func (c *PartClass) Decorated(name string) (DecorateOptions, bool) {
	if c == nil {
		return DecorateOptions{}, false
	}
	opts, ok := c.decorated[name]
	return opts, ok
}

// DecoratedAttributes returns the declared attribute names, sorted.
func (c *PartClass) DecoratedAttributes() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.decorated))
	for name := range c.decorated {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *PartClass) method(name string) (PartMethod, bool) {
	if c == nil {
		return nil, false
	}
	fn, ok := c.methods[name]
	return fn, ok
}

// New wraps value in a part of this class.
func (c *PartClass) New(name string, value any, ctx *Context, opts ...PartOption) *Part {
	return NewPart(name, value, ctx, append([]PartOption{WithPartClass(c)}, opts...)...)
}
