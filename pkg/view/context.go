package view

import "reflect"

// Context carries the per-render helpers templates can call (title, asset
// lookups, sanitizers) together with the renderer and decorator of the render
// step currently in progress.
//
// A Context built with NewContext acts as a prototype. ForRendering clones it
// for one template or layout render; clones keep the prototype identity,
// which is what Equal compares.
type Context struct {
	proto     *Context
	helpers   map[string]any
	renderer  *Renderer
	decorator Decorator
}

var defaultContext = NewContext(nil)

// DefaultContext returns the helper-less prototype used when a controller
// type configures none.
func DefaultContext() *Context {
	return defaultContext
}

// NewContext creates a prototype context from a helper map. Helper values
// are exposed to templates under their key; funcs are called by the engine.
func NewContext(helpers map[string]any) *Context {
	ctx := &Context{helpers: copyLocals(helpers)}
	ctx.proto = ctx
	return ctx
}

// WithHelpers returns a new prototype holding the receiver's helpers
// overlaid with extra.
func (c *Context) WithHelpers(extra map[string]any) *Context {
	merged := c.Helpers()
	if merged == nil {
		merged = make(map[string]any, len(extra))
	}
	for key, value := range extra {
		merged[key] = value
	}
	return NewContext(merged)
}

// ForRendering returns a clone bound to renderer and decorator.
func (c *Context) ForRendering(renderer *Renderer, decorator Decorator) *Context {
	if c == nil {
		c = defaultContext
	}
	clone := *c
	clone.renderer = renderer
	clone.decorator = decorator
	return &clone
}

// Renderer returns the bound renderer, or nil outside a render.
func (c *Context) Renderer() *Renderer {
	if c == nil {
		return nil
	}
	return c.renderer
}

// Decorator returns the bound decorator, or nil outside a render.
func (c *Context) Decorator() Decorator {
	if c == nil {
		return nil
	}
	return c.decorator
}

// Helper looks up a single helper.
func (c *Context) Helper(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, ok := c.helpers[name]
	return value, ok
}

// Helpers returns a copy of the helper map.
func (c *Context) Helpers() map[string]any {
	if c == nil {
		return nil
	}
	return copyLocals(c.helpers)
}

// Equal reports whether both contexts derive from the same prototype and are
// bound to equivalent renderers and the same decorator.
func (c *Context) Equal(other *Context) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.proto != other.proto {
		return false
	}
	return c.renderer.Equal(other.renderer) && sameDecorator(c.decorator, other.decorator)
}

func sameDecorator(a, b Decorator) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

func copyLocals(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
