package view

import (
	"context"
	"fmt"
	"path"
	"sync"
	"sync/atomic"
)

// ControllerType declares a view: its settings, its exposures and the
// renderers built for it. Types form a single-inheritance chain through
// Extend. Settings a type leaves unset resolve through its parent when
// read; exposures are copied at Extend time.
//
// Declare types up front. Once controllers render concurrently, only the
// renderer cache changes.
type ControllerType struct {
	name       string
	parent     *ControllerType
	settings   settings
	exposures  *Exposures
	generation atomic.Uint64
	renderers  sync.Map // format -> cachedRenderer
}

// cachedRenderer records the settings version a renderer was built from.
type cachedRenderer struct {
	renderer *Renderer
	version  uint64
}

// NewControllerType declares a root controller type.
func NewControllerType(name string, options ...Option) *ControllerType {
	t := &ControllerType{name: name, exposures: NewExposures()}
	return t.Configure(options...)
}

// Extend declares a subtype. It inherits every setting it does not
// override and starts with a copy of the receiver's exposures.
func (t *ControllerType) Extend(name string, options ...Option) *ControllerType {
	child := &ControllerType{
		name:      name,
		parent:    t,
		exposures: t.exposures.Clone(),
	}
	return child.Configure(options...)
}

// Name returns the type name.
func (t *ControllerType) Name() string { return t.name }

// Parent returns the type this one extends, or nil.
func (t *ControllerType) Parent() *ControllerType { return t.parent }

// Configure applies options and drops cached renderers. Renderers cached by
// subtypes go stale too and are rebuilt on their next use.
func (t *ControllerType) Configure(options ...Option) *ControllerType {
	for _, opt := range options {
		if opt != nil {
			opt(&t.settings)
		}
	}
	t.generation.Add(1)
	t.renderers.Clear()
	return t
}

// version changes whenever the type or one of its ancestors is configured.
func (t *ControllerType) version() uint64 {
	var v uint64
	for cur := t; cur != nil; cur = cur.parent {
		v += cur.generation.Load()
	}
	return v
}

// Settings resolves the effective configuration.
func (t *ControllerType) Settings() Settings {
	return resolveSettings(t)
}

// Expose declares a local computed by fn. A nil fn passes the input value
// of the same name through.
func (t *ControllerType) Expose(name string, fn ExposureFunc, options ...ExposureOption) *ControllerType {
	t.exposures.Add(name, fn, options...)
	return t
}

// ExposeInput declares pass-through locals for names.
func (t *ControllerType) ExposeInput(names ...string) *ControllerType {
	for _, name := range names {
		t.exposures.Add(name, nil)
	}
	return t
}

// PrivateExpose declares an exposure other exposures can read but
// templates never see.
func (t *ControllerType) PrivateExpose(name string, fn ExposureFunc, options ...ExposureOption) *ControllerType {
	return t.Expose(name, fn, append(options, Private())...)
}

// Exposures returns a copy of the declared exposures.
func (t *ControllerType) Exposures() *Exposures {
	return t.exposures.Clone()
}

// Renderer returns the renderer for format, building it on first use. An
// empty format means the default format.
func (t *ControllerType) Renderer(format string) (*Renderer, error) {
	return t.renderer(t.Settings(), t.version(), format)
}

// renderer returns a renderer built from s. Only renderers built from the
// current settings version are cached.
func (t *ControllerType) renderer(s Settings, version uint64, format string) (*Renderer, error) {
	if format == "" {
		format = s.DefaultFormat
	}
	if cached, ok := t.renderers.Load(format); ok && cached.(cachedRenderer).version == version {
		return cached.(cachedRenderer).renderer, nil
	}

	renderer, err := NewRenderer(s.Paths, format, s.Engines)
	if err != nil {
		return nil, fmt.Errorf("view: %s renderer for %q: %w", t.name, format, err)
	}
	if version != t.version() {
		return renderer, nil
	}
	entry := cachedRenderer{renderer: renderer, version: version}
	actual, loaded := t.renderers.LoadOrStore(format, entry)
	if loaded {
		prev := actual.(cachedRenderer)
		if prev.version == version {
			return prev.renderer, nil
		}
		t.renderers.CompareAndSwap(format, prev, entry)
	}
	s.Logger.Debug("built renderer", "controller", t.name, "format", format, "roots", len(s.Paths))
	return renderer, nil
}

// New creates a controller. It snapshots the resolved settings and the
// exposures declared so far; later Configure calls do not reach it.
func (t *ControllerType) New() *Controller {
	return &Controller{
		typ:       t,
		settings:  t.Settings(),
		version:   t.version(),
		exposures: t.exposures.Clone(),
	}
}

// Controller renders one view. It holds no per-call state, so one
// controller may serve concurrent calls.
type Controller struct {
	typ       *ControllerType
	settings  Settings
	version   uint64
	exposures *Exposures
}

// Type returns the controller type.
func (c *Controller) Type() *ControllerType { return c.typ }

// Settings returns the settings snapshot taken at construction.
func (c *Controller) Settings() Settings { return c.settings }

// Exposures returns the exposures the controller renders with.
func (c *Controller) Exposures() *Exposures { return c.exposures.Clone() }

// CallOption configures one Controller.Call.
type CallOption func(*callConfig)

type callConfig struct {
	format  string
	context *Context
	input   map[string]any
	locals  map[string]any
}

// WithFormat renders for format instead of the default.
func WithFormat(format string) CallOption {
	return func(cfg *callConfig) {
		if format != "" {
			cfg.format = format
		}
	}
}

// WithContext replaces the configured context prototype for this call.
func WithContext(ctx *Context) CallOption {
	return func(cfg *callConfig) {
		if ctx != nil {
			cfg.context = ctx
		}
	}
}

// WithInput merges values into the raw input exposures read from.
func WithInput(input map[string]any) CallOption {
	return func(cfg *callConfig) {
		cfg.input = mergeLocals(cfg.input, input)
	}
}

// WithInputValue sets a single raw input value.
func WithInputValue(key string, value any) CallOption {
	return WithInput(map[string]any{key: value})
}

// WithLocals merges locals over the exposure results.
func WithLocals(locals map[string]any) CallOption {
	return func(cfg *callConfig) {
		cfg.locals = mergeLocals(cfg.locals, locals)
	}
}

// Call renders the configured template for the call's format, wrapped in
// the layout when one is set. Errors from exposures, decorators and
// engines are returned without producing output.
func (c *Controller) Call(ctx context.Context, options ...CallOption) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := callConfig{format: c.settings.DefaultFormat, context: c.settings.Context}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if c.settings.Template == "" {
		return "", fmt.Errorf("%w for %s", ErrUndefinedTemplate, c.typ.name)
	}
	if err := c.validateNames(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	renderer, err := c.typ.renderer(c.settings, c.version, cfg.format)
	if err != nil {
		return "", err
	}

	locals, err := c.Locals(ctx, cfg.input, cfg.locals)
	if err != nil {
		return "", err
	}

	logger := c.settings.Logger
	templateScope, err := c.scope(renderer.Chdir(c.settings.Template), cfg.context, locals)
	if err != nil {
		return "", err
	}

	logger.Debug("rendering template", "controller", c.typ.name, "template", c.settings.Template, "format", cfg.format)
	content, err := renderer.Template(c.settings.Template, templateScope, nil)
	if err != nil {
		return "", err
	}
	if !c.settings.HasLayout() {
		return content, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	layoutScope, err := c.scope(renderer.Chdir(c.settings.LayoutsDir), cfg.context, nil)
	if err != nil {
		return "", err
	}
	layout := path.Join(c.settings.LayoutsDir, c.settings.Layout)
	logger.Debug("rendering layout", "controller", c.typ.name, "layout", layout, "format", cfg.format)
	return renderer.Template(layout, layoutScope, func() (string, error) {
		return content, nil
	})
}

func (c *Controller) validateNames() error {
	names := []struct{ kind, name string }{{"template", c.settings.Template}}
	if c.settings.HasLayout() {
		names = append(names,
			struct{ kind, name string }{"layout", c.settings.Layout},
			struct{ kind, name string }{"layouts dir", c.settings.LayoutsDir},
		)
	}
	for _, n := range names {
		if !validName(n.name) {
			return fmt.Errorf("%w: %s %q for %s", ErrInvalidName, n.kind, n.name, c.typ.name)
		}
	}
	return nil
}

// Locals evaluates the exposures against input and merges override on top.
// Values are returned undecorated.
func (c *Controller) Locals(ctx context.Context, input, override map[string]any) (map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	locals, err := c.exposures.Locals(ctx, input)
	if err != nil {
		return nil, err
	}
	return mergeLocals(locals, override), nil
}

func (c *Controller) scope(renderer *Renderer, base *Context, locals map[string]any) (Scope, error) {
	renderCtx := base.ForRendering(renderer, c.settings.Decorator)
	decorated, err := c.decorateLocals(renderCtx, locals)
	if err != nil {
		return Scope{}, err
	}
	return NewScope(decorated, renderCtx), nil
}

func (c *Controller) decorateLocals(ctx *Context, locals map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(locals))
	for key, value := range locals {
		if !Truthy(value) {
			out[key] = value
			continue
		}
		var opts DecorateOptions
		if exposure, ok := c.exposures.Get(key); ok {
			opts = exposure.Options().Decorate
		}
		decorated, err := c.settings.Decorator.Decorate(key, value, ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("view: decorate %q: %w", key, err)
		}
		out[key] = decorated
	}
	return out, nil
}

func mergeLocals(base, extra map[string]any) map[string]any {
	if len(extra) == 0 {
		if base == nil {
			return make(map[string]any)
		}
		return base
	}
	if base == nil {
		base = make(map[string]any, len(extra))
	}
	for key, value := range extra {
		base[key] = value
	}
	return base
}
