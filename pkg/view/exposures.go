package view

import (
	"context"
	"fmt"
)

// ExposureFunc computes one local. It reads raw input and other exposures
// through in.
type ExposureFunc func(ctx context.Context, in *Input) (any, error)

// ExposureOptions configure how an exposure's result is published.
type ExposureOptions struct {
	// Private exposures feed other exposures but are left out of the
	// locals handed to templates.
	Private bool
	// Default is used by pass-through exposures when the input lacks the name.
	Default any
	// Decorate is forwarded to the decorator for this local.
	Decorate DecorateOptions
}

// ExposureOption mutates ExposureOptions.
type ExposureOption func(*ExposureOptions)

// Private marks an exposure as private.
func Private() ExposureOption {
	return func(o *ExposureOptions) {
		o.Private = true
	}
}

// DefaultValue sets the fallback of a pass-through exposure.
func DefaultValue(value any) ExposureOption {
	return func(o *ExposureOptions) {
		o.Default = value
	}
}

// DecorateAs decorates the local with class instead of the decorator's pick.
func DecorateAs(class *PartClass) ExposureOption {
	return func(o *ExposureOptions) {
		o.Decorate.As = class
	}
}

// DecorateEachAs decorates each element of a collection local with class.
func DecorateEachAs(class *PartClass) ExposureOption {
	return func(o *ExposureOptions) {
		o.Decorate.EachAs = class
	}
}

// Exposure is a named computation producing one local.
type Exposure struct {
	name    string
	fn      ExposureFunc
	options ExposureOptions
}

// Name returns the local name the exposure produces.
func (e *Exposure) Name() string { return e.name }

// Options returns the exposure options.
func (e *Exposure) Options() ExposureOptions { return e.options }

// Private reports whether the exposure is excluded from template locals.
func (e *Exposure) Private() bool { return e.options.Private }

func (e *Exposure) call(ctx context.Context, in *Input) (any, error) {
	if e.fn == nil {
		if value, ok := in.raw[e.name]; ok {
			return value, nil
		}
		return e.options.Default, nil
	}
	return e.fn(ctx, in)
}

// Exposures is an ordered registry of exposures, unique by name.
type Exposures struct {
	order []string
	items map[string]*Exposure
}

// NewExposures creates an empty registry.
func NewExposures() *Exposures {
	return &Exposures{items: make(map[string]*Exposure)}
}

// Add registers an exposure, replacing any previous one with the same name.
// A nil fn passes the input value of the same name through.
func (e *Exposures) Add(name string, fn ExposureFunc, options ...ExposureOption) {
	var opts ExposureOptions
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	e.put(&Exposure{name: name, fn: fn, options: opts})
}

// Import copies an exposure from another registry under name.
func (e *Exposures) Import(name string, exposure *Exposure) {
	if exposure == nil {
		return
	}
	clone := *exposure
	clone.name = name
	e.put(&clone)
}

func (e *Exposures) put(exposure *Exposure) {
	if _, exists := e.items[exposure.name]; !exists {
		e.order = append(e.order, exposure.name)
	}
	e.items[exposure.name] = exposure
}

// Get returns the exposure registered under name.
func (e *Exposures) Get(name string) (*Exposure, bool) {
	if e == nil {
		return nil, false
	}
	exposure, ok := e.items[name]
	return exposure, ok
}

// Has reports whether name is registered.
func (e *Exposures) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Names returns exposure names in declaration order.
func (e *Exposures) Names() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.order...)
}

// Len returns the number of registered exposures.
func (e *Exposures) Len() int {
	if e == nil {
		return 0
	}
	return len(e.order)
}

// Clone deep-copies the registry; later changes to either side stay local.
func (e *Exposures) Clone() *Exposures {
	out := NewExposures()
	if e == nil {
		return out
	}
	for _, name := range e.order {
		out.Import(name, e.items[name])
	}
	return out
}

// Locals runs every exposure against input and returns the public results.
func (e *Exposures) Locals(ctx context.Context, input map[string]any) (map[string]any, error) {
	in := &Input{
		ctx:       ctx,
		raw:       input,
		exposures: e,
		resolved:  make(map[string]any),
		resolving: make(map[string]bool),
	}
	locals := make(map[string]any, e.Len())
	for _, name := range e.Names() {
		value, err := in.resolve(name)
		if err != nil {
			return nil, err
		}
		if e.items[name].Private() {
			continue
		}
		locals[name] = value
	}
	return locals, nil
}

// Input is what an ExposureFunc sees: the raw render input plus lazily
// resolved, memoised exposures.
type Input struct {
	ctx       context.Context
	raw       map[string]any
	exposures *Exposures
	resolved  map[string]any
	resolving map[string]bool
}

// Get returns the exposure named name when one exists, else the raw input
// value. Exposure errors are returned unchanged.
func (in *Input) Get(name string) (any, error) {
	if in.exposures.Has(name) {
		return in.resolve(name)
	}
	return in.raw[name], nil
}

// Raw returns the raw input value of name, ignoring exposures.
func (in *Input) Raw(name string) (any, bool) {
	value, ok := in.raw[name]
	return value, ok
}

// Context returns the context.Context of the render call.
func (in *Input) Context() context.Context {
	return in.ctx
}

func (in *Input) resolve(name string) (any, error) {
	if value, ok := in.resolved[name]; ok {
		return value, nil
	}
	if in.resolving[name] {
		return nil, fmt.Errorf("%w: %q", ErrExposureCycle, name)
	}
	exposure, _ := in.exposures.Get(name)

	in.resolving[name] = true
	value, err := exposure.call(in.ctx, in)
	delete(in.resolving, name)
	if err != nil {
		return nil, fmt.Errorf("view: expose %q: %w", name, err)
	}

	in.resolved[name] = value
	return value, nil
}
