package view

import "fmt"

// Block produces content a template can embed. Layouts receive the rendered
// template as a Block exposed under the "yield" name.
type Block func() (string, error)

// Scope is the immutable set of locals plus the context one template or
// partial render sees.
type Scope struct {
	locals  map[string]any
	context *Context
}

// NewScope copies locals into a new scope bound to ctx.
func NewScope(locals map[string]any, ctx *Context) Scope {
	return Scope{locals: copyLocals(locals), context: ctx}
}

// Locals returns a copy of the scope locals.
func (s Scope) Locals() map[string]any {
	return copyLocals(s.locals)
}

// Context returns the render context of the scope.
func (s Scope) Context() *Context {
	return s.context
}

// Get resolves name against the locals first and the context helpers second.
func (s Scope) Get(name string) (any, bool) {
	if value, ok := s.locals[name]; ok {
		return value, true
	}
	return s.context.Helper(name)
}

// Render renders a partial through the scope's context renderer. Without
// extra locals the partial sees this scope; otherwise it sees only the
// locals passed here.
func (s Scope) Render(partial string, args ...any) (string, error) {
	renderer := s.context.Renderer()
	if renderer == nil {
		return "", fmt.Errorf("view: render partial %q: %w", partial, ErrMissingRenderer)
	}
	opts, err := parseRenderArgs(args)
	if err != nil {
		return "", err
	}
	scope := s
	if len(opts.locals) > 0 {
		scope = NewScope(opts.locals, s.context)
	}
	return renderer.Partial(partial, scope, opts.block)
}

// Data builds the payload handed to a template engine: reserved names, then
// context helpers, then locals, so locals shadow helpers. The block, when
// present, is always reachable as "yield".
func (s Scope) Data(block Block) map[string]any {
	helpers := s.context.Helpers()
	data := make(map[string]any, len(helpers)+len(s.locals)+3)

	data["context"] = s.context
	data["render"] = s.Render
	for key, value := range helpers {
		data[key] = value
	}
	for key, value := range s.locals {
		data[key] = value
	}
	if block != nil {
		data["yield"] = func() (string, error) { return block() }
	}
	return data
}

// RenderOption customises a partial render started from a part or scope.
type RenderOption func(*renderOptions)

type renderOptions struct {
	as     string
	locals map[string]any
	block  Block
}

// As names the local the rendering part is injected under. It defaults to
// the part's own name.
func As(name string) RenderOption {
	return func(o *renderOptions) {
		o.as = name
	}
}

// WithPartialLocals adds locals to a partial render.
func WithPartialLocals(locals map[string]any) RenderOption {
	return func(o *renderOptions) {
		if len(locals) == 0 {
			return
		}
		if o.locals == nil {
			o.locals = make(map[string]any, len(locals))
		}
		for key, value := range locals {
			o.locals[key] = value
		}
	}
}

// WithBlock passes a block the partial can yield to.
func WithBlock(block Block) RenderOption {
	return func(o *renderOptions) {
		o.block = block
	}
}

// parseRenderArgs accepts the loose argument lists templates can produce:
// RenderOptions, locals maps, blocks, and "key", value pairs where the key
// "as" sets the alias.
func parseRenderArgs(args []any) (renderOptions, error) {
	var opts renderOptions
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case nil:
		case RenderOption:
			if arg != nil {
				arg(&opts)
			}
		case map[string]any:
			WithPartialLocals(arg)(&opts)
		case Block:
			opts.block = arg
		case func() (string, error):
			opts.block = arg
		case string:
			if i+1 >= len(args) {
				return opts, fmt.Errorf("view: render argument %q has no value", arg)
			}
			value := args[i+1]
			i++
			if arg == "as" {
				alias, ok := value.(string)
				if !ok {
					return opts, fmt.Errorf("view: render alias must be a string, got %T", value)
				}
				opts.as = alias
				continue
			}
			WithPartialLocals(map[string]any{arg: value})(&opts)
		default:
			return opts, fmt.Errorf("view: unsupported render argument %T", arg)
		}
	}
	return opts, nil
}
