package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-view/pkg/render/template"
)

// DefaultExtension is the file extension the engine claims when none is given.
const DefaultExtension = ".tpl"

// Option configures the pongo2 adapter before construction.
type Option func(*config)

type config struct {
	name      string
	templates fs.FS
	extension string
	reload    bool
}

// WithName labels the underlying pongo2 template set.
func WithName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// WithFS sets the template root.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the extension the engine reports.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithReload re-parses templates on every render instead of caching them.
// Meant for development against templates on disk.
func WithReload(reload bool) Option {
	return func(cfg *config) {
		cfg.reload = reload
	}
}

// Engine satisfies template.TemplateRenderer using a pongo2 template set
// bound to a single template root.
type Engine struct {
	set *pongo2.TemplateSet
	ext string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. WithFS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		name:      "view",
		extension: DefaultExtension,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.templates == nil {
		return nil, errors.New("gotemplate: template fs is required")
	}

	registerBuiltinFilters()

	set := pongo2.NewSet(cfg.name, pongo2.NewFSLoader(cfg.templates))
	set.Debug = cfg.reload
	return &Engine{set: set, ext: cfg.extension}, nil
}

// Extension reports the file extension this engine renders.
func (e *Engine) Extension() string {
	return e.ext
}

// RenderTemplate executes the template file at name. Parsed templates are
// cached by the pongo2 set, which is safe for concurrent renders, including
// partials rendered from inside a template.
func (e *Engine) RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("gotemplate: load template %q: %w", name, err)
	}
	return execute(tmpl, data, out, name)
}

// RenderString parses and executes inline template content.
func (e *Engine) RenderString(content string, data map[string]any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	return execute(tmpl, data, out, "string")
}

func execute(tmpl *pongo2.Template, data map[string]any, out []io.Writer, label string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(toContext(data), &buf); err != nil {
		return "", fmt.Errorf("gotemplate: execute template %s: %w", label, err)
	}
	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// toContext copies data into a pongo2 context without converting values:
// parts and helper funcs must stay callable.
func toContext(data map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(data))
	for key, value := range data {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	return ctx
}

// FilterFunc is a filter over plain Go values.
type FilterFunc func(input any, param any) (any, error)

// RegisterFilter adds a filter to every pongo2 engine. pongo2 filters are
// process-wide, so a name can be registered once.
func RegisterFilter(name string, fn FilterFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	registerBuiltinFilters()
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

var builtinFilters sync.Once

func registerBuiltinFilters() {
	builtinFilters.Do(func() {
		for name, fn := range map[string]pongo2.FilterFunction{
			"trim":       filterTrim,
			"lowerfirst": filterLowerFirst,
			"attr":       filterAttr,
			"render":     filterRender,
		} {
			if !pongo2.FilterExists(name) {
				_ = pongo2.RegisterFilter(name, fn)
			}
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterLowerFirst lowercases the first non-space rune.
func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	s := in.String()
	for i, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		return pongo2.AsValue(s[:i] + string(unicode.ToLower(r)) + s[i+utf8.RuneLen(r):]), nil
	}
	return pongo2.AsValue(s), nil
}

// filterAttr resolves {{ part|attr:"name" }} through template.MemberAccessor.
func filterAttr(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	accessor, ok := in.Interface().(template.MemberAccessor)
	if !ok {
		return nil, &pongo2.Error{
			Sender:    "filter:attr",
			OrigError: fmt.Errorf("value of type %T does not support member access", in.Interface()),
		}
	}
	result, err := accessor.Get(param.String())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:attr", OrigError: err}
	}
	return pongo2.AsValue(result), nil
}

// filterRender renders a partial from a part: {{ user|render:"row"|safe }}.
func filterRender(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	renderer, ok := in.Interface().(template.PartialRenderer)
	if !ok {
		return nil, &pongo2.Error{
			Sender:    "filter:render",
			OrigError: fmt.Errorf("value of type %T cannot render partials", in.Interface()),
		}
	}
	out, err := renderer.Render(param.String())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:render", OrigError: err}
	}
	return pongo2.AsValue(out), nil
}
