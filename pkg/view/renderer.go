package view

import (
	"fmt"
	"path"

	"github.com/goliatone/go-view/pkg/render"
	"github.com/goliatone/go-view/pkg/render/template"
)

// Renderer resolves template names across the configured view roots and
// executes them with the engine registered for the matching file extension.
// A Renderer is immutable; Chdir returns a rebound copy sharing the engines.
type Renderer struct {
	paths   []Path
	format  string
	exts    []string
	engines []map[string]template.TemplateRenderer
}

// NewRenderer builds one engine per root and registered extension. It has no
// side effects beyond engine construction, so duplicates are harmless.
func NewRenderer(paths []Path, format string, registry *render.Registry) (*Renderer, error) {
	if registry == nil {
		registry = render.DefaultRegistry()
	}
	if format == "" {
		return nil, fmt.Errorf("view: renderer format is required")
	}
	exts := registry.List()
	if len(exts) == 0 {
		return nil, fmt.Errorf("view: no template engines registered")
	}

	engines := make([]map[string]template.TemplateRenderer, len(paths))
	for i, p := range paths {
		if p.fsys == nil {
			return nil, fmt.Errorf("view: view path %d has no filesystem", i)
		}
		engines[i] = make(map[string]template.TemplateRenderer, len(exts))
		for _, ext := range exts {
			factory, err := registry.Get(ext)
			if err != nil {
				return nil, err
			}
			engine, err := factory(p.fsys)
			if err != nil {
				return nil, fmt.Errorf("view: build %q engine for %s: %w", ext, p.root, err)
			}
			engines[i][ext] = engine
		}
	}

	return &Renderer{
		paths:   append([]Path(nil), paths...),
		format:  format,
		exts:    exts,
		engines: engines,
	}, nil
}

// Format returns the output format the renderer looks templates up for.
func (r *Renderer) Format() string {
	return r.format
}

// Paths returns the view roots, bound to the renderer's current directory.
func (r *Renderer) Paths() []Path {
	return append([]Path(nil), r.paths...)
}

// Lookup reports the file that would render name, searching roots in order.
func (r *Renderer) Lookup(name string) (string, bool) {
	_, file, _, ok := r.lookup(name)
	return file, ok
}

// Template renders the named template with scope. The block, when given, is
// exposed to the template as "yield".
func (r *Renderer) Template(name string, scope Scope, block Block) (string, error) {
	idx, file, ext, ok := r.lookup(name)
	if !ok {
		return "", r.notFound(name)
	}
	return r.engines[idx][ext].RenderTemplate(file, scope.Data(block))
}

// Partial renders a partial: the last path segment of name gets a leading
// underscore ("users/row" looks up "users/_row").
func (r *Renderer) Partial(name string, scope Scope, block Block) (string, error) {
	return r.Template(partialName(name), scope, block)
}

// Chdir returns a renderer whose roots are rebound to dir.
func (r *Renderer) Chdir(dir string) *Renderer {
	paths := make([]Path, len(r.paths))
	for i, p := range r.paths {
		paths[i] = p.Chdir(dir)
	}
	return &Renderer{
		paths:   paths,
		format:  r.format,
		exts:    r.exts,
		engines: r.engines,
	}
}

// Equal reports whether both renderers share engines, format and directory.
func (r *Renderer) Equal(other *Renderer) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.format != other.format || len(r.paths) != len(other.paths) || len(r.engines) != len(other.engines) {
		return false
	}
	if len(r.engines) > 0 && &r.engines[0] != &other.engines[0] {
		return false
	}
	for i := range r.paths {
		if r.paths[i].dir != other.paths[i].dir {
			return false
		}
	}
	return true
}

func (r *Renderer) lookup(name string) (int, string, string, bool) {
	for i, p := range r.paths {
		if file, ext, ok := p.lookup(name, r.format, r.exts); ok {
			return i, file, ext, true
		}
	}
	return 0, "", "", false
}

func (r *Renderer) notFound(name string) error {
	roots := make([]string, len(r.paths))
	for i, p := range r.paths {
		roots[i] = path.Join(p.root, p.dir)
	}
	return &TemplateNotFoundError{Name: name, Format: r.format, Roots: roots}
}

func partialName(name string) string {
	dir, base := path.Split(cleanName(name))
	return dir + "_" + base
}
