package manifest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-view/pkg/view"
)

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	baseDir  string
	fsys     fs.FS
	viewOpts []view.Option
}

// WithBaseDir resolves relative view paths against dir on disk.
func WithBaseDir(dir string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.baseDir = dir
	}
}

// WithFS resolves view paths inside fsys instead of the local disk.
func WithFS(fsys fs.FS) BuildOption {
	return func(cfg *buildConfig) {
		cfg.fsys = fsys
	}
}

// WithViewOptions applies options to every root view, before the manifest
// settings. Use it for contexts, decorators, engines and loggers.
func WithViewOptions(options ...view.Option) BuildOption {
	return func(cfg *buildConfig) {
		cfg.viewOpts = append(cfg.viewOpts, options...)
	}
}

// Set holds the controller types built from one manifest.
type Set struct {
	types map[string]*view.ControllerType
	order []string
}

// Get returns the type declared under name.
func (s *Set) Get(name string) (*view.ControllerType, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.types[name]
	return t, ok
}

// Names returns the view names, sorted.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Order returns the view names in the order they were built, parents first.
func (s *Set) Order() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Build declares a controller type per view. Parents are built before the
// views extending them; unknown parents and cycles are errors.
func Build(doc *Document, options ...BuildOption) (*Set, error) {
	if doc == nil {
		return nil, fmt.Errorf("manifest: document is required")
	}
	cfg := buildConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	order, err := buildOrder(doc)
	if err != nil {
		return nil, err
	}

	set := &Set{types: make(map[string]*view.ControllerType, len(order))}
	for _, name := range order {
		decl := doc.Views[name]
		opts, err := cfg.viewOptions(decl)
		if err != nil {
			return nil, fmt.Errorf("manifest: view %q: %w", name, err)
		}

		var t *view.ControllerType
		if parent := strings.TrimSpace(decl.Extends); parent != "" {
			t = set.types[parent].Extend(name, opts...)
		} else {
			t = view.NewControllerType(name, append(append([]view.Option(nil), cfg.viewOpts...), opts...)...)
		}

		for _, exposure := range decl.Expose {
			exposure = strings.TrimSpace(exposure)
			var expOpts []view.ExposureOption
			if value, ok := decl.Defaults[exposure]; ok {
				expOpts = append(expOpts, view.DefaultValue(value))
			}
			t.Expose(exposure, nil, expOpts...)
		}
		for _, exposure := range decl.Private {
			t.PrivateExpose(strings.TrimSpace(exposure), nil)
		}

		set.types[name] = t
		set.order = append(set.order, name)
	}
	return set, nil
}

func (cfg buildConfig) viewOptions(decl View) ([]view.Option, error) {
	var opts []view.Option
	if len(decl.Paths) > 0 {
		paths := make([]view.Path, 0, len(decl.Paths))
		for _, p := range decl.Paths {
			resolved, err := cfg.path(p)
			if err != nil {
				return nil, err
			}
			paths = append(paths, resolved)
		}
		opts = append(opts, view.WithPaths(paths...))
	}
	if decl.Layout.Set {
		if decl.Layout.Disabled {
			opts = append(opts, view.WithoutLayout())
		} else {
			opts = append(opts, view.WithLayout(decl.Layout.Name))
		}
	}
	if decl.LayoutsDir != "" {
		opts = append(opts, view.WithLayoutsDir(decl.LayoutsDir))
	}
	if decl.Template != "" {
		opts = append(opts, view.WithTemplate(decl.Template))
	}
	if decl.DefaultFormat != "" {
		opts = append(opts, view.WithDefaultFormat(decl.DefaultFormat))
	}
	return opts, nil
}

func (cfg buildConfig) path(p string) (view.Path, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return view.Path{}, fmt.Errorf("empty view path")
	}
	if cfg.fsys != nil {
		sub, err := fs.Sub(cfg.fsys, filepath.ToSlash(filepath.Clean(p)))
		if err != nil {
			return view.Path{}, fmt.Errorf("view path %q: %w", p, err)
		}
		return view.FSPath(sub), nil
	}
	if !filepath.IsAbs(p) && cfg.baseDir != "" {
		p = filepath.Join(cfg.baseDir, p)
	}
	return view.DirPath(p), nil
}

func buildOrder(doc *Document) ([]string, error) {
	const (
		pending = iota
		visiting
		done
	)
	state := make(map[string]int, len(doc.Views))
	order := make([]string, 0, len(doc.Views))

	var visit func(name string, chain []string) error
	visit = func(name string, chain []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("manifest: views extend each other in a cycle: %s", strings.Join(append(chain, name), " -> "))
		}
		state[name] = visiting
		if parent := strings.TrimSpace(doc.Views[name].Extends); parent != "" {
			if _, ok := doc.Views[parent]; !ok {
				return fmt.Errorf("manifest: view %q extends unknown view %q", name, parent)
			}
			if err := visit(parent, append(chain, name)); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range doc.Names() {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
