package render

import (
	"fmt"
	"io/fs"
	"sync"

	"github.com/goliatone/go-view/pkg/render/template"
	"github.com/goliatone/go-view/pkg/render/template/gotemplate"
)

// Factory builds a template engine bound to one template root. Factories
// must be pure: view renderers may call them more than once for the same
// root and keep whichever engine wins.
type Factory func(root fs.FS) (template.TemplateRenderer, error)

// PongoFactory returns a Factory producing pongo2 engines that claim ext.
// Extra options are applied to every engine, after the root and extension.
func PongoFactory(ext string, options ...gotemplate.Option) Factory {
	return func(root fs.FS) (template.TemplateRenderer, error) {
		if root == nil {
			return nil, fmt.Errorf("render: template root is required")
		}
		opts := append([]gotemplate.Option{
			gotemplate.WithFS(root),
			gotemplate.WithExtension(ext),
		}, options...)
		return gotemplate.New(opts...)
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the shared registry with the pongo2 engine bound to
// ".tpl" files. Callers wanting other engines should build their own registry
// instead of mutating this one after renders have started.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		registry := NewRegistry()
		registry.MustRegister(gotemplate.DefaultExtension, PongoFactory(gotemplate.DefaultExtension))
		defaultRegistry = registry
	})
	return defaultRegistry
}
