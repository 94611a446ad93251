// Package goview is the entry point for rendering views: controller types
// built in code or from a YAML manifest, rendered through pongo2 templates.
//
// Most callers declare types with NewControllerType and render with
// Controller.Call. Render covers the one-off case.
package goview

import (
	"context"
	"errors"
	"io/fs"

	"github.com/goliatone/go-view/pkg/helpers"
	"github.com/goliatone/go-view/pkg/manifest"
	"github.com/goliatone/go-view/pkg/view"
)

// ControllerType aliases view.ControllerType.
type ControllerType = view.ControllerType

// Controller aliases view.Controller.
type Controller = view.Controller

// Part aliases view.Part.
type Part = view.Part

// PartClass aliases view.PartClass.
type PartClass = view.PartClass

// Context aliases view.Context.
type Context = view.Context

// NewControllerType declares a root controller type.
func NewControllerType(name string, options ...view.Option) *ControllerType {
	return view.NewControllerType(name, options...)
}

// NewContext builds a context prototype from helper maps, later maps win.
func NewContext(helperSets ...map[string]any) *Context {
	return view.NewContext(helpers.Merge(helperSets...))
}

// Render renders template from fsys once, without layout, for the default
// format. Locals are decorated the same way Controller.Call decorates them.
func Render(ctx context.Context, fsys fs.FS, template string, locals map[string]any, options ...view.Option) (string, error) {
	if fsys == nil {
		return "", errors.New("goview: template filesystem is required")
	}
	base := []view.Option{view.WithPaths(view.FSPath(fsys)), view.WithTemplate(template)}
	t := view.NewControllerType(template, append(base, options...)...)
	return t.New().Call(ctx, view.WithLocals(locals))
}

// LoadManifest reads a YAML manifest from fsys and builds its controller
// types. View paths resolve inside fsys.
func LoadManifest(fsys fs.FS, file string, options ...view.Option) (*manifest.Set, error) {
	doc, err := manifest.Load(fsys, file)
	if err != nil {
		return nil, err
	}
	return manifest.Build(doc, manifest.WithFS(fsys), manifest.WithViewOptions(options...))
}
