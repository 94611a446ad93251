// Package view renders named templates through a controller pipeline.
//
// A ControllerType declares where templates live, which template and layout
// to render, and which exposures turn raw input into template locals.
// Controller.Call evaluates the exposures, wraps each truthy local in a Part
// through the configured Decorator, renders the template with a Scope bound
// to a Context, then renders the layout with the result available as
// "yield".
//
// Parts forward unknown members to the value they wrap. Attributes declared
// on a PartClass are decorated on first access and memoised for the rest of
// the render. Parts and scopes render partials relative to the directory of
// the template being rendered, falling back to "shared" directories and
// parent directories up to each view root.
package view
