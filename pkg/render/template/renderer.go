package template

import (
	"io"
)

// TemplateRenderer is the engine contract a view renderer drives. One engine
// instance is bound to a single template root; names passed to
// RenderTemplate are file paths relative to that root, extension included.
type TemplateRenderer interface {
	Extension() string
	RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error)
	RenderString(content string, data map[string]any, out ...io.Writer) (string, error)
}

// MemberAccessor is implemented by values that resolve members dynamically,
// such as view parts. Engines use it to back attribute-style filters.
type MemberAccessor interface {
	Get(member string, args ...any) (any, error)
}

// PartialRenderer is implemented by values that render a partial with
// themselves as a local.
type PartialRenderer interface {
	Render(partial string, args ...any) (string, error)
}
