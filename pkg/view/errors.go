package view

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUndefinedTemplate is returned by Controller.Call when the controller
	// type has no template configured. No output is produced.
	ErrUndefinedTemplate = errors.New("view: no template configured")

	// ErrUnsupportedMember matches every *UnsupportedMemberError.
	ErrUnsupportedMember = errors.New("view: unsupported member")

	// ErrTemplateNotFound matches every *TemplateNotFoundError.
	ErrTemplateNotFound = errors.New("view: template not found")

	// ErrMissingRenderer is returned when a part or scope renders a partial
	// through a context that was never bound to a renderer.
	ErrMissingRenderer = errors.New("view: context has no renderer")

	// ErrMissingDecorator is returned when a part decorates an attribute
	// through a context that was never bound to a decorator.
	ErrMissingDecorator = errors.New("view: context has no decorator")

	// ErrInvalidName is returned for template, layout or directory names
	// that leave the view root ("..", absolute or malformed paths).
	ErrInvalidName = errors.New("view: invalid template name")

	// ErrExposureCycle is returned when exposures depend on each other in a loop.
	ErrExposureCycle = errors.New("view: exposure dependency cycle")
)

// UnsupportedMemberError reports a member a part could not resolve through
// its class methods, decorated attributes, wrapped value or convenience
// accessors.
type UnsupportedMemberError struct {
	Member string
	Part   string
	Value  any
}

func (e *UnsupportedMemberError) Error() string {
	return fmt.Sprintf("view: undefined member %q for part %q (%T)", e.Member, e.Part, e.Value)
}

// Is lets errors.Is match ErrUnsupportedMember.
func (e *UnsupportedMemberError) Is(target error) bool {
	return target == ErrUnsupportedMember
}

// TemplateNotFoundError reports a template or partial missing from every
// configured view root.
type TemplateNotFoundError struct {
	Name   string
	Format string
	Roots  []string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("view: template %q for format %q not found in [%s]", e.Name, e.Format, strings.Join(e.Roots, ", "))
}

// Is lets errors.Is match ErrTemplateNotFound.
func (e *TemplateNotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}
