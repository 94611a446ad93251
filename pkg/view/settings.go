package view

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-view/pkg/render"
)

const (
	// DefaultFormat is the output format used when none is configured.
	DefaultFormat = "html"
	// DefaultLayoutsDir is the directory layouts are looked up in.
	DefaultLayoutsDir = "layouts"
)

var discardLogger = log.New(io.Discard)

// Settings is the resolved configuration of a controller type.
type Settings struct {
	Paths         []Path
	Layout        string
	LayoutsDir    string
	Template      string
	DefaultFormat string
	Context       *Context
	Decorator     Decorator
	Engines       *render.Registry
	Logger        *log.Logger
}

// HasLayout reports whether renders are wrapped in a layout.
func (s Settings) HasLayout() bool {
	return s.Layout != ""
}

type setting[T any] struct {
	value T
	set   bool
}

func (s *setting[T]) assign(value T) {
	s.value = value
	s.set = true
}

// settings holds what one controller type declares itself; anything unset
// resolves through its parent.
type settings struct {
	paths         setting[[]Path]
	layout        setting[string]
	layoutsDir    setting[string]
	template      setting[string]
	defaultFormat setting[string]
	context       setting[*Context]
	decorator     setting[Decorator]
	engines       setting[*render.Registry]
	logger        setting[*log.Logger]
}

// Option configures a controller type.
type Option func(*settings)

// WithPaths sets the ordered view roots. Earlier roots win.
func WithPaths(paths ...Path) Option {
	return func(s *settings) {
		s.paths.assign(append([]Path(nil), paths...))
	}
}

// WithDirs is WithPaths for directories on disk.
func WithDirs(dirs ...string) Option {
	paths := make([]Path, 0, len(dirs))
	for _, dir := range dirs {
		paths = append(paths, DirPath(dir))
	}
	return WithPaths(paths...)
}

// WithLayout wraps renders in the named layout. An empty name disables it.
func WithLayout(name string) Option {
	return func(s *settings) {
		s.layout.assign(cleanName(name))
	}
}

// WithoutLayout disables layout rendering, including one set by a parent.
func WithoutLayout() Option {
	return WithLayout("")
}

// WithLayoutsDir changes the directory layouts live in.
func WithLayoutsDir(dir string) Option {
	return func(s *settings) {
		s.layoutsDir.assign(cleanName(dir))
	}
}

// WithTemplate sets the template rendered by Call.
func WithTemplate(name string) Option {
	return func(s *settings) {
		s.template.assign(cleanName(name))
	}
}

// WithDefaultFormat sets the format used when Call gets none.
func WithDefaultFormat(format string) Option {
	return func(s *settings) {
		s.defaultFormat.assign(format)
	}
}

// WithDefaultContext sets the context prototype used when Call gets none.
func WithDefaultContext(ctx *Context) Option {
	return func(s *settings) {
		s.context.assign(ctx)
	}
}

// WithDecorator sets the decorator applied to locals.
func WithDecorator(decorator Decorator) Option {
	return func(s *settings) {
		s.decorator.assign(decorator)
	}
}

// WithEngines sets the template engine registry.
func WithEngines(registry *render.Registry) Option {
	return func(s *settings) {
		s.engines.assign(registry)
	}
}

// WithLogger sets the logger render steps are reported to at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) {
		s.logger.assign(logger)
	}
}

func resolveSetting[T any](t *ControllerType, pick func(*settings) setting[T], fallback T) T {
	for current := t; current != nil; current = current.parent {
		if s := pick(&current.settings); s.set {
			return s.value
		}
	}
	return fallback
}

func resolveSettings(t *ControllerType) Settings {
	s := Settings{
		Paths:         resolveSetting(t, func(s *settings) setting[[]Path] { return s.paths }, nil),
		Layout:        resolveSetting(t, func(s *settings) setting[string] { return s.layout }, ""),
		LayoutsDir:    resolveSetting(t, func(s *settings) setting[string] { return s.layoutsDir }, DefaultLayoutsDir),
		Template:      resolveSetting(t, func(s *settings) setting[string] { return s.template }, ""),
		DefaultFormat: resolveSetting(t, func(s *settings) setting[string] { return s.defaultFormat }, DefaultFormat),
		Context:       resolveSetting(t, func(s *settings) setting[*Context] { return s.context }, nil),
		Decorator:     resolveSetting(t, func(s *settings) setting[Decorator] { return s.decorator }, nil),
		Engines:       resolveSetting(t, func(s *settings) setting[*render.Registry] { return s.engines }, nil),
		Logger:        resolveSetting(t, func(s *settings) setting[*log.Logger] { return s.logger }, nil),
	}
	if s.Context == nil {
		s.Context = defaultContext
	}
	if s.Decorator == nil {
		s.Decorator = defaultDecorator
	}
	if s.Engines == nil {
		s.Engines = render.DefaultRegistry()
	}
	if s.Logger == nil {
		s.Logger = discardLogger
	}
	if s.DefaultFormat == "" {
		s.DefaultFormat = DefaultFormat
	}
	if s.LayoutsDir == "" {
		s.LayoutsDir = DefaultLayoutsDir
	}
	s.Paths = append([]Path(nil), s.Paths...)
	return s
}
