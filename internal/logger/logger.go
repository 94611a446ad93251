// Package logger configures the charmbracelet/log logger used by the
// view-render command. Library packages never log through it; they receive
// a *log.Logger through view.WithLogger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the process-wide command logger.
var Logger = newLogger(os.Stderr, log.InfoLevel)

// Options describe where and how much to log.
type Options struct {
	// Level is one of debug, info, warn, error or fatal. Anything else
	// logs at info.
	Level string
	// File appends logs to a file instead of Output.
	File string
	// Output defaults to stderr.
	Output io.Writer
	// Plain disables colour styling, e.g. when stderr is not a terminal.
	Plain bool
}

// Configure rebuilds Logger from opts and returns it. The returned closer
// releases the log file, if one was opened.
func Configure(opts Options) (*log.Logger, io.Closer, error) {
	var output io.Writer = os.Stderr
	if opts.Output != nil {
		output = opts.Output
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, err
		}
		output = file
		closer = file
	}

	Logger = newLogger(output, ParseLevel(opts.Level))
	if !opts.Plain {
		Logger.SetStyles(styles())
	}
	return Logger, closer, nil
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{Prefix: "view-render"})
	l.SetTimeFormat("")
	l.SetLevel(level)
	return l
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	badge := func(label, bg string) lipgloss.Style {
		return lipgloss.NewStyle().
			SetString(label).
			Padding(0, 1, 0, 1).
			Background(lipgloss.Color(bg)).
			Foreground(lipgloss.Color("15"))
	}
	s.Levels[log.DebugLevel] = badge("DEBUG", "240")
	s.Levels[log.InfoLevel] = badge("INFO", "33")
	s.Levels[log.WarnLevel] = badge("WARN", "214")
	s.Levels[log.ErrorLevel] = badge("ERROR", "196")
	s.Levels[log.FatalLevel] = badge("FATAL", "88")

	s.Keys["controller"] = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	s.Keys["template"] = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	s.Keys["format"] = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	s.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	return s
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
