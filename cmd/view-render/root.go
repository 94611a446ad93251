package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-view/internal/logger"
	"github.com/goliatone/go-view/pkg/helpers"
	"github.com/goliatone/go-view/pkg/manifest"
	"github.com/goliatone/go-view/pkg/view"
)

// picker chooses a view when none is given on the command line.
type picker func(ctx context.Context, names []string) (string, error)

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	config *viper.Viper
	log    *log.Logger
	closer io.Closer

	// interactive reports whether prompting is possible.
	interactive func() bool
	pick        picker
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		config:      viper.New(),
		interactive: func() bool { return isTerminal(stdin) },
		pick:        surveyPicker,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "view-render",
		Short:         "Render views declared in a YAML manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.String("manifest", "views.yaml", "view manifest file")
	flags.String("log-level", "", "log level (debug|info|warn|error) [default: info]")
	flags.String("log-file", "", "write logs to a file instead of stderr")

	a.config.SetEnvPrefix("VIEW")
	a.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.config.AutomaticEnv()
	for _, name := range []string{"manifest", "log-level", "log-file"} {
		if err := a.config.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("view-render: bind flag %s: %v", name, err))
		}
	}

	root.AddCommand(newRenderCmd(a), newListCmd(a), newVersionCmd(a))
	return root
}

func (a *app) configure() error {
	l, closer, err := logger.Configure(logger.Options{
		Level:  a.config.GetString("log-level"),
		File:   a.config.GetString("log-file"),
		Output: a.stderr,
		Plain:  !isTerminal(a.stderr),
	})
	if err != nil {
		return fmt.Errorf("view-render: configure logger: %w", err)
	}
	a.log = l
	a.closer = closer
	return nil
}

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [view]",
		Short: "Render a view to stdout or a file",
		Long: `Render a view declared in the manifest.

Data from --data is passed as raw input to the view's exposures. Views
without exposures receive it directly as template locals.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return a.render(cmd.Context(), name)
		},
	}
	flags := cmd.Flags()
	flags.String("data", "", "YAML file with input data")
	flags.String("format", "", "output format [default: the view's default format]")
	flags.StringP("output", "o", "", "write output to a file instead of stdout")
	for _, name := range []string{"data", "format", "output"} {
		if err := a.config.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("view-render: bind flag %s: %v", name, err))
		}
	}
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the views declared in the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := a.loadViews()
			if err != nil {
				return err
			}
			for _, name := range set.Names() {
				t, _ := set.Get(name)
				s := t.Settings()
				parent := "-"
				if t.Parent() != nil {
					parent = t.Parent().Name()
				}
				layout := s.Layout
				if !s.HasLayout() {
					layout = "-"
				}
				template := s.Template
				if template == "" {
					template = "-"
				}
				fmt.Fprintf(a.stdout, "%s\ttemplate=%s\tlayout=%s\textends=%s\n", name, template, layout, parent)
			}
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "view-render v%s\n", version)
		},
	}
}

func (a *app) loadViews() (*manifest.Set, error) {
	file := a.config.GetString("manifest")
	dir, base := filepath.Split(file)
	if dir == "" {
		dir = "."
	}
	doc, err := manifest.Load(os.DirFS(dir), base)
	if err != nil {
		return nil, err
	}
	a.log.Debug("loaded manifest", "file", file, "views", len(doc.Views))

	return manifest.Build(doc,
		manifest.WithBaseDir(dir),
		manifest.WithViewOptions(
			view.WithLogger(a.log),
			view.WithDefaultContext(view.NewContext(helpers.Sanitizer())),
		),
	)
}

func (a *app) render(ctx context.Context, name string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	set, err := a.loadViews()
	if err != nil {
		return err
	}

	if name == "" {
		if !a.interactive() {
			return fmt.Errorf("view-render: a view name is required (one of %s)", strings.Join(set.Names(), ", "))
		}
		name, err = a.pick(ctx, set.Names())
		if err != nil {
			return err
		}
	}
	t, ok := set.Get(name)
	if !ok {
		return fmt.Errorf("view-render: unknown view %q", name)
	}

	data, err := a.loadData()
	if err != nil {
		return err
	}

	opts := []view.CallOption{view.WithFormat(a.config.GetString("format"))}
	if t.Exposures().Len() > 0 {
		opts = append(opts, view.WithInput(data))
	} else {
		opts = append(opts, view.WithLocals(data))
	}

	out, err := t.New().Call(ctx, opts...)
	if err != nil {
		return err
	}
	a.log.Debug("rendered view", "controller", name, "bytes", len(out))

	if path := a.config.GetString("output"); path != "" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("view-render: write %s: %w", path, err)
		}
		a.log.Info("wrote output", "file", path)
		return nil
	}
	_, err = io.WriteString(a.stdout, out)
	return err
}

func (a *app) loadData() (map[string]any, error) {
	path := a.config.GetString("data")
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("view-render: read data: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("view-render: parse data %s: %w", path, err)
	}
	return data, nil
}

// isTerminal reports whether stream is a terminal. Streams without a file
// descriptor, such as buffers, never are.
func isTerminal(stream any) bool {
	file, ok := stream.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
