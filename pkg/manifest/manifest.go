package manifest

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a parsed manifest.
type Document struct {
	Source string          `yaml:"-"`
	Views  map[string]View `yaml:"views"`
}

// View declares one controller type. Unset fields are inherited from the
// view named by Extends.
type View struct {
	Extends       string         `yaml:"extends"`
	Paths         []string       `yaml:"paths"`
	Layout        Layout         `yaml:"layout"`
	LayoutsDir    string         `yaml:"layouts_dir"`
	Template      string         `yaml:"template"`
	DefaultFormat string         `yaml:"default_format"`
	Expose        []string       `yaml:"expose"`
	Private       []string       `yaml:"private"`
	Defaults      map[string]any `yaml:"defaults"`
}

// Layout is either a layout name or false, which disables an inherited
// layout.
type Layout struct {
	Name     string
	Disabled bool
	Set      bool
}

// UnmarshalYAML accepts a string, false or null.
func (l *Layout) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!null":
		*l = Layout{}
		return nil
	case "!!bool":
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return err
		}
		if enabled {
			return fmt.Errorf("line %d: layout must be a name or false", node.Line)
		}
		*l = Layout{Disabled: true, Set: true}
		return nil
	case "!!str":
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		*l = Layout{Name: name, Disabled: name == "", Set: true}
		return nil
	default:
		return fmt.Errorf("line %d: layout must be a name or false", node.Line)
	}
}

// Load reads and parses file from fsys.
func Load(fsys fs.FS, file string) (*Document, error) {
	if fsys == nil {
		return nil, fmt.Errorf("manifest: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", file, err)
	}
	return Parse(data, file)
}

// Parse decodes a manifest. source names the manifest in errors.
func Parse(data []byte, source string) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("manifest: file %s is empty", source)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", source, err)
	}
	doc.Source = source

	if len(doc.Views) == 0 {
		return nil, fmt.Errorf("manifest: file %s declares no views", source)
	}
	for name, v := range doc.Views {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("manifest: file %s declares a view with an empty name", source)
		}
		for _, list := range [][]string{v.Expose, v.Private} {
			for idx, exposure := range list {
				if strings.TrimSpace(exposure) == "" {
					return nil, fmt.Errorf("manifest: view %q (file %s) has an empty exposure at index %d", name, source, idx)
				}
			}
		}
	}
	return &doc, nil
}

// Names returns the declared view names, sorted.
func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Views))
	for name := range d.Views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
