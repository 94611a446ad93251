package helpers

import (
	"errors"
	"fmt"
	"sort"

	theme "github.com/goliatone/go-theme"
)

// Theme resolves name/variant through selector and returns helpers bound to
// the selection:
//
//	asset(key)  URL of a theme asset, "" when unknown
//	token(key)  design token value, "" when unknown
//	theme()     the resolved *theme.RendererConfig
//
// Variant tokens, templates and assets override the base manifest.
func Theme(selector theme.ThemeSelector, name, variant string) (map[string]any, error) {
	if selector == nil {
		return nil, errors.New("helpers: theme selector is required")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("helpers: select theme %q: %w", name, err)
	}
	cfg := ThemeConfig(selection)
	if cfg == nil {
		return nil, fmt.Errorf("helpers: theme %q has no manifest", name)
	}

	tokens := selection.Tokens()
	return map[string]any{
		"asset": func(key string) string {
			url, _ := selection.Asset(key)
			return url
		},
		"token": func(key string) string { return tokens[key] },
		"theme": func() *theme.RendererConfig { return cfg },
	}, nil
}

// ThemeConfig flattens a selection into a renderer config covering every
// template key the manifest or the selected variant declares. It returns nil
// when the selection carries no manifest.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	keys := make(map[string]string, len(selection.Manifest.Templates))
	for key := range selection.Manifest.Templates {
		keys[key] = ""
	}
	for key := range selection.Manifest.Variants[selection.Variant].Templates {
		keys[key] = ""
	}
	cfg := selection.RendererTheme(keys)
	return &cfg
}

// Merge combines helper maps. Later maps win.
func Merge(sets ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, set := range sets {
		for key, value := range set {
			out[key] = value
		}
	}
	return out
}

// Names lists helper names, sorted.
func Names(set map[string]any) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
