// Package helpers provides ready-made helper maps for view.NewContext:
// HTML sanitisers backed by bluemonday and theme lookups backed by go-theme.
//
// Helpers return plain strings. Template engines that autoescape output
// need the value marked safe, e.g. `{{ sanitize(body.Value())|safe }}` in pongo2.
package helpers
