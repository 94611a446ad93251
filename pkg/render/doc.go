// Package render keeps the catalogue of template engines a view renderer can
// use, keyed by template file extension.
package render
