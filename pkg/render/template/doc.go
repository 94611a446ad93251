// Package template defines the engine-agnostic template contract the view
// renderer depends on, plus adapters for concrete engines.
package template
