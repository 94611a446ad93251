// Package manifest declares controller types in YAML:
//
//	views:
//	  base:
//	    paths: [templates]
//	    layout: app
//	    default_format: html
//	  users:
//	    extends: base
//	    template: users
//	    expose: [users]
//	    private: [session]
//	  bare:
//	    extends: users
//	    layout: false
//
// Build turns a document into view.ControllerType values, parents first.
package manifest
