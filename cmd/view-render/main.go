// Command view-render renders views declared in a YAML manifest.
//
//	view-render render users --manifest views.yaml --data users.yaml
//	view-render render users --format txt --output users.txt
//	view-render list --manifest views.yaml
//
// Flags can also be set through VIEW_* environment variables, e.g.
// VIEW_MANIFEST or VIEW_LOG_LEVEL.
package main

import (
	"fmt"
	"os"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd(newApp(os.Stdin, os.Stdout, os.Stderr)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
