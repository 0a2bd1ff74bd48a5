package vkcore

import (
	"os"

	"github.com/charmbracelet/log"
)

// newComponentLogger returns a logger tagged with component. NewContext
// creates the one context-wide logger with it (component "context");
// the staging engine, descriptor manager, and recorder all log through
// that shared ctx.log.
func newComponentLogger(component string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "vkcore",
	})
	return l.With("component", component)
}
