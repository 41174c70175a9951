// Package logging wraps github.com/charmbracelet/log into the single
// logger shape used across the module, replacing the slog setup
// formerly done ad hoc in each cobra command.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New builds a charmbracelet/log logger writing to stderr, at Debug
// level when verbose is set and Info otherwise.
func New(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return logger
}
