// Package logging provides a review-scoped structured logger built on
// zerolog, used by the classifier, watcher, and sync server to correlate
// log lines to a specific comparison or component.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// base is the process-wide zerolog logger. Dev mode renders a colorized
// console writer; production mode emits newline-delimited JSON.
var (
	base     zerolog.Logger
	baseOnce sync.Once
)

// Init configures the base logger. Safe to call more than once; only the
// first call takes effect.
func Init(devMode bool, level zerolog.Level) {
	baseOnce.Do(func() {
		zerolog.SetGlobalLevel(level)
		if devMode {
			base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).
				With().Timestamp().Logger()
		} else {
			base = zerolog.New(os.Stderr).With().Timestamp().Logger()
		}
	})
}

// Base returns the process-wide logger, initializing a sane default (info
// level, console writer) if Init was never called.
func Base() zerolog.Logger {
	Init(true, zerolog.InfoLevel)
	return base
}

// ForComparison returns a child logger with the comparison key and repo
// path attached to every line, the same way a review id gets tagged onto
// every line elsewhere.
func ForComparison(repoPath, comparisonKey string) zerolog.Logger {
	return Base().With().
		Str("repo", repoPath).
		Str("comparison", comparisonKey).
		Logger()
}

// ForComponent returns a child logger tagged with a component name, used by
// the watcher and sync server for subsystem-scoped logging.
func ForComponent(name string) zerolog.Logger {
	return Base().With().Str("component", name).Logger()
}
