// Command reviewengine is a thin dispatcher over the engine's packages: a
// single binary, urfave/cli/v2 commands, each command a direct 1:1 call
// into diff/symbol/classifier/review-state/watcher/server packages. It
// exists only so those packages have a realistic caller; feature work
// belongs in the packages, not here.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version information, set by -ldflags during build.
var (
	version   = "development"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// infraError marks an error as an infrastructure failure (spec.md §6 exit
// code 2), as opposed to a test/eval failure (exit code 1).
type infraError struct{ err error }

func (e *infraError) Error() string { return e.err.Error() }
func (e *infraError) Unwrap() error { return e.err }

func wrapInfra(err error) error {
	if err == nil {
		return nil
	}
	return &infraError{err: err}
}

func main() {
	app := &cli.App{
		Name:    "reviewengine",
		Usage:   "diff/symbol/classify/review engine for a local code-review workstation",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "repo",
				Usage: "repository root (defaults to the current directory)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "load configuration from `FILE`",
			},
		},
		Commands: []*cli.Command{
			diffCommand(),
			symbolsCommand(),
			classifyCommand(),
			reviewCommand(),
			watchCommand(),
			serveCommand(),
		},
	}

	err := app.Run(os.Args)
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %s\n", err)

	var ie *infraError
	if asInfraError(err, &ie) {
		os.Exit(2)
	}
	os.Exit(1)
}

func asInfraError(err error, target **infraError) bool {
	ie, ok := err.(*infraError)
	if !ok {
		return false
	}
	*target = ie
	return true
}
