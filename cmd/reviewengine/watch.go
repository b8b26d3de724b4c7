package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/reviewstation/engine/internal/logging"
	"github.com/reviewstation/engine/internal/watcher"
)

// watchCommand exposes watcher.New 1:1 (spec.md §4.6): watches a repo root
// and prints coalesced notifications to stdout until interrupted.
func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "watch a repository for working-tree and review-state changes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "storage-sub", Usage: "repo-relative path of the review store, if nested inside the repo"},
		},
		Action: runWatch,
	}
}

func runWatch(c *cli.Context) error {
	root, err := repoRoot(c)
	if err != nil {
		return err
	}

	log := logging.ForComponent("watch")
	w, err := watcher.New(root, c.String("storage-sub"), log)
	if err != nil {
		return wrapInfra(err)
	}
	defer w.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", root)
	for {
		select {
		case n, ok := <-w.Notifications():
			if !ok {
				return nil
			}
			fmt.Printf("%s %s\n", n.Kind, n.RepoPath)
		case <-sigCh:
			return nil
		}
	}
}
