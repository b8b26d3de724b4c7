package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/reviewstation/engine/internal/config"
	"github.com/reviewstation/engine/internal/reviewstore"
	"github.com/reviewstation/engine/internal/vcs"
)

// repoRoot resolves the --repo flag to an absolute path, defaulting to the
// current working directory.
func repoRoot(c *cli.Context) (string, error) {
	if r := c.String("repo"); r != "" {
		return r, nil
	}
	return os.Getwd()
}

// openVCS builds a LocalGit backend for the resolved repo root.
func openVCS(ctx context.Context, c *cli.Context) (vcs.VCS, string, error) {
	root, err := repoRoot(c)
	if err != nil {
		return nil, "", err
	}
	v, err := vcs.NewLocalGit(ctx, root)
	if err != nil {
		return nil, "", fmt.Errorf("opening repository at %s: %w", root, err)
	}
	return v, root, nil
}

// loadConfig loads process configuration from the --config flag, if set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore builds a reviewstore.Store rooted at the configured central
// storage directory, falling back to REVIEW_HOME / the platform default.
func openStore(cfg *config.Config) (*reviewstore.Store, error) {
	root := cfg.Storage.Root
	if root == "" {
		var err error
		root, err = reviewstore.RootFromEnv()
		if err != nil {
			return nil, err
		}
	}
	return reviewstore.New(root), nil
}
