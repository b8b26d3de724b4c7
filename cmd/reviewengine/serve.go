package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/reviewstation/engine/internal/classifier"
	"github.com/reviewstation/engine/internal/companion"
	"github.com/reviewstation/engine/internal/logging"
	"github.com/reviewstation/engine/internal/syncserver"
	"github.com/reviewstation/engine/internal/vcs"
	"github.com/reviewstation/engine/internal/watcher"
)

// serveCommand exposes syncserver.Server 1:1 (spec.md §4.7).
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the authenticated sync server",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "override the configured port"},
			&cli.StringFlag{Name: "token", Usage: "override the auth token (otherwise read/generated from server.token_file)"},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	if c.IsSet("port") {
		port = c.Int("port")
	}

	token := c.String("token")
	if token == "" {
		token, err = resolveToken(cfg.Server.TokenFile)
		if err != nil {
			return wrapInfra(err)
		}
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	taxonomy := classifier.LoadTaxonomy(nil)
	watchers := watcher.NewRegistry()
	log := logging.ForComponent("syncserver")

	newVCS := func(ctx context.Context, repoPath string) (vcs.VCS, error) {
		return vcs.NewLocalGit(ctx, repoPath)
	}

	server := syncserver.NewServer(syncserver.Config{
		Port:         port,
		Token:        token,
		Store:        store,
		NewVCS:       newVCS,
		Watchers:     watchers,
		BaseTaxonomy: taxonomy,
		Companion:    companion.NewReader(),
		Log:          log,
	})

	fmt.Fprintf(os.Stderr, "sync server starting on port %d\n", port)
	return server.Start(context.Background())
}

// resolveToken reads the bearer token from tokenFile, generating and
// persisting a new random one if the file doesn't exist yet (spec.md §4.7
// server-state bootstrap).
func resolveToken(tokenFile string) (string, error) {
	path := expandHome(tokenFile)

	if data, err := os.ReadFile(path); err == nil {
		token := strings.TrimSpace(string(data))
		if token != "" {
			return token, nil
		}
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating auth token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing auth token: %w", err)
	}
	fmt.Fprintf(os.Stderr, "generated new auth token at %s\n", path)
	return token, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
