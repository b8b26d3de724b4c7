package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/reviewstation/engine/internal/reviewstore"
	"github.com/reviewstation/engine/pkg/models"
)

// reviewCommand exposes the review-state store's load/save 1:1 (spec.md
// §4.5/§6): "show" loads the persisted state for a comparison, "save"
// writes a new version with optimistic-concurrency checking.
func reviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "show or save the persisted review state for a comparison",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "print the persisted review state for a comparison",
				ArgsUsage: "COMPARISON_KEY",
				Action:    runReviewShow,
			},
			{
				Name:      "save",
				Usage:     "save a review state read from stdin as JSON",
				ArgsUsage: "COMPARISON_KEY",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "expected-version", Usage: "version the save is conditioned on"},
				},
				Action: runReviewSave,
			},
		},
	}
}

func repoKeyFor(root string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(root))
}

func runReviewShow(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: COMPARISON_KEY")
	}

	root, err := repoRoot(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	cmp, err := models.ParseComparisonKey(c.Args().Get(0))
	if err != nil {
		return err
	}

	state, err := store.Load(repoKeyFor(root), cmp)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func runReviewSave(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: COMPARISON_KEY")
	}

	root, err := repoRoot(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	cmp, err := models.ParseComparisonKey(c.Args().Get(0))
	if err != nil {
		return err
	}

	var state models.ReviewState
	dec := json.NewDecoder(os.Stdin)
	if err := dec.Decode(&state); err != nil {
		return fmt.Errorf("decoding review state from stdin: %w", err)
	}
	state.Comparison = cmp

	if c.IsSet("expected-version") {
		state.Version = c.Uint64("expected-version")
	}
	expected := reviewstore.PrepareForSave(&state)

	repoKey := repoKeyFor(root)
	if err := store.Save(repoKey, root, &state, expected); err != nil {
		return err
	}

	saved, err := store.Load(repoKey, cmp)
	if err != nil {
		return err
	}
	return printJSON(saved)
}
