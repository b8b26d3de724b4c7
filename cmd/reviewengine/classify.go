package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/reviewstation/engine/internal/classifier"
	"github.com/reviewstation/engine/internal/config"
	"github.com/reviewstation/engine/internal/diffparser"
	"github.com/reviewstation/engine/internal/logging"
	"github.com/reviewstation/engine/pkg/models"
)

// classifyCommand runs the two-stage classifier over every hunk in a
// comparison (spec.md §4.4/§6): static rules first, then the AI batch
// fallback for whatever the rules left unlabeled.
func classifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "classify every hunk in a comparison as trivially-safe or needs-attention",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "old", Usage: "old ref", Value: "HEAD"},
			&cli.StringFlag{Name: "new", Usage: "new ref"},
			&cli.BoolFlag{Name: "working-tree", Usage: "diff against the working tree"},
			&cli.StringFlag{Name: "ai-command", Usage: "override the AI subprocess command"},
			&cli.StringFlag{Name: "ai-model", Usage: "override the AI model"},
		},
		Action: runClassify,
	}
}

func runClassify(c *cli.Context) error {
	ctx := context.Background()
	v, root, err := openVCS(ctx, c)
	if err != nil {
		return wrapInfra(err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	cmp := models.Comparison{Old: c.String("old"), New: c.String("new"), WorkingTree: c.Bool("working-tree")}
	cmp.Key = models.BuildComparisonKey(cmp.Old, cmp.New, cmp.WorkingTree, cmp.StagedOnly)
	diffText, err := v.GetDiff(ctx, cmp)
	if err != nil {
		return err
	}
	hunks := diffparser.Parse(diffText)

	extByPath := make(map[string]string, len(hunks))
	seen := make(map[string]bool)
	for _, h := range hunks {
		if seen[h.FilePath] {
			continue
		}
		seen[h.FilePath] = true
		extByPath[h.FilePath] = strings.TrimPrefix(filepath.Ext(h.FilePath), ".")
	}

	labels, err := config.LoadRepoTaxonomy(root)
	if err != nil {
		return err
	}
	tax := classifier.LoadTaxonomy(labels)

	aiCfg := classifier.AIConfig{
		BatchSize:     cfg.Classifier.BatchSize,
		MaxConcurrent: cfg.Classifier.MaxConcurrent,
		Command:       cfg.Classifier.Command,
		Model:         cfg.Classifier.Model,
		RatePerSecond: cfg.Classifier.RatePerSecond,
	}
	if override := c.String("ai-command"); override != "" {
		aiCfg.Command = override
	}
	if override := c.String("ai-model"); override != "" {
		aiCfg.Model = override
	}

	log := logging.ForComparison(root, cmp.Key)
	states, err := classifier.ClassifyAll(ctx, hunks, extByPath, nil, tax, aiCfg, log, nil)
	if err != nil {
		return wrapInfra(err)
	}

	return printJSON(states)
}
