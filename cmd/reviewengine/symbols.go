package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/reviewstation/engine/internal/diffparser"
	"github.com/reviewstation/engine/internal/symbols"
	"github.com/reviewstation/engine/pkg/models"
)

// symbolsCommand exposes symbols.Extract/DiffFile 1:1 (spec.md §4.3) for a
// single file within a comparison.
func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:      "symbols",
		Usage:     "diff the symbol tree of one file across a comparison",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "old", Usage: "old ref", Value: "HEAD"},
			&cli.StringFlag{Name: "new", Usage: "new ref"},
			&cli.BoolFlag{Name: "working-tree", Usage: "diff against the working tree"},
		},
		Action: runSymbols,
	}
}

func runSymbols(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: FILE")
	}
	file := c.Args().Get(0)

	ctx := context.Background()
	v, root, err := openVCS(ctx, c)
	if err != nil {
		return wrapInfra(err)
	}

	cmp := models.Comparison{Old: c.String("old"), New: c.String("new"), WorkingTree: c.Bool("working-tree")}

	diffText, err := v.GetDiff(ctx, cmp)
	if err != nil {
		return err
	}
	var fileHunks []*models.Hunk
	for _, h := range diffparser.Parse(diffText) {
		if h.FilePath == file {
			fileHunks = append(fileHunks, h)
		}
	}

	oldLines, oldErr := v.GetFileLines(ctx, cmp.Old, file)

	var newLines []string
	var newErr error
	if cmp.WorkingTree {
		var b []byte
		b, newErr = os.ReadFile(filepath.Join(root, file))
		if newErr == nil {
			newLines = strings.Split(string(b), "\n")
		}
	} else {
		newLines, newErr = v.GetFileLines(ctx, cmp.New, file)
	}

	if oldErr != nil {
		return fmt.Errorf("reading old content: %w", oldErr)
	}
	if newErr != nil {
		return fmt.Errorf("reading new content: %w", newErr)
	}

	oldSyms, hasGrammar := symbols.Extract(file, strings.Join(oldLines, "\n"))
	newSyms, _ := symbols.Extract(file, strings.Join(newLines, "\n"))
	result := symbols.DiffFile(file, hasGrammar, oldSyms, newSyms, fileHunks)
	return printJSON(result)
}
