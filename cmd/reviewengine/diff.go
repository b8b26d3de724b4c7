package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/reviewstation/engine/pkg/models"
)

// diffCommand exposes vcs.VCS.ListFiles/GetDiff 1:1 (spec.md §4.1/§4.2).
func diffCommand() *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "show the file tree or unified diff for a comparison",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "old", Usage: "old ref", Value: "HEAD"},
			&cli.StringFlag{Name: "new", Usage: "new ref"},
			&cli.BoolFlag{Name: "working-tree", Usage: "compare old ref against the working tree"},
			&cli.BoolFlag{Name: "staged", Usage: "compare old ref against the index"},
			&cli.BoolFlag{Name: "tree", Usage: "print the file tree instead of unified diff text"},
		},
		Action: runDiff,
	}
}

func runDiff(c *cli.Context) error {
	ctx := context.Background()
	v, _, err := openVCS(ctx, c)
	if err != nil {
		return wrapInfra(err)
	}

	cmp := models.Comparison{
		Old:         c.String("old"),
		New:         c.String("new"),
		WorkingTree: c.Bool("working-tree"),
		StagedOnly:  c.Bool("staged"),
	}
	cmp.Key = models.BuildComparisonKey(cmp.Old, cmp.New, cmp.WorkingTree, cmp.StagedOnly)

	if c.Bool("tree") {
		entries, err := v.ListFiles(ctx, cmp)
		if err != nil {
			return err
		}
		return printJSON(entries)
	}

	diffText, err := v.GetDiff(ctx, cmp)
	if err != nil {
		return err
	}
	fmt.Println(diffText)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
