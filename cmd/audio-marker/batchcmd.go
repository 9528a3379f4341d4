package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/atelier-socle/audiomarker/batch"
	"github.com/urfave/cli/v2"
)

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "run read or strip across many files at once",
		Subcommands: []*cli.Command{
			batchSubcommand(batch.OpRead, "read", "read every matching file and report a summary"),
			batchSubcommand(batch.OpStrip, "strip", "strip every matching file and report a summary"),
		},
	}
}

func batchSubcommand(op batch.OperationKind, name, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<pattern|directory>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "recursive"},
			&cli.IntFlag{Name: "concurrency", Value: batch.DefaultConcurrency},
		},
		Action: func(c *cli.Context) error {
			target := c.Args().First()
			if target == "" {
				return usageError("batch %s: missing <pattern|directory>", name)
			}

			paths, err := resolveBatchTargets(target, c.Bool("recursive"))
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return usageError("batch %s: no matching files", name)
			}

			facade, err := newFacade(c)
			if err != nil {
				return err
			}

			items := make([]batch.Item, len(paths))
			for i, p := range paths {
				items[i] = batch.Item{URL: p, Operation: op}
			}

			summary := batch.Run(context.Background(), facade, items, c.Int("concurrency"))
			printHeading("batch %s: %d/%d succeeded", name, summary.Succeeded, summary.Total)
			for _, err := range summary.Errors {
				printWarn("%v", err)
			}
			if summary.Failed > 0 {
				return cli.Exit("one or more items failed", 1)
			}
			return nil
		},
	}
}

var audioExtensions = map[string]bool{".mp3": true, ".m4a": true, ".m4b": true}

// resolveBatchTargets expands target into a list of audio file paths:
// a single file is returned as-is, a directory is scanned (optionally
// recursively) for recognised extensions, and anything else is treated
// as a glob pattern.
func resolveBatchTargets(target string, recursive bool) ([]string, error) {
	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		return walkAudioFiles(target, recursive)
	}

	matches, err := filepath.Glob(target)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func walkAudioFiles(dir string, recursive bool) ([]string, error) {
	var out []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}
