package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/movie-search/internal/corpus"
	"github.com/gcbaptista/movie-search/internal/search"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Load the corpus, build the index and save the snapshot",
	Args:  cobra.NoArgs,
	RunE:  buildCmdRun,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func buildCmdRun(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loader, closeLoader, err := corpus.FromConfig(ctx, env.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLoader() }()

	eng, err := env.newEngine(search.Options{}, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Rebuild(ctx, loader); err != nil {
		return err
	}
	if err := eng.SaveSnapshot(); err != nil {
		return err
	}

	stats, err := eng.Stats()
	if err != nil {
		return err
	}
	rootCmd.Println(`✔`, fmt.Sprintf("Indexed %d documents (%d terms) into %s",
		stats.DocumentCount, stats.TermCount, eng.SnapshotPath()))
	return nil
}
