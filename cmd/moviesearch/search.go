package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/movie-search/services"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search movies using BM25",
	Args:  cobra.ExactArgs(1),
	RunE:  searchCmdRun,
}

type searchFlags struct {
	limit int
	k1    float64
	b     float64
}

var searchArgs searchFlags

func init() {
	searchCmd.Flags().IntVar(&searchArgs.limit, "limit", 0,
		"Maximum number of results. Zero uses the configured default.")
	searchCmd.Flags().Float64Var(&searchArgs.k1, "k1", 0,
		"BM25 term-frequency saturation. Unset uses the configured default.")
	searchCmd.Flags().Float64Var(&searchArgs.b, "b", 0,
		"BM25 length normalization in [0,1]. Unset uses the configured default.")
	rootCmd.AddCommand(searchCmd)
}

func searchCmdRun(cmd *cobra.Command, args []string) error {
	eng, err := openSnapshot()
	if err != nil {
		return err
	}
	defer eng.Close()

	query := services.SearchQuery{
		QueryString: args[0],
		Limit:       searchArgs.limit,
	}
	if cmd.Flags().Changed("k1") {
		query.K1 = &searchArgs.k1
	}
	if cmd.Flags().Changed("b") {
		query.B = &searchArgs.b
	}

	result, err := eng.Search(context.Background(), query)
	if err != nil {
		return err
	}

	rootCmd.Println("Searching for:", args[0])
	for i, hit := range result.Hits {
		rootCmd.Println(fmt.Sprintf("%d. (%d) %s - Score: %.2f", i+1, hit.Document.ID, hit.Document.Title, hit.Score))
	}
	if len(result.Hits) == 0 {
		rootCmd.Println("No results.")
	}
	return nil
}
