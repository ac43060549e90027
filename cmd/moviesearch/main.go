package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	VERSION = "0.0.0-dev.0"
)

var rootCmd = &cobra.Command{
	Use:           "moviesearch",
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "Keyword search over a movie corpus",
	Long: `Keyword search over a movie corpus with an inverted index and
TF-IDF / BM25 scoring. Build the index once, then query it from the
command line or serve it over HTTP.`,
}

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

var rootArgs rootFlags

func init() {
	rootCmd.PersistentFlags().StringVar(&rootArgs.configPath, "config", "",
		"Path to a YAML config file. MOVIESEARCH_* environment variables override it.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error). Overrides the config file.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logFormat, "log-format", "",
		"Log format (text, json). Overrides the config file.")
	rootCmd.SetOut(os.Stdout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrf("✗ %v\n", err)
		os.Exit(1)
	}
}
