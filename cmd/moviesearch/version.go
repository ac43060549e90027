package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	RunE:  versionCmdRun,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionCmdRun(cmd *cobra.Command, args []string) error {
	_, err := fmt.Fprintln(rootCmd.OutOrStdout(), "moviesearch:", VERSION)
	if err != nil {
		return fmt.Errorf("failed to print version: %w", err)
	}
	return nil
}
