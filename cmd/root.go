// Package cmd defines and implements the CLI commands for the bookcat
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookcat",
		Short: "Harvests paginated book catalogs into relational tables",
		Long: `bookcat crawls paginated publisher catalogs concurrently, extracts
book records from page markup, normalizes author and role annotations,
and exports deduplicated books/authors/editors/years/roles tables
ready for a relational store.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newLoadCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
