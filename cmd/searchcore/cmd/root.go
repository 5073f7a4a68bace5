// Package cmd provides the CLI commands for searchcore.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docuchat/searchcore/internal/logging"
)

var (
	configPath string
	debugMode  bool
)

// NewRootCmd creates the root command for the searchcore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchcore",
		Short: "Document-set-aware cached hybrid search",
		Long: `searchcore answers search queries over scoped document sets by fanning
out to per-scope hybrid indexes (keyword + vector), merging results under a
single relevance ordering, and caching result sets keyed by document-set
fingerprints so a cached answer can never outlive the document set it was
computed against.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "info"
			if debugMode {
				level = "debug"
			}
			logging.SetupDefault(logging.Config{Level: level, Text: true})
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "searchcore.yaml", "Path to the settings file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newFingerprintCmd())
	cmd.AddCommand(newCacheCmd())

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
