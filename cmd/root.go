package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docwatch",
		Short: "Watches lending company pages for newly published documents.",
		Long: `docwatch resolves each company's page on the marketplace site,
fetches it (escalating to a headless browser when the page is script-driven),
extracts the published documents, and reports anything not seen before.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (environment variables apply without one)")

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "docwatch: %v\n", err)
		os.Exit(1)
	}
}
