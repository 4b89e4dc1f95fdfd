package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "boxstrap",
	Short: "Development container bootstrap",
	Long: "Bootstraps a development container at startup: selects and configures an AWS\n" +
		"credential strategy, joins the overlay network, and manages the certificate\n" +
		"chain and backing infrastructure the strategies depend on.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
