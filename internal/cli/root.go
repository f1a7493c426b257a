// Package cli provides the homelibrary command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "homelibrary",
		Short:        "Shared home library server",
		SilenceUsage: true,
	}
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(migrateCmd())
	return cmd
}
