// Command tempmap renders heat maps from scene files and serves them over
// HTTP.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "tempmap",
		Short:        "Render IDW heat maps from sparse samples",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newRampCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
