// Package cli wires the tally commands.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "tally",
		Short:        "Personal ledger analytics",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// Missing .env is fine, the environment may be set directly.
			if envFile != "" {
				_ = godotenv.Load(envFile)
			} else {
				_ = godotenv.Load()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to an env file to load before reading configuration")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}

// Version is stamped at build time via -ldflags "-X tally/internal/cli.Version=...".
var Version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tally version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("tally " + Version)
		},
	}
}
