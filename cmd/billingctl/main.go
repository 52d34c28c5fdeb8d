// Command billingctl runs administrative tasks against the billing core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:           "billingctl",
		Short:         "Chat billing admin tool",
		Long:          `billingctl applies migrations, runs renewal sweeps and issues development tokens.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadEnvFiles(envFiles)
		},
	}
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "additional .env files to load, later files win")

	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(sweepCmd())
	cmd.AddCommand(pricingCmd())
	cmd.AddCommand(tokenCmd())
	return cmd
}
