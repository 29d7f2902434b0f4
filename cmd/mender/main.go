package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/mender/internal/cli"
	"github.com/example/mender/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mender",
		Short:   "mender - bounded self-healing for failing missions",
		Version: version.String(),
		Long: `mender classifies failure evidence, analyzes the intent and blast
radius of a requested change, and runs a bounded repair loop that
records every attempt in a durable audit ledger. Anything it cannot
fix safely is escalated to a human with a consolidated log.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.ClassifyCmd())
	rootCmd.AddCommand(cli.AnalyzeCmd())
	rootCmd.AddCommand(cli.HealCmd())
	rootCmd.AddCommand(cli.AuditCmd())
	rootCmd.AddCommand(cli.EscalationCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
