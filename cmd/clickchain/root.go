// Package main provides the entry point for the clickchain CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for clickchain.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clickchain",
		Short: "Markov transition statistics for page navigation logs",
		Long: `Clickchain analyzes page navigation logs and reports first-order
Markov transition statistics: where visitors enter the site, and which
pages they leave from without going anywhere else.

Input is one navigation event per line, "source,destination". The
source "-1" marks a session start and the destination "B" marks a
bounce; "C" marks a normal session close.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewDiffCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
