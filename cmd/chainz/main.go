package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	configFile string
	envFile    string

	rootCmd = &cobra.Command{
		Use:   "chainz",
		Short: "Decorated operation chains against an organization service",
		Long: `chainz runs demonstration scenarios that wrap organization service
calls in decorator chains: retries, logging, timing, loops and projections.

Scenarios run against an in-memory service with failure injection, so
retries and fallbacks can be watched without a real backend.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file loaded before reading CHAINZ_* variables")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenarios",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available scenarios:")
		fmt.Fprintln(out)
		for _, s := range scenarios() {
			fmt.Fprintf(out, "  %-12s %s\n", s.Name, s.Description)
		}
	},
}
