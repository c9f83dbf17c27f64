package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/triage/cmd/cli/cases"
	"github.com/spf13/cobra"
	"os"
)

func init() {
	// A missing .env file is fine, the environment may be set by other means.
	_ = godotenv.Load()
	rootCmd.AddGroup(cases.Group)
	rootCmd.AddCommand(cases.Generate)
	rootCmd.AddCommand(cases.List)
}

var rootCmd = &cobra.Command{
	Use:  "triage-cli",
	Long: `Command line utilities for Triage https://github.com/myrjola/triage`,
	Run: func(_ *cobra.Command, _ []string) {
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
