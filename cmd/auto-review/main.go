package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "auto-review",
		Short: "Auto Reviewer - Autonomous code improvement daemon",
		Long: `Auto Reviewer runs Claude Code agents against a repository in
improve/review/fix cycles. Each cycle creates a branch per improvement
mode, opens a PR for real changes, and drives an automated review loop
through to merge or manual handoff.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
