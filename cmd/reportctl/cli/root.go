// Package cli holds the reportctl commands.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = NewRootCommand()

// NewRootCommand assembles the reportctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "reportctl",
		Short: "Operate SOIT dashboard reports",
		Long: `reportctl checks report payloads, previews module rankings and warms the
dashboard selection cache.

Examples:
  reportctl validate --file data/report.json
  reportctl select --file data/report.json --basis attendance --scope top5
  reportctl warmup --file data/report.json --redis 127.0.0.1:6379
  reportctl warmup --enqueue`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCommand(), newSelectCommand(), newWarmupCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitError carries a specific process exit code.
type exitError struct {
	code int
}

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
