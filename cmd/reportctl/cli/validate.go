package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// Exit codes of the validate command.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitWarnings = 10
)

// ValidateOptions configures one validate run.
type ValidateOptions struct {
	Path       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// ValidateSummary is the machine readable validate result.
type ValidateSummary struct {
	OK          bool     `json:"ok"`
	Available   bool     `json:"available"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Weeks       []string `json:"weeks"`
	Warnings    []string `json:"warnings"`
}

// ValidateCommand loads the report at opts.Path and reports invariant
// violations. It returns the process exit code.
func ValidateCommand(ctx context.Context, opts ValidateOptions) int {
	store, err := report.Load(ctx, report.FileSource{Path: opts.Path})
	if err != nil {
		fmt.Fprintf(opts.Stderr, "validate: %v\n", err)
		return ExitFailure
	}
	summary := ValidateSummary{
		Available:   store.Available(),
		Fingerprint: store.Fingerprint(),
		Weeks:       store.Report().WeekLabels(),
		Warnings:    []string{},
	}
	for _, w := range report.Validate(store.Report()) {
		summary.Warnings = append(summary.Warnings, w.String())
	}
	summary.OK = summary.Available && len(summary.Warnings) == 0
	if summary.Weeks == nil {
		summary.Weeks = []string{}
	}

	if opts.JSONOutput {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(opts.Stderr, "validate: encode: %v\n", err)
			return ExitFailure
		}
	} else {
		switch {
		case !summary.Available:
			fmt.Fprintf(opts.Stdout, "no report at %s\n", opts.Path)
		case summary.OK:
			fmt.Fprintf(opts.Stdout, "ok %s (%d weeks)\n", summary.Fingerprint, len(summary.Weeks))
		default:
			for _, w := range summary.Warnings {
				fmt.Fprintln(opts.Stdout, w)
			}
		}
	}

	switch {
	case !summary.Available:
		return ExitFailure
	case len(summary.Warnings) > 0:
		return ExitWarnings
	default:
		return ExitOK
	}
}

func newValidateCommand() *cobra.Command {
	opts := ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a report payload against the count invariants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			if code := ValidateCommand(cmd.Context(), opts); code != ExitOK {
				return exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Path, "file", "f", "data/report.json", "Report payload (JSON or YAML)")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output in JSON format")
	return cmd
}
