package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// SelectOptions configures one module ranking preview.
type SelectOptions struct {
	Path       string
	Week       string
	Basis      string
	Scope      string
	Policy     string
	JSONOutput bool
	Stdout     io.Writer
}

// SelectResult is the machine readable ranking.
type SelectResult struct {
	State   dashboard.FilterState   `json:"state"`
	Height  int                     `json:"height"`
	Modules dashboard.RankedDataset `json:"modules"`
}

// RunSelect ranks the modules of the report at opts.Path for the requested
// filters.
func RunSelect(ctx context.Context, opts SelectOptions) (SelectResult, error) {
	store, err := report.Load(ctx, report.FileSource{Path: opts.Path})
	if err != nil {
		return SelectResult{}, err
	}
	sizer, err := dashboard.NewSizer(dashboard.HeightPolicy(opts.Policy))
	if err != nil {
		return SelectResult{}, err
	}
	state := dashboard.FilterState{
		Week:  opts.Week,
		Basis: dashboard.Basis(opts.Basis),
		Scope: dashboard.Scope(opts.Scope),
	}.Normalize()
	ds := dashboard.Select(store.Report(), state)
	if ds == nil {
		ds = dashboard.RankedDataset{}
	}
	return SelectResult{State: state, Height: sizer.Size(ds.Len()), Modules: ds}, nil
}

func writeSelect(w io.Writer, res SelectResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	week := res.State.Week
	if week == "" {
		week = "all"
	}
	fmt.Fprintf(w, "week=%s basis=%s scope=%s height=%dpx\n", week, res.State.Basis, res.State.Scope, res.Height)
	if res.Modules.Empty() {
		fmt.Fprintln(w, "(no modules, view hidden)")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tMODULE\tCOUNT")
	for i, e := range res.Modules {
		fmt.Fprintf(tw, "%d\t%s\t%g\n", i+1, e.Label, e.Value)
	}
	return tw.Flush()
}

func newSelectCommand() *cobra.Command {
	opts := SelectOptions{}
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Preview the module ranking for a filter state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := RunSelect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return writeSelect(cmd.OutOrStdout(), res, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVarP(&opts.Path, "file", "f", "data/report.json", "Report payload (JSON or YAML)")
	cmd.Flags().StringVar(&opts.Week, "week", "all", "Week label or all")
	cmd.Flags().StringVar(&opts.Basis, "basis", string(dashboard.BasisAll), "all | attendance")
	cmd.Flags().StringVar(&opts.Scope, "scope", string(dashboard.ScopeAll), "all | top3 | top5 | top10")
	cmd.Flags().StringVar(&opts.Policy, "height-policy", string(dashboard.HeightClamped), "clamped | unbounded")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output in JSON format")
	return cmd
}
