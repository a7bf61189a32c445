package dashboard

import (
	"cmp"
	"context"
	"slices"

	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// Entry is one ranked label/value pair.
type Entry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// RankedDataset is sorted by value descending, ties in source order.
type RankedDataset []Entry

// Len returns the number of entries.
func (d RankedDataset) Len() int { return len(d) }

// Empty reports whether there is nothing to draw.
func (d RankedDataset) Empty() bool { return len(d) == 0 }

// Labels returns the entry labels in rank order.
func (d RankedDataset) Labels() []string {
	out := make([]string, len(d))
	for i, e := range d {
		out[i] = e.Label
	}
	return out
}

// Values returns the entry values in rank order.
func (d RankedDataset) Values() []float64 {
	out := make([]float64, len(d))
	for i, e := range d {
		out[i] = e.Value
	}
	return out
}

// Select ranks the module counts chosen by state. A week with no per-week
// entry falls back to the all-weeks mapping; a nil report or missing mapping
// yields an empty dataset.
func Select(r *report.Report, state FilterState) RankedDataset {
	state = state.Normalize()
	source := r.ModuleCounts(state.Basis == BasisAttendance, state.Week)
	pairs := source.Pairs()
	if len(pairs) == 0 {
		return RankedDataset{}
	}
	ranked := make(RankedDataset, len(pairs))
	for i, p := range pairs {
		ranked[i] = Entry{Label: p.Label, Value: p.Value}
	}
	slices.SortStableFunc(ranked, func(a, b Entry) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if n := state.Scope.Limit(); n > 0 && len(ranked) > n {
		ranked = ranked[:n:n]
	}
	return ranked
}

// Selector produces the module dataset for a filter state.
type Selector interface {
	Select(ctx context.Context, state FilterState) (RankedDataset, error)
}

// ReportSelector runs Select directly against a report.
type ReportSelector struct {
	Report *report.Report
}

// Select implements Selector.
func (s ReportSelector) Select(_ context.Context, state FilterState) (RankedDataset, error) {
	return Select(s.Report, state), nil
}

// Combinations enumerates every filter state the UI can produce for r: each
// week label plus "all weeks", crossed with every basis and scope.
func Combinations(r *report.Report) []FilterState {
	weeks := append([]string{""}, r.WeekLabels()...)
	out := make([]FilterState, 0, len(weeks)*len(Bases)*len(Scopes))
	for _, week := range weeks {
		for _, basis := range Bases {
			for _, scope := range Scopes {
				out = append(out, FilterState{Week: week, Basis: basis, Scope: scope})
			}
		}
	}
	return out
}
