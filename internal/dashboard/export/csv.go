// Package export writes dashboard datasets in downloadable formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// WriteModulesCSV serialises the filtered module ranking.
func WriteModulesCSV(w io.Writer, state dashboard.FilterState, ds dashboard.RankedDataset) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	week := state.Week
	if week == "" {
		week = "all"
	}
	if err := writer.Write([]string{"Rank", "Module", "Count", "Week", "Basis", "Scope"}); err != nil {
		return err
	}
	for i, entry := range ds {
		if err := writer.Write([]string{
			strconv.Itoa(i + 1),
			entry.Label,
			formatFloat(entry.Value),
			week,
			string(state.Basis),
			string(state.Scope),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteReportCSV emits every label/count section of the report followed by
// the filtered module ranking. Absent sections are skipped.
func WriteReportCSV(w io.Writer, r *report.Report, state dashboard.FilterState, ds dashboard.RankedDataset) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Section", "Label", "Value"}); err != nil {
		return err
	}
	if r != nil {
		sections := []struct {
			name   string
			counts *report.Counts
		}{
			{"risk_counts", r.RiskCounts},
			{"by_reason", r.ByReason},
			{"resolved_counts", r.Resolved()},
			{"by_week_attendance", r.ByWeekAttendance},
			{"resolved_rate", r.ResolvedRate},
		}
		for _, section := range sections {
			for _, pair := range section.counts.Pairs() {
				if err := writer.Write([]string{section.name, pair.Label, formatFloat(pair.Value)}); err != nil {
					return err
				}
			}
		}
	}
	section := "modules:" + string(state.Basis) + ":" + string(state.Scope)
	if state.Week != "" {
		section += ":" + state.Week
	}
	for _, entry := range ds {
		if err := writer.Write([]string{section, entry.Label, formatFloat(entry.Value)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRowsCSV writes preview rows using the union of their columns.
func WriteRowsCSV(w io.Writer, rows []report.Row) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	columns := report.Columns(rows)
	if len(columns) == 0 {
		return nil
	}
	if err := writer.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = row.Value(col)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
