package dashboardhttp

import (
	"encoding/json"
	"html/template"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	"github.com/odyssey-erp/soit-dashboard/internal/preference"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// Option is one entry of a filter control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// KPI is one headline card.
type KPI struct {
	Label string
	Value int
}

// ChartView is one view container as the template sees it.
type ChartView struct {
	ID      string
	Title   string
	Visible bool
	Height  int
	SVG     template.HTML
	Config  template.JS
}

// Table is a rendered row set.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// DashboardViewModel is the template payload of the dashboard page.
type DashboardViewModel struct {
	HasData      bool
	Fingerprint  string
	Theme        preference.Theme
	ThemeToggle  string
	State        dashboard.FilterState
	WeekOptions  []Option
	BasisOptions []Option
	ScopeOptions []Option
	KPIs         []KPI
	Modules      ChartView
	ModuleRows   dashboard.RankedDataset
	Charts       []ChartView
	RepeatRows   Table
	SampleRows   Table
}

func weekOptions(r *report.Report, selected string) []Option {
	opts := []Option{{Value: "all", Label: "All weeks", Selected: selected == ""}}
	for _, w := range r.WeekLabels() {
		opts = append(opts, Option{Value: w, Label: w, Selected: w == selected})
	}
	return opts
}

func basisOptions(selected dashboard.Basis) []Option {
	opts := make([]Option, 0, len(dashboard.Bases))
	for _, b := range dashboard.Bases {
		opts = append(opts, Option{Value: string(b), Label: b.Label(), Selected: b == selected})
	}
	return opts
}

func scopeOptions(selected dashboard.Scope) []Option {
	opts := make([]Option, 0, len(dashboard.Scopes))
	for _, s := range dashboard.Scopes {
		opts = append(opts, Option{Value: string(s), Label: s.Label(), Selected: s == selected})
	}
	return opts
}

func kpis(r *report.Report) []KPI {
	if r == nil {
		return nil
	}
	var out []KPI
	if r.TotalRecords != nil {
		out = append(out, KPI{Label: "Total records", Value: *r.TotalRecords})
	}
	if r.UniqueStudents != nil {
		out = append(out, KPI{Label: "Unique students", Value: *r.UniqueStudents})
	}
	return out
}

func table(rows []report.Row) Table {
	cols := report.Columns(rows)
	t := Table{Columns: cols, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = row.Value(c)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// chartConfigJS embeds a Chart.js config in a JSON script element.
func chartConfigJS(raw json.RawMessage) template.JS {
	if len(raw) == 0 {
		return ""
	}
	return template.JS(raw)
}
