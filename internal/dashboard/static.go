package dashboard

import (
	"github.com/odyssey-erp/soit-dashboard/internal/dashboard/chart"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// View ids. ModulesView is the only filterable view.
const (
	ModulesView        = "modules"
	RiskView           = "risk"
	ReasonsView        = "reasons"
	ResolvedView       = "resolved"
	WeekRiskView       = "week_risk"
	NonAttendanceView  = "non_attendance"
	ResolvedRateView   = "resolved_rate"
	RepeatStudentsView = "repeat_students"
)

// StaticHeight is the container height of fixed-size static charts.
const StaticHeight = 260

type staticView struct {
	id    string
	title string
	// sized views take their height from the Sizer instead of StaticHeight.
	sized bool
	build func(r *report.Report) (chart.Spec, bool)
}

var staticViews = []staticView{
	{id: RiskView, title: "Risk categories", build: countsSpec(chart.KindBar, "Count", func(r *report.Report) *report.Counts { return r.RiskCounts })},
	{id: ReasonsView, title: "Top reasons", build: countsSpec(chart.KindBar, "Top reasons", func(r *report.Report) *report.Counts { return r.ByReason })},
	{id: ResolvedView, title: "Resolved?", build: countsSpec(chart.KindRing, "Resolved?", (*report.Report).Resolved)},
	{id: WeekRiskView, title: "Risk by week", build: weekRiskSpec},
	{id: NonAttendanceView, title: "Non-attendance by week", build: lineSpec("Non-attendance", false, func(r *report.Report) *report.Counts { return r.ByWeekAttendance })},
	{id: ResolvedRateView, title: "Resolution rate by week", build: lineSpec("Resolved %", true, func(r *report.Report) *report.Counts { return r.ResolvedRate })},
	{id: RepeatStudentsView, title: "Repeatedly flagged students", sized: true, build: countsSpec(chart.KindHBar, "Flags", repeatCounts)},
}

// StaticViewIDs lists the static views in page order.
func StaticViewIDs() []string {
	out := make([]string, len(staticViews))
	for i, v := range staticViews {
		out[i] = v.id
	}
	return out
}

func countsSpec(kind chart.Kind, name string, pick func(*report.Report) *report.Counts) func(*report.Report) (chart.Spec, bool) {
	return func(r *report.Report) (chart.Spec, bool) {
		c := pick(r)
		if c.Empty() {
			return chart.Spec{}, false
		}
		return chart.Spec{
			Kind:   kind,
			Labels: c.Labels(),
			Series: []chart.Series{{Name: name, Values: c.Values()}},
		}, true
	}
}

func lineSpec(name string, percent bool, pick func(*report.Report) *report.Counts) func(*report.Report) (chart.Spec, bool) {
	return func(r *report.Report) (chart.Spec, bool) {
		spec, ok := countsSpec(chart.KindLine, name, pick)(r)
		spec.Percent = percent
		return spec, ok
	}
}

func repeatCounts(r *report.Report) *report.Counts {
	if r.RepeatedStudents == nil {
		return nil
	}
	return r.RepeatedStudents.TopCounts
}

// weekRiskSpec aligns every series to the week labels, padding short series
// with zeros and dropping surplus points.
func weekRiskSpec(r *report.Report) (chart.Spec, bool) {
	weeks := r.WeekLabels()
	if len(weeks) == 0 || len(r.WeekRisk.Series) == 0 {
		return chart.Spec{}, false
	}
	series := make([]chart.Series, 0, len(r.WeekRisk.Series))
	for _, s := range r.WeekRisk.Series {
		values := make([]float64, len(weeks))
		for i := range values {
			if i < len(s.Data) {
				values[i] = s.Data[i].Float()
			}
		}
		series = append(series, chart.Series{Name: string(s.Name), Values: values})
	}
	return chart.Spec{Kind: chart.KindLine, Labels: weeks, Series: series}, true
}
