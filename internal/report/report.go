// Package report holds the immutable, pre-computed analytics payload that the
// dashboard renders from.
package report

// UnknownLabel replaces null or missing resolution states.
const UnknownLabel = "Unknown"

// Report is the pre-aggregated payload. Every mapping may be absent or empty;
// both mean "no data" for the corresponding view.
type Report struct {
	TotalRecords   *int `json:"total_records,omitempty" yaml:"total_records"`
	UniqueStudents *int `json:"unique_students,omitempty" yaml:"unique_students"`

	RiskCounts         *Counts `json:"risk_counts,omitempty" yaml:"risk_counts"`
	ByReason           *Counts `json:"by_reason,omitempty" yaml:"by_reason"`
	ByModule           *Counts `json:"by_module,omitempty" yaml:"by_module"`
	ByModuleAttendance *Counts `json:"by_module_attendance,omitempty" yaml:"by_module_attendance"`

	ByWeekModuleAll        *WeekCounts `json:"by_week_module_all,omitempty" yaml:"by_week_module_all"`
	ByWeekModuleAttendance *WeekCounts `json:"by_week_module_attendance,omitempty" yaml:"by_week_module_attendance"`

	ResolvedCounts *Counts `json:"resolved_counts,omitempty" yaml:"resolved_counts"`

	WeekRisk         *WeekRisk `json:"week_risk,omitempty" yaml:"week_risk"`
	ByWeekAttendance *Counts   `json:"by_week_attendance,omitempty" yaml:"by_week_attendance"`
	ResolvedRate     *Counts   `json:"resolved_rate,omitempty" yaml:"resolved_rate"`

	RepeatedStudents *RepeatedStudents `json:"repeated_students,omitempty" yaml:"repeated_students"`
	SampleRows       []Row             `json:"sample_rows,omitempty" yaml:"sample_rows"`
}

// WeekRisk is the week x risk-category pivot. Series data is aligned by
// index with Weeks.
type WeekRisk struct {
	Weeks  []Text   `json:"weeks" yaml:"weeks"`
	Series []Series `json:"series" yaml:"series"`
}

// Series is one named numeric sequence.
type Series struct {
	Name Text    `json:"name" yaml:"name"`
	Data []Count `json:"data" yaml:"data"`
}

// RepeatedStudents lists students flagged more than once.
type RepeatedStudents struct {
	TopCounts   *Counts `json:"top_counts,omitempty" yaml:"top_counts"`
	PreviewRows []Row   `json:"preview_rows,omitempty" yaml:"preview_rows"`
}

// WeekLabels returns the week-risk week labels, or nil.
func (r *Report) WeekLabels() []string {
	if r == nil || r.WeekRisk == nil {
		return nil
	}
	out := make([]string, len(r.WeekRisk.Weeks))
	for i, w := range r.WeekRisk.Weeks {
		out[i] = string(w)
	}
	return out
}

// Resolved returns the resolution counts with the null sentinel relabelled.
func (r *Report) Resolved() *Counts {
	if r == nil {
		return nil
	}
	return r.ResolvedCounts.Relabel("null", UnknownLabel)
}

// ModuleCounts picks the module mapping for the basis, preferring the
// per-week breakdown when week is set and present.
func (r *Report) ModuleCounts(attendance bool, week string) *Counts {
	if r == nil {
		return nil
	}
	perWeek, overall := r.ByWeekModuleAll, r.ByModule
	if attendance {
		perWeek, overall = r.ByWeekModuleAttendance, r.ByModuleAttendance
	}
	if week != "" {
		if c, ok := perWeek.Week(week); ok {
			return c
		}
	}
	return overall
}
