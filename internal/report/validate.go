package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Warning describes a payload value outside the documented invariants. The
// dashboard still renders such values; warnings are for operators.
type Warning struct {
	Field   string
	Label   string
	Message string
}

func (w Warning) String() string {
	if w.Label == "" {
		return fmt.Sprintf("%s: %s", w.Field, w.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", w.Field, w.Label, w.Message)
}

// Validate reports invariant violations: negative counts, percentages outside
// [0,100] and week-risk series misaligned with the week list.
func Validate(r *Report) []Warning {
	if r == nil {
		return nil
	}
	var out []Warning
	counts := []struct {
		field  string
		counts *Counts
	}{
		{"risk_counts", r.RiskCounts},
		{"by_reason", r.ByReason},
		{"by_module", r.ByModule},
		{"by_module_attendance", r.ByModuleAttendance},
		{"resolved_counts", r.ResolvedCounts},
		{"by_week_attendance", r.ByWeekAttendance},
	}
	for _, c := range counts {
		out = append(out, checkCounts(c.field, c.counts, "dive,gte=0")...)
	}
	for _, week := range r.ByWeekModuleAll.Weeks() {
		c, _ := r.ByWeekModuleAll.Week(week)
		out = append(out, checkCounts("by_week_module_all."+week, c, "dive,gte=0")...)
	}
	for _, week := range r.ByWeekModuleAttendance.Weeks() {
		c, _ := r.ByWeekModuleAttendance.Week(week)
		out = append(out, checkCounts("by_week_module_attendance."+week, c, "dive,gte=0")...)
	}
	out = append(out, checkCounts("resolved_rate", r.ResolvedRate, "dive,gte=0,lte=100")...)
	if r.RepeatedStudents != nil {
		out = append(out, checkCounts("repeated_students.top_counts", r.RepeatedStudents.TopCounts, "dive,gte=0")...)
	}
	if r.WeekRisk != nil {
		weeks := len(r.WeekRisk.Weeks)
		for _, s := range r.WeekRisk.Series {
			if len(s.Data) != weeks {
				out = append(out, Warning{
					Field:   "week_risk.series",
					Label:   string(s.Name),
					Message: fmt.Sprintf("has %d points for %d weeks", len(s.Data), weeks),
				})
			}
			values := make([]float64, len(s.Data))
			for i, v := range s.Data {
				values[i] = v.Float()
			}
			out = append(out, checkValues("week_risk.series", weekLabels(r.WeekRisk.Weeks, len(values)), values, "dive,gte=0")...)
		}
	}
	return out
}

func checkCounts(field string, c *Counts, tag string) []Warning {
	if c.Empty() {
		return nil
	}
	return checkValues(field, c.Labels(), c.Values(), tag)
}

func checkValues(field string, labels []string, values []float64, tag string) []Warning {
	err := validate.Var(values, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Warning{{Field: field, Message: err.Error()}}
	}
	out := make([]Warning, 0, len(verrs))
	for _, fe := range verrs {
		label := fe.Field()
		if idx, ok := indexOf(fe.Field()); ok && idx < len(labels) {
			label = labels[idx]
		}
		out = append(out, Warning{
			Field:   field,
			Label:   label,
			Message: fmt.Sprintf("value %v fails %s=%s", fe.Value(), fe.Tag(), fe.Param()),
		})
	}
	return out
}

func indexOf(field string) (int, bool) {
	open := strings.LastIndex(field, "[")
	end := strings.LastIndex(field, "]")
	if open < 0 || end <= open {
		return 0, false
	}
	idx, err := strconv.Atoi(field[open+1 : end])
	return idx, err == nil
}

func weekLabels(weeks []Text, n int) []string {
	out := make([]string, n)
	for i := range out {
		if i < len(weeks) {
			out[i] = string(weeks[i])
		} else {
			out[i] = strconv.Itoa(i)
		}
	}
	return out
}
