package dashboard

import (
	"strconv"
	"strings"
	"sync"
)

// Basis selects which module mapping family is read.
type Basis string

// Supported bases.
const (
	BasisAll        Basis = "all"
	BasisAttendance Basis = "attendance"
)

// Scope selects optional top-N truncation.
type Scope string

// Supported scopes.
const (
	ScopeAll   Scope = "all"
	ScopeTop3  Scope = "top3"
	ScopeTop5  Scope = "top5"
	ScopeTop10 Scope = "top10"
)

// Bases lists every basis in display order.
var Bases = []Basis{BasisAll, BasisAttendance}

// Scopes lists every scope in display order.
var Scopes = []Scope{ScopeAll, ScopeTop3, ScopeTop5, ScopeTop10}

// ParseBasis maps raw input to a Basis. Unknown values become BasisAll.
func ParseBasis(raw string) Basis {
	switch Basis(strings.ToLower(strings.TrimSpace(raw))) {
	case BasisAttendance:
		return BasisAttendance
	default:
		return BasisAll
	}
}

// ParseScope maps raw input to a Scope. The legacy "_att" suffixed spellings
// are accepted; unknown values become ScopeAll.
func ParseScope(raw string) Scope {
	value := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "_att")
	switch Scope(value) {
	case ScopeTop3, ScopeTop5, ScopeTop10:
		return Scope(value)
	default:
		return ScopeAll
	}
}

// ParseWeek normalises a week label; "" and "all" both mean every week.
func ParseWeek(raw string) string {
	week := strings.TrimSpace(raw)
	if strings.EqualFold(week, "all") {
		return ""
	}
	return week
}

// Limit returns N for top-N scopes and 0 for ScopeAll.
func (s Scope) Limit() int {
	switch s {
	case ScopeTop3:
		return 3
	case ScopeTop5:
		return 5
	case ScopeTop10:
		return 10
	default:
		return 0
	}
}

// Label is the human readable scope name.
func (s Scope) Label() string {
	if n := s.Limit(); n > 0 {
		return "Top " + strconv.Itoa(n)
	}
	return "All modules"
}

// Label is the human readable basis name.
func (b Basis) Label() string {
	if b == BasisAttendance {
		return "Attendance"
	}
	return "Unique students"
}

// FilterState is the current value of the three filter dimensions.
type FilterState struct {
	Week  string `json:"week"`
	Basis Basis  `json:"basis"`
	Scope Scope  `json:"scope"`
}

// DefaultFilterState is every week, all basis, no truncation.
func DefaultFilterState() FilterState {
	return FilterState{Week: "", Basis: BasisAll, Scope: ScopeAll}
}

// Normalize replaces unrecognised enum values with their defaults.
func (s FilterState) Normalize() FilterState {
	return FilterState{
		Week:  ParseWeek(s.Week),
		Basis: ParseBasis(string(s.Basis)),
		Scope: ParseScope(string(s.Scope)),
	}
}

// FilterPatch carries the dimensions to change; nil fields are left as is.
type FilterPatch struct {
	Week  *string
	Basis *string
	Scope *string
}

// Controller owns the filter state of one page.
type Controller struct {
	mu    sync.Mutex
	state FilterState
}

// NewController returns a controller at the default state.
func NewController() *Controller {
	return &Controller{state: DefaultFilterState()}
}

// Get returns a copy of the current state.
func (c *Controller) Get() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Set merges the provided dimensions into the state.
func (c *Controller) Set(patch FilterPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if patch.Week != nil {
		c.state.Week = ParseWeek(*patch.Week)
	}
	if patch.Basis != nil {
		c.state.Basis = ParseBasis(*patch.Basis)
	}
	if patch.Scope != nil {
		c.state.Scope = ParseScope(*patch.Scope)
	}
}

// Reset restores every dimension to its default in one update.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = DefaultFilterState()
}
