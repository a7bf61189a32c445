package dashboard

import "fmt"

// HeightPolicy decides whether chart height is capped.
type HeightPolicy string

// Supported height policies. The whole process uses one policy.
const (
	// HeightClamped caps the container so a single chart never dominates the
	// viewport; bar labels may be dense near the cap.
	HeightClamped HeightPolicy = "clamped"
	// HeightUnbounded grows the container with every label so none is skipped.
	HeightUnbounded HeightPolicy = "unbounded"
)

// Sizing defaults, in pixels.
const (
	DefaultPerItem   = 28
	DefaultPadding   = 60
	DefaultMinHeight = 240
	DefaultMaxHeight = 560
)

// Sizer maps result cardinality to a container height:
// clamp(count*PerItem+Padding, MinHeight, MaxHeight). MaxHeight <= 0 means no
// ceiling.
type Sizer struct {
	PerItem   int
	Padding   int
	MinHeight int
	MaxHeight int
}

// NewSizer returns the default sizer for policy.
func NewSizer(policy HeightPolicy) (Sizer, error) {
	s := Sizer{PerItem: DefaultPerItem, Padding: DefaultPadding, MinHeight: DefaultMinHeight}
	switch policy {
	case HeightClamped, "":
		s.MaxHeight = DefaultMaxHeight
	case HeightUnbounded:
		s.MaxHeight = 0
	default:
		return Sizer{}, fmt.Errorf("dashboard: unknown height policy %q", policy)
	}
	return s, nil
}

// Size returns the pixel height for count items.
func (s Sizer) Size(count int) int {
	if count < 0 {
		count = 0
	}
	h := count*s.PerItem + s.Padding
	if h < s.MinHeight {
		h = s.MinHeight
	}
	if s.MaxHeight > 0 && h > s.MaxHeight {
		h = s.MaxHeight
	}
	return h
}
