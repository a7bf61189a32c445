// Package svg renders dashboard charts as static, accessible SVG markup.
package svg

// Series is one named line on a multi-series chart.
type Series struct {
	Name   string
	Values []float64
}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Palette     []string
	Padding     float64
	ShowDots    bool
	TickCount   int
	Percent     bool
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	Color       string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	Horizontal  bool
	// LabelWidth reserves room for category labels on horizontal bars.
	LabelWidth float64
}

// RingOpts customises the ring (doughnut) renderer.
type RingOpts struct {
	Title       string
	Description string
	Palette     []string
	// Cutout is the inner radius as a fraction of the outer radius.
	Cutout float64
}

// Defaults for the dashboard charts.
const (
	DefaultWidth      = 720
	DefaultHeight     = 240
	DefaultPadding    = 24.0
	DefaultTicks      = 6
	DefaultCutout     = 0.62
	DefaultLabelWidth = 96.0
)

// DefaultPalette colours series and ring slices in order.
var DefaultPalette = []string{
	"#2563eb", "#f97316", "#10b981", "#ef4444", "#8b5cf6",
	"#06b6d4", "#ec4899", "#84cc16", "#f59e0b", "#6366f1",
}

func paletteColor(palette []string, i int) string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return palette[i%len(palette)]
}
