package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Ring renders a proportion (doughnut) chart with a legend.
func Ring(width, height int, values []float64, labels []string, opts RingOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	cutout := opts.Cutout
	if cutout <= 0 || cutout >= 1 {
		cutout = DefaultCutout
	}

	legendHeight := 18.0
	outer := math.Min(float64(width), float64(height)-legendHeight)/2 - DefaultPadding/2
	if outer <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	inner := outer * cutout
	radius := (outer + inner) / 2
	stroke := outer - inner
	cx := float64(width) / 2
	cy := outer + DefaultPadding/2
	circumference := 2 * math.Pi * radius

	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}

	titleID := makeID(opts.Title, "ring-title")
	descID := makeID(opts.Title, "ring-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Ring chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share per category"))))
	b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"#e2e8f0\" stroke-width=\"%.2f\" aria-hidden=\"true\"></circle>", cx, cy, radius, stroke))

	// Slices are dashed strokes on one circle, starting at 12 o'clock.
	offset := 0.0
	for i, v := range values {
		if v <= 0 || total <= 0 {
			continue
		}
		length := v / total * circumference
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" stroke-dasharray=\"%.2f %.2f\" stroke-dashoffset=\"%.2f\" transform=\"rotate(-90 %.2f %.2f)\" aria-label=\"%s %s\"></circle>",
			cx, cy, radius, paletteColor(opts.Palette, i), stroke, length, circumference-length, -offset, cx, cy,
			template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(formatTick(v, false))))
		offset += length
	}

	legendY := float64(height) - 6
	legendX := DefaultPadding
	for i, label := range labels {
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" rx=\"5\" fill=\"%s\"></rect>", legendX, legendY-8, paletteColor(opts.Palette, i)))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"#475569\" font-size=\"10\" text-anchor=\"start\">%s</text>", legendX+14, legendY, template.HTMLEscapeString(label)))
		legendX += 90
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
