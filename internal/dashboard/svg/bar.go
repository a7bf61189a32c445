package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders a single-series bar chart. Horizontal charts give every label
// its own row so none is skipped.
func Bars(width, height int, values []float64, labels []string, opts BarOpts) (template.HTML, error) {
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
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	labelWidth := 0.0
	if opts.Horizontal {
		labelWidth = opts.LabelWidth
		if labelWidth <= 0 {
			labelWidth = DefaultLabelWidth
		}
	}

	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")
	color := fallback(opts.Color, "#0ea5e9")

	left := padding + labelWidth
	chartWidth := float64(width) - left - padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	minVal, maxVal := valueRange(values)
	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Counts per category"))))

	if opts.Horizontal {
		writeHorizontalBars(&b, values, labels, left, padding, chartWidth, chartHeight, minVal, maxVal, tickCount, color, axisColor, gridColor)
	} else {
		writeVerticalBars(&b, values, labels, left, padding, chartWidth, chartHeight, minVal, maxVal, tickCount, color, axisColor, gridColor)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func writeVerticalBars(b *strings.Builder, values []float64, labels []string, left, top, chartWidth, chartHeight, minVal, maxVal float64, ticks int, color, axisColor, gridColor string) {
	scale := chartHeight / (maxVal - minVal)
	zeroY := top + chartHeight - (0-minVal)*scale

	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		value := minVal + (maxVal-minVal)*ratio
		y := top + chartHeight - ratio*chartHeight
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", left, y, left+chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", left-6, y+4, axisColor, template.HTMLEscapeString(formatTick(value, false))))
	}
	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", left, top, left, top+chartHeight))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", left, zeroY, left+chartWidth, zeroY))
	b.WriteString("</g>")

	slot := chartWidth / float64(len(values))
	barWidth := slot * 0.6
	for i, value := range values {
		h := value * scale
		y := zeroY - h
		if h < 0 {
			y, h = zeroY, -h
		}
		x := left + float64(i)*slot + (slot-barWidth)/2
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>", x, y, barWidth, h, color, template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(formatTick(value, false))))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x+barWidth/2, top+chartHeight+14, axisColor, template.HTMLEscapeString(labels[i])))
	}
}

func writeHorizontalBars(b *strings.Builder, values []float64, labels []string, left, top, chartWidth, chartHeight, minVal, maxVal float64, ticks int, color, axisColor, gridColor string) {
	scale := chartWidth / (maxVal - minVal)
	zeroX := left + (0-minVal)*scale

	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		value := minVal + (maxVal-minVal)*ratio
		x := left + ratio*chartWidth
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", x, top, x, top+chartHeight, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, top+chartHeight+14, axisColor, template.HTMLEscapeString(formatTick(value, false))))
	}
	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", zeroX, top, zeroX, top+chartHeight))
	b.WriteString("</g>")

	slot := chartHeight / float64(len(values))
	barHeight := slot * 0.7
	for i, value := range values {
		w := value * scale
		x := zeroX
		if w < 0 {
			x, w = zeroX+w, -w
		}
		y := top + float64(i)*slot + (slot-barHeight)/2
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>", x, y, w, barHeight, color, template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(formatTick(value, false))))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", left-6, y+barHeight/2+4, axisColor, template.HTMLEscapeString(labels[i])))
	}
}
