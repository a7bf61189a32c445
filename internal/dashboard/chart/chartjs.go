package chart

import (
	"encoding/json"
	"fmt"
)

// chartJSConfig mirrors the subset of the Chart.js configuration object the
// dashboard uses.
type chartJSConfig struct {
	Type    string         `json:"type"`
	Data    chartJSData    `json:"data"`
	Options map[string]any `json:"options"`
}

type chartJSData struct {
	Labels   []string         `json:"labels"`
	Datasets []chartJSDataset `json:"datasets"`
}

type chartJSDataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	Tension         float64   `json:"tension,omitempty"`
	PointRadius     *int      `json:"pointRadius,omitempty"`
	PointHoverRadii *int      `json:"pointHoverRadius,omitempty"`
	Fill            *bool     `json:"fill,omitempty"`
	BorderWidth     *int      `json:"borderWidth,omitempty"`
}

// ChartJSConfig builds the Chart.js configuration for spec.
func ChartJSConfig(spec Spec) (json.RawMessage, error) {
	var cfg chartJSConfig
	cfg.Data.Labels = nonNil(spec.Labels)
	switch spec.Kind {
	case KindBar, KindHBar:
		horizontal := spec.Kind == KindHBar
		cfg.Type = "bar"
		cfg.Data.Datasets = []chartJSDataset{{Label: seriesName(spec, 0, "Count"), Data: seriesValues(spec, 0)}}
		indexAxis := "x"
		if horizontal {
			indexAxis = "y"
		}
		cfg.Options = map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"indexAxis":           indexAxis,
			"plugins": map[string]any{
				"legend":  map[string]any{"display": false},
				"tooltip": map[string]any{"intersect": false},
			},
			"scales": map[string]any{
				"x": map[string]any{
					"ticks": map[string]any{"autoSkip": !horizontal, "maxRotation": 0},
					"grid":  map[string]any{"display": !horizontal},
				},
				"y": map[string]any{
					"beginAtZero": true,
					"ticks":       map[string]any{"precision": 0, "autoSkip": !horizontal},
					"grid":        map[string]any{"display": horizontal},
				},
			},
		}
	case KindRing:
		zero := 0
		cfg.Type = "doughnut"
		cfg.Data.Datasets = []chartJSDataset{{Data: seriesValues(spec, 0), BorderWidth: &zero}}
		cfg.Options = map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"cutout":              "62%",
			"plugins":             map[string]any{"legend": map[string]any{"position": "bottom"}},
		}
	case KindLine:
		cfg.Type = "line"
		radius, hover, fill := 2, 4, false
		for i := range spec.Series {
			cfg.Data.Datasets = append(cfg.Data.Datasets, chartJSDataset{
				Label:           seriesName(spec, i, ""),
				Data:            seriesValues(spec, i),
				Tension:         0.35,
				PointRadius:     &radius,
				PointHoverRadii: &hover,
				Fill:            &fill,
			})
		}
		ticks := map[string]any{"precision": 0}
		if spec.Percent {
			// app.js swaps this marker for a formatter callback.
			ticks = map[string]any{"suffix": "%"}
		}
		cfg.Options = map[string]any{
			"responsive":          true,
			"maintainAspectRatio": false,
			"interaction":         map[string]any{"mode": "index", "intersect": false},
			"plugins":             map[string]any{"legend": map[string]any{"position": "bottom"}},
			"scales": map[string]any{
				"x": map[string]any{"grid": map[string]any{"display": false}},
				"y": map[string]any{"beginAtZero": true, "ticks": ticks},
			},
		}
	default:
		return nil, fmt.Errorf("chart: unsupported kind %q", spec.Kind)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("chart: encode config: %w", err)
	}
	return raw, nil
}

func seriesName(spec Spec, i int, def string) string {
	if i < len(spec.Series) && spec.Series[i].Name != "" {
		return spec.Series[i].Name
	}
	return def
}

func seriesValues(spec Spec, i int) []float64 {
	if i < len(spec.Series) {
		return nonNilFloats(spec.Series[i].Values)
	}
	return []float64{}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilFloats(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
