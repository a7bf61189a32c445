// Package chart is the charting surface: it turns a dataset and a chart-type
// descriptor into a live chart bound to one container.
package chart

import (
	"encoding/json"
	"html/template"
)

// Kind is the chart-type descriptor.
type Kind string

// Supported chart kinds.
const (
	KindBar  Kind = "bar"
	KindHBar Kind = "hbar"
	KindRing Kind = "ring"
	KindLine Kind = "line"
)

// Series is one named value sequence aligned with Spec.Labels.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Spec describes what to draw.
type Spec struct {
	Kind    Kind     `json:"kind"`
	Title   string   `json:"title"`
	Labels  []string `json:"labels"`
	Series  []Series `json:"series"`
	Height  int      `json:"height"`
	Percent bool     `json:"percent,omitempty"`
}

// Handle references one live chart. The zero Handle references nothing.
type Handle struct {
	ID        string `json:"id"`
	Container string `json:"container"`
}

// IsZero reports whether h references no chart.
func (h Handle) IsZero() bool { return h.ID == "" }

// Chart is a drawn chart: server-side SVG plus a client config.
type Chart struct {
	Handle Handle          `json:"handle"`
	Spec   Spec            `json:"spec"`
	SVG    template.HTML   `json:"-"`
	Config json.RawMessage `json:"config"`
}
