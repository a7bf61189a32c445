package chart

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "chart-" + strconv.Itoa(n)
	}
}

func barSpec() Spec {
	return Spec{
		Kind:   KindHBar,
		Title:  "Modules",
		Labels: []string{"CS104", "CS101"},
		Series: []Series{{Name: "Count", Values: []float64{20, 12}}},
		Height: 240,
	}
}

func TestRendererCreateAndDestroy(t *testing.T) {
	var observed []int
	r := NewRenderer(WithIDGenerator(sequentialIDs()), WithObserver(func(n int) { observed = append(observed, n) }))

	h, err := r.Create("modules", barSpec())
	require.NoError(t, err)
	assert.Equal(t, Handle{ID: "chart-1", Container: "modules"}, h)
	assert.Equal(t, 1, r.Live())

	c, ok := r.Chart(h)
	require.True(t, ok)
	assert.Contains(t, string(c.SVG), "<svg")
	assert.NotEmpty(t, c.Config)

	require.NoError(t, r.Destroy(h))
	assert.Equal(t, 0, r.Live())
	_, ok = r.Chart(h)
	assert.False(t, ok)

	// Destroying twice or a zero handle is a no-op.
	require.NoError(t, r.Destroy(h))
	require.NoError(t, r.Destroy(Handle{}))
	assert.Equal(t, []int{1, 0}, observed)
}

func TestRendererRejectsEmptySpec(t *testing.T) {
	r := NewRenderer()
	_, err := r.Create("modules", Spec{Kind: KindBar})
	require.ErrorIs(t, err, ErrEmptySpec)
	assert.Equal(t, 0, r.Live())
}

func TestRendererUnsupportedKind(t *testing.T) {
	r := NewRenderer()
	spec := barSpec()
	spec.Kind = "radar"
	_, err := r.Create("x", spec)
	require.Error(t, err)
	assert.Equal(t, 0, r.Live())
}

func TestChartJSConfigHorizontalBar(t *testing.T) {
	raw, err := ChartJSConfig(barSpec())
	require.NoError(t, err)

	var cfg struct {
		Type string `json:"type"`
		Data struct {
			Labels   []string `json:"labels"`
			Datasets []struct {
				Label string    `json:"label"`
				Data  []float64 `json:"data"`
			} `json:"datasets"`
		} `json:"data"`
		Options struct {
			IndexAxis string `json:"indexAxis"`
			Scales    struct {
				Y struct {
					Ticks struct {
						AutoSkip bool `json:"autoSkip"`
					} `json:"ticks"`
				} `json:"y"`
			} `json:"scales"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(raw, &cfg))
	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, "y", cfg.Options.IndexAxis)
	assert.False(t, cfg.Options.Scales.Y.Ticks.AutoSkip, "horizontal bars never skip labels")
	assert.Equal(t, []string{"CS104", "CS101"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 1)
	assert.Equal(t, []float64{20, 12}, cfg.Data.Datasets[0].Data)
}

func TestChartJSConfigLineAndRing(t *testing.T) {
	raw, err := ChartJSConfig(Spec{
		Kind:    KindLine,
		Labels:  []string{"W1", "W2"},
		Series:  []Series{{Name: "High", Values: []float64{1, 2}}, {Name: "Low", Values: []float64{3, 4}}},
		Percent: true,
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"line"`)
	assert.Contains(t, string(raw), `"suffix":"%"`)
	assert.Contains(t, string(raw), `"label":"Low"`)

	raw, err = ChartJSConfig(Spec{Kind: KindRing, Labels: []string{"Yes"}, Series: []Series{{Values: []float64{1}}}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"doughnut"`)
}
