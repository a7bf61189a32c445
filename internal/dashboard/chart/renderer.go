package chart

import (
	"errors"
	"fmt"
	"html/template"
	"sync"

	"github.com/google/uuid"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard/svg"
)

// ErrEmptySpec is returned when a spec has nothing to draw.
var ErrEmptySpec = errors.New("chart: spec has no data")

// Renderer is the built-in surface. It draws every chart as SVG and as a
// Chart.js config, and keeps each live chart until it is destroyed.
type Renderer struct {
	mu       sync.Mutex
	live     map[string]Chart
	width    int
	newID    func() string
	observer func(live int)
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithWidth sets the SVG viewport width.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
	}
}

// WithObserver is called with the live chart count after every change.
func WithObserver(fn func(live int)) Option {
	return func(r *Renderer) { r.observer = fn }
}

// WithIDGenerator overrides handle id generation.
func WithIDGenerator(fn func() string) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRenderer constructs a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		live:  make(map[string]Chart),
		width: svg.DefaultWidth,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create draws spec into container and returns the handle of the new chart.
func (r *Renderer) Create(container string, spec Spec) (Handle, error) {
	if len(spec.Labels) == 0 || len(spec.Series) == 0 {
		return Handle{}, ErrEmptySpec
	}
	markup, err := r.draw(spec)
	if err != nil {
		return Handle{}, err
	}
	config, err := ChartJSConfig(spec)
	if err != nil {
		return Handle{}, err
	}
	h := Handle{ID: r.newID(), Container: container}

	r.mu.Lock()
	r.live[h.ID] = Chart{Handle: h, Spec: spec, SVG: markup, Config: config}
	n := len(r.live)
	r.mu.Unlock()
	r.notify(n)
	return h, nil
}

// Destroy releases the chart behind h. Unknown or zero handles are ignored.
func (r *Renderer) Destroy(h Handle) error {
	if h.IsZero() {
		return nil
	}
	r.mu.Lock()
	_, ok := r.live[h.ID]
	delete(r.live, h.ID)
	n := len(r.live)
	r.mu.Unlock()
	if ok {
		r.notify(n)
	}
	return nil
}

// Chart returns the live chart behind h.
func (r *Renderer) Chart(h Handle) (Chart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.live[h.ID]
	return c, ok
}

// Live returns the number of charts not yet destroyed.
func (r *Renderer) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *Renderer) notify(n int) {
	if r.observer != nil {
		r.observer(n)
	}
}

func (r *Renderer) draw(spec Spec) (template.HTML, error) {
	switch spec.Kind {
	case KindBar, KindHBar:
		return svg.Bars(r.width, spec.Height, spec.Series[0].Values, spec.Labels, svg.BarOpts{
			Title:      spec.Title,
			Horizontal: spec.Kind == KindHBar,
		})
	case KindRing:
		return svg.Ring(r.width, spec.Height, spec.Series[0].Values, spec.Labels, svg.RingOpts{Title: spec.Title})
	case KindLine:
		series := make([]svg.Series, len(spec.Series))
		for i, s := range spec.Series {
			series[i] = svg.Series{Name: s.Name, Values: s.Values}
		}
		return svg.Line(r.width, spec.Height, series, spec.Labels, svg.LineOpts{
			Title:    spec.Title,
			ShowDots: true,
			Percent:  spec.Percent,
		})
	default:
		return "", fmt.Errorf("chart: unsupported kind %q", spec.Kind)
	}
}
