package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard/chart"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// Surface is the charting capability views are drawn through.
type Surface interface {
	Create(container string, spec chart.Spec) (chart.Handle, error)
	Destroy(h chart.Handle) error
}

// ViewState is the visibility of one view container.
type ViewState string

// Container states.
const (
	StateHidden  ViewState = "hidden"
	StateVisible ViewState = "visible"
)

// Render outcomes passed to the Recorder.
const (
	OutcomeRendered = "rendered"
	OutcomeHidden   = "hidden"
	OutcomeError    = "error"
)

// Recorder observes render cycles.
type Recorder interface {
	ObserveRender(view, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRender(string, string) {}

// Container is one view slot on the page. It holds at most one live chart.
type Container struct {
	ID     string
	Title  string
	State  ViewState
	Height int
	handle chart.Handle
}

// Handle returns the live chart handle, zero when hidden.
func (c *Container) Handle() chart.Handle { return c.handle }

// Orchestrator drives the render cycle of every view on one page. It is the
// sole owner of the containers' chart handles. Calls must be serialised by
// the caller; Page does this.
type Orchestrator struct {
	report     *report.Report
	controller *Controller
	selector   Selector
	sizer      Sizer
	surface    Surface
	recorder   Recorder
	logger     *slog.Logger

	containers map[string]*Container
	order      []string
	dataset    RankedDataset
	staticDone bool
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Report     *report.Report
	Controller *Controller
	Selector   Selector
	Sizer      Sizer
	Surface    Surface
	Recorder   Recorder
	Logger     *slog.Logger
}

// NewOrchestrator constructs an Orchestrator with every container hidden.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Controller == nil {
		cfg.Controller = NewController()
	}
	if cfg.Selector == nil {
		cfg.Selector = ReportSelector{Report: cfg.Report}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	o := &Orchestrator{
		report:     cfg.Report,
		controller: cfg.Controller,
		selector:   cfg.Selector,
		sizer:      cfg.Sizer,
		surface:    cfg.Surface,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger,
		containers: make(map[string]*Container),
		dataset:    RankedDataset{},
	}
	o.add(ModulesView, "Modules")
	for _, v := range staticViews {
		o.add(v.id, v.title)
	}
	return o
}

func (o *Orchestrator) add(id, title string) {
	o.containers[id] = &Container{ID: id, Title: title, State: StateHidden}
	o.order = append(o.order, id)
}

// Controller returns the filter controller the dynamic view reads from.
func (o *Orchestrator) Controller() *Controller { return o.controller }

// Report returns the report the page renders from, possibly nil.
func (o *Orchestrator) Report() *report.Report { return o.report }

// Dataset returns the dataset of the last dynamic render.
func (o *Orchestrator) Dataset() RankedDataset { return o.dataset }

// Container returns the container for view id.
func (o *Orchestrator) Container(id string) (*Container, bool) {
	c, ok := o.containers[id]
	return c, ok
}

// RenderDynamicView re-runs the module view for the current filter state.
// An empty dataset hides the container; otherwise the old chart is destroyed
// before the new one is created.
func (o *Orchestrator) RenderDynamicView(ctx context.Context) error {
	if o.report == nil {
		return nil
	}
	c := o.containers[ModulesView]
	state := o.controller.Get()
	ds, err := o.selector.Select(ctx, state)
	if err != nil {
		o.recorder.ObserveRender(ModulesView, OutcomeError)
		return fmt.Errorf("dashboard: select modules: %w", err)
	}
	o.dataset = ds
	if ds.Empty() {
		o.hide(c)
		o.recorder.ObserveRender(ModulesView, OutcomeHidden)
		return nil
	}
	c.Height = o.sizer.Size(ds.Len())
	spec := chart.Spec{
		Kind:   chart.KindHBar,
		Title:  c.Title,
		Labels: ds.Labels(),
		Series: []chart.Series{{Name: state.Basis.Label(), Values: ds.Values()}},
		Height: c.Height,
	}
	if err := o.draw(c, spec); err != nil {
		o.recorder.ObserveRender(ModulesView, OutcomeError)
		return fmt.Errorf("dashboard: render modules: %w", err)
	}
	o.recorder.ObserveRender(ModulesView, OutcomeRendered)
	return nil
}

// RenderStatic draws every static view once. Later calls are no-ops. A view
// whose source is absent or empty stays hidden; a view the surface fails to
// draw is logged and hidden.
func (o *Orchestrator) RenderStatic(_ context.Context) error {
	if o.report == nil || o.staticDone {
		return nil
	}
	o.staticDone = true
	for _, v := range staticViews {
		c := o.containers[v.id]
		spec, ok := v.build(o.report)
		if !ok {
			o.recorder.ObserveRender(v.id, OutcomeHidden)
			continue
		}
		c.Height = StaticHeight
		if v.sized {
			c.Height = o.sizer.Size(len(spec.Labels))
		}
		spec.Title = c.Title
		spec.Height = c.Height
		if err := o.draw(c, spec); err != nil {
			o.logger.Warn("static view not rendered", slog.String("view", v.id), slog.Any("error", err))
			o.recorder.ObserveRender(v.id, OutcomeError)
			continue
		}
		o.recorder.ObserveRender(v.id, OutcomeRendered)
	}
	return nil
}

// Close destroys every live chart and hides all containers.
func (o *Orchestrator) Close() {
	for _, id := range o.order {
		o.hide(o.containers[id])
	}
}

func (o *Orchestrator) draw(c *Container, spec chart.Spec) error {
	o.release(c)
	h, err := o.surface.Create(c.ID, spec)
	if err != nil {
		c.State = StateHidden
		c.Height = 0
		return err
	}
	c.handle = h
	c.State = StateVisible
	return nil
}

func (o *Orchestrator) hide(c *Container) {
	o.release(c)
	c.State = StateHidden
	c.Height = 0
}

func (o *Orchestrator) release(c *Container) {
	if c.handle.IsZero() {
		return
	}
	if err := o.surface.Destroy(c.handle); err != nil {
		o.logger.Warn("destroy chart", slog.String("view", c.ID), slog.Any("error", err))
	}
	c.handle = chart.Handle{}
}

// ViewSnapshot is a read-only copy of one container.
type ViewSnapshot struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	State  ViewState    `json:"state"`
	Height int          `json:"height"`
	Handle chart.Handle `json:"handle"`
}

// Views returns container snapshots in page order.
func (o *Orchestrator) Views() []ViewSnapshot {
	out := make([]ViewSnapshot, 0, len(o.order))
	for _, id := range o.order {
		c := o.containers[id]
		out = append(out, ViewSnapshot{ID: c.ID, Title: c.Title, State: c.State, Height: c.Height, Handle: c.handle})
	}
	return out
}
