package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard/chart"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

type fakeSurface struct {
	next      int
	live      map[string]chart.Handle
	specs     map[string]chart.Spec
	destroyed []string
	fail      map[string]bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		live:  map[string]chart.Handle{},
		specs: map[string]chart.Spec{},
		fail:  map[string]bool{},
	}
}

func (f *fakeSurface) Create(container string, spec chart.Spec) (chart.Handle, error) {
	if f.fail[container] {
		return chart.Handle{}, errors.New("boom")
	}
	f.next++
	h := chart.Handle{ID: fmt.Sprintf("h%d", f.next), Container: container}
	f.live[h.ID] = h
	f.specs[h.ID] = spec
	return h, nil
}

func (f *fakeSurface) Destroy(h chart.Handle) error {
	delete(f.live, h.ID)
	f.destroyed = append(f.destroyed, h.ID)
	return nil
}

func (f *fakeSurface) liveIn(container string) int {
	n := 0
	for _, h := range f.live {
		if h.Container == container {
			n++
		}
	}
	return n
}

type recorded struct{ view, outcome string }

type recordingRecorder struct{ events []recorded }

func (r *recordingRecorder) ObserveRender(view, outcome string) {
	r.events = append(r.events, recorded{view, outcome})
}

func newTestOrchestrator(t *testing.T, r *report.Report, surface Surface) *Orchestrator {
	t.Helper()
	sizer, err := NewSizer(HeightClamped)
	require.NoError(t, err)
	return NewOrchestrator(OrchestratorConfig{Report: r, Sizer: sizer, Surface: surface})
}

func TestRenderDynamicViewStateMachine(t *testing.T) {
	ctx := context.Background()
	surface := newFakeSurface()
	o := newTestOrchestrator(t, sampleReport(), surface)
	c, ok := o.Container(ModulesView)
	require.True(t, ok)
	assert.Equal(t, StateHidden, c.State)

	// Hidden -> Visible
	require.NoError(t, o.RenderDynamicView(ctx))
	assert.Equal(t, StateVisible, c.State)
	assert.Equal(t, DefaultMinHeight, c.Height)
	first := c.Handle()
	require.False(t, first.IsZero())
	spec := surface.specs[first.ID]
	assert.Equal(t, chart.KindHBar, spec.Kind)
	assert.Equal(t, []string{"CS104", "CS101", "CS102", "CS103"}, spec.Labels)

	// Visible -> Visible destroys before creating.
	o.Controller().Set(FilterPatch{Scope: strPtr("top3")})
	require.NoError(t, o.RenderDynamicView(ctx))
	assert.Equal(t, StateVisible, c.State)
	assert.NotEqual(t, first, c.Handle())
	assert.Contains(t, surface.destroyed, first.ID)
	assert.Equal(t, 1, surface.liveIn(ModulesView))
	assert.Len(t, o.Dataset(), 3)

	// Visible -> Hidden on an empty week.
	o.Controller().Set(FilterPatch{Week: strPtr("W2")})
	require.NoError(t, o.RenderDynamicView(ctx))
	assert.Equal(t, StateHidden, c.State)
	assert.True(t, c.Handle().IsZero())
	assert.Zero(t, c.Height)
	assert.Equal(t, 0, surface.liveIn(ModulesView))

	// Hidden -> Hidden is a no-op beyond re-hiding.
	destroyed := len(surface.destroyed)
	require.NoError(t, o.RenderDynamicView(ctx))
	assert.Equal(t, StateHidden, c.State)
	assert.Len(t, surface.destroyed, destroyed)
}

func TestRenderDynamicViewRepeatedApplyKeepsOneChart(t *testing.T) {
	surface := newFakeSurface()
	o := newTestOrchestrator(t, sampleReport(), surface)
	for i := 0; i < 5; i++ {
		require.NoError(t, o.RenderDynamicView(context.Background()))
		assert.Equal(t, 1, surface.liveIn(ModulesView))
	}
}

func TestOrchestratorWithoutReportNoops(t *testing.T) {
	surface := newFakeSurface()
	o := newTestOrchestrator(t, nil, surface)
	require.NoError(t, o.RenderStatic(context.Background()))
	require.NoError(t, o.RenderDynamicView(context.Background()))
	assert.Empty(t, surface.live)
	for _, v := range o.Views() {
		assert.Equal(t, StateHidden, v.State, v.ID)
	}
}

func TestRenderStaticIsOneShotAndHidesEmptyViews(t *testing.T) {
	surface := newFakeSurface()
	rec := &recordingRecorder{}
	sizer, err := NewSizer(HeightClamped)
	require.NoError(t, err)
	o := NewOrchestrator(OrchestratorConfig{Report: sampleReport(), Sizer: sizer, Surface: surface, Recorder: rec})

	require.NoError(t, o.RenderStatic(context.Background()))
	risk, _ := o.Container(RiskView)
	assert.Equal(t, StateVisible, risk.State)
	assert.Equal(t, StaticHeight, risk.Height)

	resolved, _ := o.Container(ResolvedView)
	assert.Equal(t, StateHidden, resolved.State, "empty resolved counts must hide the view")

	weekRisk, _ := o.Container(WeekRiskView)
	assert.Equal(t, StateVisible, weekRisk.State)
	assert.Equal(t, chart.KindLine, surface.specs[weekRisk.Handle().ID].Kind)

	for _, id := range []string{ReasonsView, NonAttendanceView, ResolvedRateView, RepeatStudentsView} {
		c, _ := o.Container(id)
		assert.Equal(t, StateHidden, c.State, id)
	}
	assert.Contains(t, rec.events, recorded{ResolvedView, OutcomeHidden})
	assert.Contains(t, rec.events, recorded{RiskView, OutcomeRendered})

	live := len(surface.live)
	require.NoError(t, o.RenderStatic(context.Background()))
	assert.Len(t, surface.live, live)
	assert.Empty(t, surface.destroyed)
}

func TestRenderStaticSurfaceFailureHidesOnlyThatView(t *testing.T) {
	surface := newFakeSurface()
	surface.fail[RiskView] = true
	o := newTestOrchestrator(t, sampleReport(), surface)

	require.NoError(t, o.RenderStatic(context.Background()))
	risk, _ := o.Container(RiskView)
	assert.Equal(t, StateHidden, risk.State)
	weekRisk, _ := o.Container(WeekRiskView)
	assert.Equal(t, StateVisible, weekRisk.State)
}

func TestRenderStaticPercentAndPaddedSeries(t *testing.T) {
	r := &report.Report{
		ResolvedRate: counts("W1", 50, "W2", 75),
		WeekRisk: &report.WeekRisk{
			Weeks:  []report.Text{"W1", "W2", "W3"},
			Series: []report.Series{{Name: "Low", Data: []report.Count{1}}},
		},
		RepeatedStudents: &report.RepeatedStudents{TopCounts: counts("s1", 4, "s2", 3)},
	}
	surface := newFakeSurface()
	o := newTestOrchestrator(t, r, surface)
	require.NoError(t, o.RenderStatic(context.Background()))

	rate, _ := o.Container(ResolvedRateView)
	assert.True(t, surface.specs[rate.Handle().ID].Percent)

	weekRisk, _ := o.Container(WeekRiskView)
	assert.Equal(t, []float64{1, 0, 0}, surface.specs[weekRisk.Handle().ID].Series[0].Values)

	repeat, _ := o.Container(RepeatStudentsView)
	assert.Equal(t, chart.KindHBar, surface.specs[repeat.Handle().ID].Kind)
	assert.Equal(t, DefaultMinHeight, repeat.Height)
}

func TestOrchestratorCloseDestroysEverything(t *testing.T) {
	surface := newFakeSurface()
	o := newTestOrchestrator(t, sampleReport(), surface)
	require.NoError(t, o.RenderStatic(context.Background()))
	require.NoError(t, o.RenderDynamicView(context.Background()))
	require.NotEmpty(t, surface.live)

	o.Close()
	assert.Empty(t, surface.live)
}

type failingSelector struct{}

func (failingSelector) Select(context.Context, FilterState) (RankedDataset, error) {
	return nil, errors.New("selector down")
}

func TestRenderDynamicViewSelectorError(t *testing.T) {
	sizer, _ := NewSizer(HeightClamped)
	o := NewOrchestrator(OrchestratorConfig{Report: sampleReport(), Selector: failingSelector{}, Sizer: sizer, Surface: newFakeSurface()})
	err := o.RenderDynamicView(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selector down")
}
