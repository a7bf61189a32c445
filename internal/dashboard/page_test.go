package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard/chart"
)

func newTestEngine(t *testing.T) (*Engine, *chart.Renderer) {
	t.Helper()
	sizer, err := NewSizer(HeightClamped)
	require.NoError(t, err)
	renderer := chart.NewRenderer()
	r := sampleReport()
	return &Engine{Report: r, Selector: ReportSelector{Report: r}, Sizer: sizer, Surface: renderer}, renderer
}

func TestPagesOpenReplacesPreviousPage(t *testing.T) {
	engine, renderer := newTestEngine(t)
	var observed []int
	pages := NewPages(engine, time.Minute, func(n int) { observed = append(observed, n) })
	ctx := context.Background()

	first, snap, err := pages.Open(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, snap.HasData)
	live := renderer.Live()
	require.Positive(t, live)

	_, err = first.Apply(ctx, FilterPatch{Scope: strPtr("top3")})
	require.NoError(t, err)

	second, snap, err := pages.Open(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, live, renderer.Live(), "reload must not leak charts")
	assert.Equal(t, DefaultFilterState(), snap.State, "reload resets filters")
	assert.Equal(t, 1, pages.Len())

	_, err = first.Apply(ctx, FilterPatch{})
	require.ErrorIs(t, err, ErrPageClosed)

	got, ok := pages.Get("sess")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, []int{1, 1}, observed)
}

func TestPagesOpenSnapshotIncludesFirstModuleRender(t *testing.T) {
	engine, _ := newTestEngine(t)
	pages := NewPages(engine, 0, nil)

	page, snap, err := pages.Open(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, RankedDataset{{"CS104", 20}, {"CS101", 12}, {"CS102", 7}, {"CS103", 7}}, snap.Modules)

	var modules ViewSnapshot
	for _, v := range snap.Views {
		if v.ID == ModulesView {
			modules = v
		}
	}
	assert.Equal(t, StateVisible, modules.State)
	assert.Equal(t, DefaultMinHeight, modules.Height)
	assert.False(t, modules.Handle.IsZero())
	assert.Equal(t, page.Snapshot(), snap)
}

func TestPageApplyAndReset(t *testing.T) {
	engine, _ := newTestEngine(t)
	pages := NewPages(engine, 0, nil)
	ctx := context.Background()

	page, _, err := pages.Open(ctx, "a")
	require.NoError(t, err)

	snap, err := page.Apply(ctx, FilterPatch{Basis: strPtr("attendance"), Week: strPtr("W5")})
	require.NoError(t, err)
	assert.Equal(t, RankedDataset{{"CS104", 8}, {"CS101", 3}}, snap.Modules)

	snap, err = page.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultFilterState(), snap.State)
	assert.Len(t, snap.Modules, 4)
	assert.Equal(t, snap, page.Snapshot())
}

func TestPageConcurrentActionsKeepOneModuleChart(t *testing.T) {
	engine, renderer := newTestEngine(t)
	pages := NewPages(engine, 0, nil)
	ctx := context.Background()
	page, _, err := pages.Open(ctx, "a")
	require.NoError(t, err)
	baseline := renderer.Live()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = page.Apply(ctx, FilterPatch{Scope: strPtr("top5")})
				return
			}
			_, _ = page.Reset(ctx)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, baseline, renderer.Live())
}

func TestPagesSweepEvictsIdlePages(t *testing.T) {
	engine, renderer := newTestEngine(t)
	pages := NewPages(engine, time.Minute, nil)
	ctx := context.Background()

	_, _, err := pages.Open(ctx, "a")
	require.NoError(t, err)
	_, _, err = pages.Open(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, 0, pages.Sweep(time.Now()))
	assert.Equal(t, 2, pages.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, pages.Len())
	assert.Equal(t, 0, renderer.Live())
}

func TestPagesCloseAll(t *testing.T) {
	engine, renderer := newTestEngine(t)
	pages := NewPages(engine, 0, nil)
	_, _, err := pages.Open(context.Background(), "a")
	require.NoError(t, err)

	pages.CloseAll()
	assert.Equal(t, 0, pages.Len())
	assert.Equal(t, 0, renderer.Live())
}
