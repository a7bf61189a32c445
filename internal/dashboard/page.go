package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// ErrPageClosed is returned by actions on a page that was replaced or evicted.
var ErrPageClosed = errors.New("dashboard: page closed")

// Engine holds what every page shares.
type Engine struct {
	Report   *report.Report
	Selector Selector
	Sizer    Sizer
	Surface  Surface
	Recorder Recorder
	Logger   *slog.Logger
}

// NewPage builds an unloaded page with default filters.
func (e *Engine) NewPage(id string) *Page {
	orch := NewOrchestrator(OrchestratorConfig{
		Report:   e.Report,
		Selector: e.Selector,
		Sizer:    e.Sizer,
		Surface:  e.Surface,
		Recorder: e.Recorder,
		Logger:   e.Logger,
	})
	return &Page{ID: id, orch: orch, lastSeen: time.Now()}
}

// Page is one loaded dashboard. Every action holds the page lock so render
// cycles never interleave.
type Page struct {
	ID string

	mu       sync.Mutex
	orch     *Orchestrator
	lastSeen time.Time
	closed   bool
}

// Snapshot is the observable state of a page.
type Snapshot struct {
	ID      string         `json:"id"`
	State   FilterState    `json:"state"`
	Views   []ViewSnapshot `json:"views"`
	Modules RankedDataset  `json:"modules"`
	HasData bool           `json:"has_data"`
}

// Load draws the static views and the first dynamic render.
func (p *Page) Load(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return Snapshot{}, ErrPageClosed
	}
	p.lastSeen = time.Now()
	if err := p.orch.RenderStatic(ctx); err != nil {
		return p.snapshot(), err
	}
	err := p.orch.RenderDynamicView(ctx)
	return p.snapshot(), err
}

// Apply merges patch into the filters and re-renders the dynamic view.
func (p *Page) Apply(ctx context.Context, patch FilterPatch) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return Snapshot{}, ErrPageClosed
	}
	p.lastSeen = time.Now()
	p.orch.Controller().Set(patch)
	err := p.orch.RenderDynamicView(ctx)
	return p.snapshot(), err
}

// Reset restores default filters and re-renders the dynamic view.
func (p *Page) Reset(ctx context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return Snapshot{}, ErrPageClosed
	}
	p.lastSeen = time.Now()
	p.orch.Controller().Reset()
	err := p.orch.RenderDynamicView(ctx)
	return p.snapshot(), err
}

// Snapshot returns the current state without rendering.
func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Page) snapshot() Snapshot {
	return Snapshot{
		ID:      p.ID,
		State:   p.orch.Controller().Get(),
		Views:   p.orch.Views(),
		Modules: p.orch.Dataset(),
		HasData: p.orch.Report() != nil,
	}
}

// Close destroys the page's charts. It is safe to call more than once.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.orch.Close()
}

func (p *Page) idleSince(cutoff time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen.Before(cutoff)
}

// Pages tracks the live page of every session.
type Pages struct {
	engine  *Engine
	idleTTL time.Duration
	onCount func(int)

	mu    sync.Mutex
	pages map[string]*Page
}

// NewPages constructs a registry. onCount, when set, receives the page count
// after every change.
func NewPages(engine *Engine, idleTTL time.Duration, onCount func(int)) *Pages {
	return &Pages{engine: engine, idleTTL: idleTTL, onCount: onCount, pages: make(map[string]*Page)}
}

// Open replaces the session's page with a freshly loaded one. The previous
// page is closed first so its charts never coexist with the new ones.
func (ps *Pages) Open(ctx context.Context, id string) (*Page, Snapshot, error) {
	ps.mu.Lock()
	if old, ok := ps.pages[id]; ok {
		old.Close()
		delete(ps.pages, id)
	}
	page := ps.engine.NewPage(id)
	ps.pages[id] = page
	n := len(ps.pages)
	ps.mu.Unlock()
	ps.notify(n)

	snap, err := page.Load(ctx)
	return page, snap, err
}

// Get returns the live page for id.
func (ps *Pages) Get(id string) (*Page, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.pages[id]
	return p, ok
}

// Len returns the number of live pages.
func (ps *Pages) Len() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.pages)
}

// Sweep closes pages idle for longer than the TTL and returns how many.
func (ps *Pages) Sweep(now time.Time) int {
	if ps.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-ps.idleTTL)
	ps.mu.Lock()
	var evicted []*Page
	for id, p := range ps.pages {
		if p.idleSince(cutoff) {
			evicted = append(evicted, p)
			delete(ps.pages, id)
		}
	}
	n := len(ps.pages)
	ps.mu.Unlock()

	for _, p := range evicted {
		p.Close()
	}
	if len(evicted) > 0 {
		ps.notify(n)
	}
	return len(evicted)
}

// Run sweeps on every tick until ctx is done.
func (ps *Pages) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := ps.Sweep(now); n > 0 && ps.engine.Logger != nil {
				ps.engine.Logger.Debug("evicted idle pages", slog.Int("count", n))
			}
		}
	}
}

// CloseAll closes every page.
func (ps *Pages) CloseAll() {
	ps.mu.Lock()
	pages := ps.pages
	ps.pages = make(map[string]*Page)
	ps.mu.Unlock()
	for _, p := range pages {
		p.Close()
	}
	ps.notify(0)
}

func (ps *Pages) notify(n int) {
	if ps.onCount != nil {
		ps.onCount(n)
	}
}
