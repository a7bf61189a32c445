package dashboardhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	"github.com/odyssey-erp/soit-dashboard/internal/dashboard/chart"
	"github.com/odyssey-erp/soit-dashboard/internal/dashboard/export"
	"github.com/odyssey-erp/soit-dashboard/internal/platform/httpx"
	"github.com/odyssey-erp/soit-dashboard/internal/preference"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
	"github.com/odyssey-erp/soit-dashboard/internal/shared"
	"github.com/odyssey-erp/soit-dashboard/internal/view"
)

const (
	pageTitle      = "SOIT Risk Flags Dashboard"
	requestTimeout = 5 * time.Second
	anonymousPage  = "anonymous"

	// resumeKey marks a redirect after a form action so the next GET / shows
	// the live page instead of a fresh one. It is consumed on read.
	resumeKey = "dashboard.resume"
)

// ChartSource resolves a live chart handle to its drawn output.
type ChartSource interface {
	Chart(h chart.Handle) (chart.Chart, bool)
}

// PreferenceFactory returns the preference store of one visitor.
type PreferenceFactory func(visitor string) preference.Store

// HandlerConfig groups the handler dependencies.
type HandlerConfig struct {
	Logger    *slog.Logger
	Pages     *dashboard.Pages
	Charts    ChartSource
	Store     *report.Store
	Selector  dashboard.Selector
	Sizer     dashboard.Sizer
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Prefs     PreferenceFactory
}

// Handler serves the dashboard page and its JSON endpoints.
type Handler struct {
	logger    *slog.Logger
	pages     *dashboard.Pages
	charts    ChartSource
	store     *report.Store
	selector  dashboard.Selector
	sizer     dashboard.Sizer
	templates *view.Engine
	csrf      *shared.CSRFManager
	prefs     PreferenceFactory
	csvPool   sync.Pool
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		logger:    cfg.Logger,
		pages:     cfg.Pages,
		charts:    cfg.Charts,
		store:     cfg.Store,
		selector:  cfg.Selector,
		sizer:     cfg.Sizer,
		templates: cfg.Templates,
		csrf:      cfg.CSRF,
		prefs:     cfg.Prefs,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.selector == nil {
		h.selector = dashboard.ReportSelector{Report: cfg.Store.Report()}
	}
	if h.prefs == nil {
		mem := preference.NewMemoryStore()
		h.prefs = func(string) preference.Store { return mem }
	}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sess := shared.SessionFromContext(r.Context())
	id := pageID(r.Context())
	if resumed(sess) {
		if page, ok := h.pages.Get(id); ok {
			h.renderPage(w, r, sess, page.Snapshot())
			return
		}
	}
	_, snap, err := h.pages.Open(ctx, id)
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	h.renderPage(w, r, sess, snap)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.handleBadRequest(w, r, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	patch := patchFromValues(r)
	h.act(w, r, "apply filters", "Filters applied.", func(ctx context.Context, p *dashboard.Page) (dashboard.Snapshot, error) {
		return p.Apply(ctx, patch)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "reset filters", "Filters reset.", func(ctx context.Context, p *dashboard.Page) (dashboard.Snapshot, error) {
		return p.Reset(ctx)
	})
}

// act runs a filter action on the caller's page, opening one when the page
// is gone, then answers with JSON or a redirect back to the page.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, op, notice string, fn func(context.Context, *dashboard.Page) (dashboard.Snapshot, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	sess := shared.SessionFromContext(r.Context())
	page, err := h.page(ctx, pageID(r.Context()))
	if err != nil {
		h.handleServerError(w, op, err)
		return
	}
	snap, err := fn(ctx, page)
	if errors.Is(err, dashboard.ErrPageClosed) {
		if page, _, err = h.pages.Open(ctx, pageID(r.Context())); err == nil {
			snap, err = fn(ctx, page)
		}
	}
	if err != nil {
		h.handleServerError(w, op, err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, h.payload(snap))
		return
	}
	h.redirectHome(w, r, sess, shared.FlashMessage{Kind: "info", Message: notice})
}

func (h *Handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	theme, err := preference.ToggleTheme(r.Context(), h.prefs(pageID(r.Context())))
	if err != nil {
		h.logger.Warn("persist theme", slog.Any("error", err))
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{
			"theme":        string(theme),
			"toggle_label": theme.ToggleLabel(),
		})
		return
	}
	h.redirectHome(w, r, sess, shared.FlashMessage{Kind: "info", Message: fmt.Sprintf("Switched to %s theme.", theme)})
}

// redirectHome answers a form post with 303 to the dashboard, queueing flash
// for the next render.
func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request, sess *shared.Session, flash shared.FlashMessage) {
	if sess != nil {
		sess.Set(resumeKey, "1")
		if flash.Message != "" {
			sess.AddFlash(flash)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func resumed(sess *shared.Session) bool {
	if sess == nil || sess.Get(resumeKey) == "" {
		return false
	}
	sess.Set(resumeKey, "")
	return true
}

func (h *Handler) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	page, err := h.page(ctx, pageID(r.Context()))
	if err != nil {
		h.handleServerError(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.payload(page.Snapshot()))
}

type modulesResponse struct {
	Fingerprint string                  `json:"fingerprint,omitempty"`
	State       dashboard.FilterState   `json:"state"`
	Height      int                     `json:"height"`
	Modules     dashboard.RankedDataset `json:"modules"`
}

func (h *Handler) handleAPIModules(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	state := stateFromQuery(r, dashboard.DefaultFilterState())
	ds, err := h.selector.Select(ctx, state)
	if err != nil {
		h.handleServerError(w, "select modules", err)
		return
	}
	if ds == nil {
		ds = dashboard.RankedDataset{}
	}
	httpx.JSON(w, http.StatusOK, modulesResponse{
		Fingerprint: h.store.Fingerprint(),
		State:       state,
		Height:      h.sizer.Size(ds.Len()),
		Modules:     ds,
	})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	if !h.store.Available() {
		httpx.RespondError(w, fmt.Errorf("%w: no report loaded", httpx.ErrNotFound))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	state := dashboard.DefaultFilterState()
	if page, ok := h.pages.Get(pageID(r.Context())); ok {
		state = page.Snapshot().State
	}
	state = stateFromQuery(r, state)
	ds, err := h.selector.Select(ctx, state)
	if err != nil {
		h.handleServerError(w, "select modules", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	name := "soit-report"
	if strings.EqualFold(r.URL.Query().Get("section"), "modules") {
		name = "soit-modules"
		err = export.WriteModulesCSV(buf, state, ds)
	} else {
		err = export.WriteReportCSV(buf, h.store.Report(), state, ds)
	}
	if err != nil {
		h.handleServerError(w, "write csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", name))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handlePing(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// page returns the caller's live page, opening a fresh one when none exists.
func (h *Handler) page(ctx context.Context, id string) (*dashboard.Page, error) {
	if page, ok := h.pages.Get(id); ok {
		return page, nil
	}
	page, _, err := h.pages.Open(ctx, id)
	return page, err
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, sess *shared.Session, snap dashboard.Snapshot) {
	theme := preference.LoadTheme(r.Context(), h.prefs(pageID(r.Context())))
	vm := h.buildViewModel(snap, theme)

	var flash *shared.FlashMessage
	csrfToken := ""
	if sess != nil {
		flash = sess.PopFlash()
		if h.csrf != nil {
			token, err := h.csrf.EnsureToken(sess)
			if err != nil {
				h.handleServerError(w, "csrf token", err)
				return
			}
			csrfToken = token
		}
	}

	data := view.TemplateData{
		Title:       pageTitle,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Theme:       string(theme),
		Data:        vm,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) buildViewModel(snap dashboard.Snapshot, theme preference.Theme) DashboardViewModel {
	r := h.store.Report()
	vm := DashboardViewModel{
		HasData:      snap.HasData,
		Fingerprint:  h.store.Fingerprint(),
		Theme:        theme,
		ThemeToggle:  theme.ToggleLabel(),
		State:        snap.State,
		WeekOptions:  weekOptions(r, snap.State.Week),
		BasisOptions: basisOptions(snap.State.Basis),
		ScopeOptions: scopeOptions(snap.State.Scope),
		KPIs:         kpis(r),
		ModuleRows:   snap.Modules,
	}
	for _, v := range snap.Views {
		cv := h.chartView(v)
		if v.ID == dashboard.ModulesView {
			vm.Modules = cv
			continue
		}
		vm.Charts = append(vm.Charts, cv)
	}
	if r != nil {
		if r.RepeatedStudents != nil {
			vm.RepeatRows = table(r.RepeatedStudents.PreviewRows)
		}
		vm.SampleRows = table(r.SampleRows)
	}
	return vm
}

func (h *Handler) chartView(v dashboard.ViewSnapshot) ChartView {
	cv := ChartView{
		ID:      v.ID,
		Title:   v.Title,
		Visible: v.State == dashboard.StateVisible,
		Height:  v.Height,
	}
	if !cv.Visible || h.charts == nil {
		return cv
	}
	if c, ok := h.charts.Chart(v.Handle); ok {
		cv.SVG = c.SVG
		cv.Config = chartConfigJS(c.Config)
	}
	return cv
}

type viewPayload struct {
	dashboard.ViewSnapshot
	SVG    string          `json:"svg,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

type dashboardPayload struct {
	ID          string                  `json:"id"`
	Fingerprint string                  `json:"fingerprint,omitempty"`
	State       dashboard.FilterState   `json:"state"`
	HasData     bool                    `json:"has_data"`
	Modules     dashboard.RankedDataset `json:"modules"`
	Views       []viewPayload           `json:"views"`
}

func (h *Handler) payload(snap dashboard.Snapshot) dashboardPayload {
	out := dashboardPayload{
		ID:          snap.ID,
		Fingerprint: h.store.Fingerprint(),
		State:       snap.State,
		HasData:     snap.HasData,
		Modules:     snap.Modules,
		Views:       make([]viewPayload, 0, len(snap.Views)),
	}
	if out.Modules == nil {
		out.Modules = dashboard.RankedDataset{}
	}
	for _, v := range snap.Views {
		vp := viewPayload{ViewSnapshot: v}
		if h.charts != nil && v.State == dashboard.StateVisible {
			if c, ok := h.charts.Chart(v.Handle); ok {
				vp.SVG = string(c.SVG)
				vp.Config = c.Config
			}
		}
		out.Views = append(out.Views, vp)
	}
	return out
}

func (h *Handler) handleBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("bad dashboard request", slog.String("path", r.URL.Path), slog.Any("error", err))
	if wantsJSON(r) {
		httpx.RespondError(w, err)
		return
	}
	h.redirectHome(w, r, shared.SessionFromContext(r.Context()), shared.FlashMessage{Kind: "error", Message: "Invalid filter parameters."})
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

func pageID(ctx context.Context) string {
	if id := shared.SessionID(ctx); id != "" {
		return id
	}
	return anonymousPage
}

// patchFromValues only sets the dimensions present in the request.
func patchFromValues(r *http.Request) dashboard.FilterPatch {
	var patch dashboard.FilterPatch
	if _, ok := r.Form["week"]; ok {
		v := r.Form.Get("week")
		patch.Week = &v
	}
	if _, ok := r.Form["basis"]; ok {
		v := r.Form.Get("basis")
		patch.Basis = &v
	}
	if _, ok := r.Form["scope"]; ok {
		v := r.Form.Get("scope")
		patch.Scope = &v
	}
	return patch
}

func stateFromQuery(r *http.Request, base dashboard.FilterState) dashboard.FilterState {
	q := r.URL.Query()
	if q.Has("week") {
		base.Week = q.Get("week")
	}
	if q.Has("basis") {
		base.Basis = dashboard.Basis(q.Get("basis"))
	}
	if q.Has("scope") {
		base.Scope = dashboard.Scope(q.Get("scope"))
	}
	return base.Normalize()
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
