package reports

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/lookup"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

const defaultPerPage = 25

// Lookups resolves dropdown lists for the filter bar.
type Lookups interface {
	Many(ctx context.Context, names ...string) (map[string][]lookup.Option, error)
}

// Handler serves one report page.
type Handler struct {
	def       *Definition
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	lookups   Lookups
	now       func() time.Time
}

// NewHandler constructs a report page handler.
func NewHandler(def *Definition, logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, lookups Lookups) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{def: def, logger: logger.With(slog.String("report", def.Slug)), templates: templates, csrf: csrf, lookups: lookups, now: time.Now}
}

// Definition returns the page served by h.
func (h *Handler) Definition() *Definition { return h.def }

// Path is the mount point of the page.
func (h *Handler) Path() string { return "/reports/" + h.def.Slug }

// MountRoutes registers HTTP routes relative to Path.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/", h.apply)
	r.Post("/reset", h.reset)
	r.Get("/export.csv", h.exportCSV)
	r.Get("/export.xlsx", h.exportXLSX)
}

type filterView struct {
	Filter
	Value   string
	Choices []Option
	Locked  bool
}

type cardView struct {
	Label   string
	Display string
}

type rowView struct {
	Ref      string
	Cells    []string
	Selected bool
}

type pageData struct {
	Report        *Definition
	BasePath      string
	Filters       []filterView
	Loaded        bool
	Error         string
	Cards         []cardView
	Columns       []string
	Rows          []rowView
	Pagination    shared.Pagination
	Selected      string
	DetailColumns []string
	DetailRows    [][]string
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	st, s := h.def.restore(sess)
	var notices []shared.FlashMessage

	if s.Loaded {
		rows, err := h.def.Fetch(ctx, st.Filters)
		if err != nil {
			h.logger.Warn("fetch report", slog.Any("error", err))
			st = h.def.Reduce(st, Action{Kind: ActionFetchFailed, Err: err})
			notices = append(notices, shared.FlashMessage{Kind: shared.FlashDanger, Message: "Failed to load " + h.def.Title + ": " + st.Error})
		} else {
			st = h.def.Reduce(st, Action{Kind: ActionFetched, Rows: rows})
			if s.Announce {
				notices = append(notices, announce(len(rows)))
			}
		}
		if ref := strings.TrimSpace(r.URL.Query().Get("ref")); ref != "" && st.Loaded && h.def.FetchDetail != nil {
			st = h.def.Reduce(st, Action{Kind: ActionSelect, Value: ref})
			detail, err := h.def.FetchDetail(ctx, ref)
			if err != nil {
				h.logger.Warn("fetch report detail", slog.String("ref", ref), slog.Any("error", err))
				notices = append(notices, shared.FlashMessage{Kind: shared.FlashDanger, Message: "Failed to load details: " + err.Error()})
			} else {
				st = h.def.Reduce(st, Action{Kind: ActionDetailFetched, Rows: detail})
			}
		}
	}
	if s.Announce {
		s.Announce = false
		h.def.store(sess, s)
	}

	options, err := h.options(ctx)
	if err != nil {
		h.logger.Warn("load filter options", slog.Any("error", err))
		notices = append(notices, shared.FlashMessage{Kind: shared.FlashWarning, Message: "Some filter options could not be loaded."})
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	data := h.pageData(st, options, page)
	if err := h.templates.Page(w, r, h.csrf, "pages/reports/report.html", h.def.Title, data, http.StatusOK, notices...); err != nil {
		h.logger.Error("render report", slog.Any("error", err))
	}
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	st, _ := h.def.restore(sess)
	for _, f := range h.def.Filters {
		if _, ok := r.PostForm[f.Name]; ok {
			st = h.def.Reduce(st, Action{Kind: ActionSetFilter, Field: f.Name, Value: r.PostFormValue(f.Name)})
		}
	}
	if err := h.def.Validate(st.Filters); err != nil {
		h.def.store(sess, saved{Filters: st.Filters})
		view.RedirectWithFlash(w, r, h.Path(), "warning", err.Error())
		return
	}
	h.def.store(sess, saved{Filters: st.Filters, Loaded: true, Announce: true})
	http.Redirect(w, r, h.Path(), http.StatusSeeOther)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.def.forget(shared.SessionFromContext(r.Context()))
	view.RedirectWithFlash(w, r, h.Path(), "info", "Filters cleared.")
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.exportRows(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", h.filename("csv")))
	_, _ = w.Write([]byte(ConvertToCSV(rows)))
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.exportRows(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		h.logger.Error("export xlsx", slog.Any("error", err))
		view.RedirectWithFlash(w, r, h.Path(), "danger", "Failed to build the workbook.")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", h.filename("xlsx")))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) exportRows(w http.ResponseWriter, r *http.Request) ([]apiclient.Record, bool) {
	st, s := h.def.restore(shared.SessionFromContext(r.Context()))
	if !s.Loaded {
		view.RedirectWithFlash(w, r, h.Path(), "warning", "View the report before exporting.")
		return nil, false
	}
	rows, err := h.def.Fetch(r.Context(), st.Filters)
	if err != nil {
		h.logger.Warn("fetch report for export", slog.Any("error", err))
		view.RedirectWithFlash(w, r, h.Path(), "danger", "Failed to load "+h.def.Title+": "+err.Error())
		return nil, false
	}
	if len(rows) == 0 {
		view.RedirectWithFlash(w, r, h.Path(), "warning", "No data to export.")
		return nil, false
	}
	return rows, true
}

func (h *Handler) filename(ext string) string {
	return fmt.Sprintf("%s-%s.%s", h.def.Slug, h.now().Format("20060102-150405"), ext)
}

func (h *Handler) options(ctx context.Context) (map[string][]lookup.Option, error) {
	names := h.def.Lookups()
	if len(names) == 0 || h.lookups == nil {
		return nil, nil
	}
	return h.lookups.Many(ctx, names...)
}

func (h *Handler) pageData(st State, options map[string][]lookup.Option, page int) pageData {
	locked := h.def.Locked(st.Filters)
	data := pageData{
		Report:   h.def,
		BasePath: h.Path(),
		Loaded:   st.Loaded,
		Error:    st.Error,
		Selected: st.Selected,
	}
	for _, f := range h.def.Filters {
		fv := filterView{Filter: f, Value: st.Filters[f.Name], Locked: locked[f.Name]}
		fv.Choices = append(fv.Choices, f.Options...)
		for _, o := range options[f.Lookup] {
			fv.Choices = append(fv.Choices, Option{Value: o.Value, Label: o.Label})
		}
		data.Filters = append(data.Filters, fv)
	}
	if !st.Loaded {
		return data
	}
	if h.def.Summarize != nil {
		for _, c := range h.def.Summarize(st.Rows) {
			data.Cards = append(data.Cards, cardView{Label: c.Label, Display: c.Display()})
		}
	}
	perPage := h.def.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	data.Pagination = shared.NewPagination(page, perPage, len(st.Rows))
	start, end := data.Pagination.Bounds()
	data.Columns = Columns(st.Rows)
	for _, row := range st.Rows[start:end] {
		ref := h.def.RowRef(row)
		data.Rows = append(data.Rows, rowView{Ref: ref, Cells: cells(row, data.Columns), Selected: ref != "" && ref == st.Selected})
	}
	if st.Selected != "" {
		data.DetailColumns = Columns(st.Detail)
		for _, row := range st.Detail {
			data.DetailRows = append(data.DetailRows, cells(row, data.DetailColumns))
		}
	}
	return data
}

func cells(row apiclient.Record, columns []string) []string {
	out := make([]string, len(columns))
	for i, key := range columns {
		v, _ := row.Get(key)
		out[i] = apiclient.FormatValue(v)
	}
	return out
}

func announce(n int) shared.FlashMessage {
	if n == 0 {
		return shared.FlashMessage{Kind: shared.FlashInfo, Message: "No records found for the selected filters."}
	}
	return shared.FlashMessage{Kind: shared.FlashSuccess, Message: fmt.Sprintf("%d records loaded.", n)}
}

// Locked reports the filters a policy currently pins.
func (d *Definition) Locked(f Filters) map[string]bool {
	out := make(map[string]bool)
	if d.Policy == nil {
		return out
	}
	const probe = "\x00probe"
	for _, flt := range d.Filters {
		trial := f.clone()
		trial[flt.Name] = probe
		if d.Policy(trial)[flt.Name] != probe {
			out[flt.Name] = true
		}
	}
	return out
}
