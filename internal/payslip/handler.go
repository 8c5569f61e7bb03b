package payslip

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
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
	"github.com/odyssey-erp/odyssey-admin/report"
)

// Client fetches pay slips from the backend.
type Client interface {
	PaySlip(ctx context.Context, empRefNo, month, year string) (apiclient.Record, error)
}

// Renderer converts HTML to PDF.
type Renderer interface {
	RenderHTML(ctx context.Context, html string, opts report.PageOptions) ([]byte, error)
}

// Handler serves the pay slip pages.
type Handler struct {
	client    Client
	renderer  Renderer
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler constructs the pay slip handler.
func NewHandler(client Client, renderer Renderer, templates *view.Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client:    client,
		renderer:  renderer,
		templates: templates,
		csrf:      csrf,
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// MountRoutes registers the pay slip routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Get("/print", h.print)
	r.Get("/pdf", h.pdf)
}

type slipForm struct {
	EmpRefNo string `validate:"required,max=32"`
	Month    int    `validate:"required,min=1,max=12"`
	Year     int    `validate:"required,min=2000,max=2100"`
}

var fieldLabels = map[string]string{"EmpRefNo": "Employee", "Month": "Month", "Year": "Year"}

func (h *Handler) readForm(r *http.Request) (slipForm, []string) {
	q := r.URL.Query()
	f := slipForm{EmpRefNo: strings.TrimSpace(q.Get("emp"))}
	f.Month, _ = strconv.Atoi(q.Get("month"))
	f.Year, _ = strconv.Atoi(q.Get("year"))
	var problems []string
	if err := h.validator.Struct(f); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return f, []string{err.Error()}
		}
		for _, fe := range errs {
			problems = append(problems, fieldLabels[fe.Field()])
		}
	}
	return f, problems
}

type monthOption struct {
	Value int
	Label string
}

type pageData struct {
	Form   slipForm
	Months []monthOption
	Slip   *Slip
}

func (h *Handler) formData(f slipForm) pageData {
	data := pageData{Form: f}
	for m := time.January; m <= time.December; m++ {
		data.Months = append(data.Months, monthOption{Value: int(m), Label: m.String()})
	}
	if data.Form.Year == 0 {
		data.Form.Year = h.now().Year()
	}
	return data
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	f, problems := h.readForm(r)
	data := h.formData(f)
	var notices []shared.FlashMessage
	submitted := r.URL.Query().Has("emp")
	switch {
	case !submitted:
	case len(problems) > 0:
		notices = append(notices, shared.FlashMessage{Kind: shared.FlashWarning, Message: "Please select " + strings.Join(problems, ", ") + "."})
	default:
		slip, err := h.fetch(r.Context(), f)
		if err != nil {
			notices = append(notices, shared.FlashMessage{Kind: shared.FlashDanger, Message: "Failed to load pay slip: " + err.Error()})
			break
		}
		data.Slip = &slip
		if slip.Mismatch() {
			notices = append(notices, shared.FlashMessage{Kind: shared.FlashWarning, Message: fmt.Sprintf("Net pay reported by payroll (%s) differs from the computed total.", view.FormatMoney(slip.ReportedNet))})
		}
	}
	if err := h.templates.Page(w, r, h.csrf, "pages/payslip/payslip.html", "Pay Slip", data, http.StatusOK, notices...); err != nil {
		h.logger.Error("render pay slip", slog.Any("error", err))
	}
}

func (h *Handler) print(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.templates.Render(w, "pages/payslip/print.html", view.TemplateData{Title: "Pay Slip " + slip.Period(), Data: printData{Slip: slip, AutoPrint: true}}); err != nil {
		h.logger.Error("render pay slip print view", slog.Any("error", err))
	}
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	slip, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.templates.Execute(&buf, "pages/payslip/print.html", view.TemplateData{Title: "Pay Slip " + slip.Period(), Data: printData{Slip: slip}}); err != nil {
		h.logger.Error("render pay slip html", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.renderer.RenderHTML(r.Context(), buf.String(), report.A4)
	if err != nil {
		h.logger.Error("render pay slip pdf", slog.String("emp_ref_no", slip.EmpRefNo), slog.Any("error", err))
		view.RedirectWithFlash(w, r, "/payroll/payslip?"+r.URL.RawQuery, shared.FlashDanger, "The PDF could not be generated. Use Print instead.")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+slip.Filename())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

type printData struct {
	Slip      Slip
	AutoPrint bool
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Slip, bool) {
	f, problems := h.readForm(r)
	if len(problems) > 0 {
		view.RedirectWithFlash(w, r, "/payroll/payslip", shared.FlashWarning, "Please select "+strings.Join(problems, ", ")+".")
		return Slip{}, false
	}
	slip, err := h.fetch(r.Context(), f)
	if err != nil {
		view.RedirectWithFlash(w, r, "/payroll/payslip", shared.FlashDanger, "Failed to load pay slip: "+err.Error())
		return Slip{}, false
	}
	return slip, true
}

func (h *Handler) fetch(ctx context.Context, f slipForm) (Slip, error) {
	rec, err := h.client.PaySlip(ctx, f.EmpRefNo, strconv.Itoa(f.Month), strconv.Itoa(f.Year))
	if err != nil {
		h.logger.Warn("fetch pay slip", slog.String("emp_ref_no", f.EmpRefNo), slog.Any("error", err))
		return Slip{}, err
	}
	if rec.Len() == 0 {
		return Slip{}, fmt.Errorf("no pay slip for %s in %s %d", f.EmpRefNo, time.Month(f.Month), f.Year)
	}
	slip := Build(rec, time.Month(f.Month), f.Year)
	if slip.EmpRefNo == "" {
		slip.EmpRefNo = f.EmpRefNo
	}
	return slip, nil
}
