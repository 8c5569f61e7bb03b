package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
	"github.com/odyssey-erp/odyssey-admin/internal/inbox"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/payslip"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
	"github.com/odyssey-erp/odyssey-admin/jobs"
	"github.com/odyssey-erp/odyssey-admin/report"
	"github.com/odyssey-erp/odyssey-admin/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	Reports            []*reports.Handler
	Inboxes            []*inbox.Handler
	PaySlipHandler     *payslip.Handler
	DiagnosticsHandler *diagnostics.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the admin defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		var appEnv string
		if params.Config != nil {
			appEnv = params.Config.AppEnv
		}
		data := map[string]any{"AppEnv": appEnv}
		if err := params.Templates.Page(w, r, params.CSRFManager, "pages/home.html", "Odyssey Admin", data, http.StatusOK); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
		}
	})

	for _, h := range params.Reports {
		if h == nil {
			continue
		}
		r.Route(h.Path(), h.MountRoutes)
	}
	for _, h := range params.Inboxes {
		if h == nil {
			continue
		}
		r.Route(h.Path(), h.MountRoutes)
	}
	if params.PaySlipHandler != nil {
		r.Route("/payroll/payslip", params.PaySlipHandler.MountRoutes)
	}
	if params.DiagnosticsHandler != nil {
		r.Route("/diagnostics", params.DiagnosticsHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/pdf", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler lets browsers cache static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
