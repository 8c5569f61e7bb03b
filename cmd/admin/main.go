package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/approval"
	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
	"github.com/odyssey-erp/odyssey-admin/internal/hr"
	"github.com/odyssey-erp/odyssey-admin/internal/inbox"
	"github.com/odyssey-erp/odyssey-admin/internal/lookup"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/payslip"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/db"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
	"github.com/odyssey-erp/odyssey-admin/internal/reports/assetsales"
	"github.com/odyssey-erp/odyssey-admin/internal/reports/itemcode"
	"github.com/odyssey-erp/odyssey-admin/internal/reports/lcbg"
	"github.com/odyssey-erp/odyssey-admin/internal/reports/unsecuredloan"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/vendorpay"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
	"github.com/odyssey-erp/odyssey-admin/jobs"
	"github.com/odyssey-erp/odyssey-admin/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var pool *pgxpool.Pool
	if cfg.AuditEnabled() {
		pool, err = db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
	} else {
		logger.Info("PG_DSN not set, approval audit trail disabled")
	}
	recorder := shared.NewApprovalRecorder(pool, logger)
	if err := recorder.EnsureSchema(ctx); err != nil {
		logger.Error("approval audit schema", slog.Any("error", err))
		os.Exit(1)
	}

	sessionManager := shared.NewSessionManager(redisClient, "odyssey_admin_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, apiclient.WithLogger(logger), apiclient.WithObserver(metrics))
	lookups := lookup.NewService(api, lookup.NewCache(redisClient, cfg.LookupCacheTTL), logger)

	jobsClient := jobs.NewClient(redisOpts, logger)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	builder := approval.Builder{EmailDomain: cfg.FallbackEmailDomain, Logger: logger}
	hrOpts := hr.Options{
		Builder:        builder,
		Recorder:       recorder,
		Observer:       metrics,
		Notifier:       jobsClient,
		SecondaryDelay: cfg.SecondaryNoticeDelay,
		Logger:         logger,
	}
	inboxDefs := []*inbox.Definition{
		hr.StaffInbox(api, hrOpts),
		hr.AppraisalInbox(api, hrOpts),
		vendorpay.Inbox(api, vendorpay.Options{
			Builder:        builder,
			Recorder:       recorder,
			Observer:       metrics,
			SecondaryDelay: cfg.SecondaryNoticeDelay,
			Logger:         logger,
		}),
	}
	inboxes := make([]*inbox.Handler, 0, len(inboxDefs))
	for _, def := range inboxDefs {
		inboxes = append(inboxes, inbox.NewHandler(def, api, logger, templates, csrfManager))
	}

	reportDefs := []*reports.Definition{
		assetsales.New(api),
		lcbg.New(api, lcbg.Options{LockOnAnyYear: cfg.LCBGLockOnAnyYear}),
		itemcode.New(api),
		unsecuredloan.New(api),
	}
	reportHandlers := make([]*reports.Handler, 0, len(reportDefs))
	for _, def := range reportDefs {
		reportHandlers = append(reportHandlers, reports.NewHandler(def, logger, templates, csrfManager, lookups))
	}

	pdfClient := report.NewClient(cfg.GotenbergURL)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Templates:          templates,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Metrics:            metrics,
		Reports:            reportHandlers,
		Inboxes:            inboxes,
		PaySlipHandler:     payslip.NewHandler(api, pdfClient, templates, csrfManager, logger),
		DiagnosticsHandler: diagnostics.NewHandler(logger),
		ReportHandler:      report.NewHandler(pdfClient, logger),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
