package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/app"
	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
	"github.com/odyssey-erp/odyssey-admin/internal/lookup"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, apiclient.WithLogger(logger))
	lookups := lookup.NewService(api, lookup.NewCache(redisClient, cfg.LookupCacheTTL), logger)
	metrics := jobmetrics.NewMetrics(nil)

	var mailer jobs.Mailer = jobs.LogMailer{Logger: logger}
	if cfg.SMTPAddr != "" {
		mailer = jobs.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
	} else {
		logger.Info("SMTP_ADDR not set, mail will only be logged")
	}
	mailJob := &jobs.SendEmailJob{Mailer: mailer, Logger: logger}
	warmupJob := jobs.NewLookupWarmupJob(lookups, logger, metrics)

	warmupTask, err := jobs.NewLookupWarmupTask(false)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
			{Type: jobs.TaskLookupWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.LookupWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
