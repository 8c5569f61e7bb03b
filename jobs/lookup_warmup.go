package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LookupWarmer reloads cached dropdown lists.
type LookupWarmer interface {
	Warm(ctx context.Context) (int, error)
	Invalidate(ctx context.Context) error
}

// LookupWarmupJob pre-populates the lookup cache so report pages open without
// waiting on the backend.
type LookupWarmupJob struct {
	Lookups LookupWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewLookupWarmupJob wires dependencies for the warmup handler.
func NewLookupWarmupJob(lookups LookupWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *LookupWarmupJob {
	return &LookupWarmupJob{Lookups: lookups, Logger: logger, Metrics: metrics, Timeout: time.Minute}
}

// Handle processes lookup warmup tasks.
func (j *LookupWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Lookups == nil {
		return errors.New("lookup warmup: handler not configured")
	}
	var payload LookupWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("lookup warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.metrics().Track(TaskLookupWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	logger := j.logger().With(slog.Bool("invalidate", payload.Invalidate))
	start := time.Now()
	logger.Info("starting lookup warmup")

	if payload.Invalidate {
		if err := j.Lookups.Invalidate(ctx); err != nil {
			resultErr = err
			logger.Error("invalidate lookups", slog.Any("error", err))
			return resultErr
		}
	}
	lists, err := j.Lookups.Warm(ctx)
	if err != nil {
		resultErr = err
		logger.Error("warm lookups", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddItems(TaskLookupWarmup, lists)
	logger.Info("completed lookup warmup", slog.Int("lists", lists), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *LookupWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLookupWarmup))
	}
	return slog.Default().With(slog.String("job", TaskLookupWarmup))
}

func (j *LookupWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
