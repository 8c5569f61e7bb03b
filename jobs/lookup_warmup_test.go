package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
)

type fakeWarmer struct {
	warmed      int
	invalidated int
	warmErr     error
}

func (f *fakeWarmer) Warm(context.Context) (int, error) {
	f.warmed++
	if f.warmErr != nil {
		return 0, f.warmErr
	}
	return 4, nil
}

func (f *fakeWarmer) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestLookupWarmupWarmsAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	warmer := &fakeWarmer{}
	job := NewLookupWarmupJob(warmer, nil, jobmetrics.NewMetrics(reg))
	task, err := NewLookupWarmupTask(false)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, warmer.warmed)
	assert.Equal(t, 0, warmer.invalidated)
	assert.Equal(t, float64(1), counterValue(t, reg, "odyssey_admin_jobs_total", map[string]string{"job": TaskLookupWarmup, "status": "success"}))
	assert.Equal(t, float64(4), counterValue(t, reg, "odyssey_admin_job_items_total", map[string]string{"job": TaskLookupWarmup}))
}

func TestLookupWarmupInvalidatesFirst(t *testing.T) {
	warmer := &fakeWarmer{}
	job := NewLookupWarmupJob(warmer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewLookupWarmupTask(true)
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, warmer.invalidated)
	assert.Equal(t, 1, warmer.warmed)
}

func TestLookupWarmupFailureIsTracked(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := NewLookupWarmupJob(&fakeWarmer{warmErr: errors.New("backend down")}, nil, jobmetrics.NewMetrics(reg))

	err := job.Handle(context.Background(), asynq.NewTask(TaskLookupWarmup, nil))
	require.Error(t, err)
	assert.Equal(t, float64(1), counterValue(t, reg, "odyssey_admin_jobs_failures_total", map[string]string{"job": TaskLookupWarmup}))
}

func TestLookupWarmupRejectsMalformedPayload(t *testing.T) {
	job := NewLookupWarmupJob(&fakeWarmer{}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	err := job.Handle(context.Background(), asynq.NewTask(TaskLookupWarmup, []byte("nope")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
