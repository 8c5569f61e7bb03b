package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/hr"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault, Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

type fakeInspector struct {
	err error
}

func (f fakeInspector) Queues() ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{QueueDefault}, nil
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.QueueInfo{Queue: queue, Size: 3, Pending: 2, Retry: 1}, nil
}

func TestClientNotifyAccountReadyQueuesMail(t *testing.T) {
	enq := &fakeEnqueuer{}
	client := NewClientWith(enq, nil)
	var notifier hr.Notifier = client

	err := notifier.NotifyAccountReady(context.Background(), hr.AccountNotice{EmpRefNo: "E100", Name: "John Doe", MailID: "john.doe.E100@company.com", LoginID: "john.doe"})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskTypeSendEmail, enq.tasks[0].Type())

	var payload SendEmailPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, "john.doe.E100@company.com", payload.To)
}

func TestClientNotifyAccountReadyPropagatesErrors(t *testing.T) {
	client := NewClientWith(&fakeEnqueuer{err: errors.New("redis down")}, nil)
	err := client.NotifyAccountReady(context.Background(), hr.AccountNotice{EmpRefNo: "E1", MailID: "a@b.com"})
	require.Error(t, err)

	err = client.NotifyAccountReady(context.Background(), hr.AccountNotice{EmpRefNo: "E1"})
	require.Error(t, err)
}

func TestClientEnqueueLookupWarmup(t *testing.T) {
	enq := &fakeEnqueuer{}
	info, err := NewClientWith(enq, nil).EnqueueLookupWarmup(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, TaskLookupWarmup, info.Type)
	assert.JSONEq(t, `{"invalidate":true}`, string(enq.tasks[0].Payload()))
}

func TestHandlerHealthAndStats(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(fakeInspector{}, nil).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":2}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var stats []QueueStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, QueueStats{Queue: "default", Size: 3, Pending: 2, Retry: 1}, stats[0])
}

func TestHandlerReportsUnavailableQueue(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(fakeInspector{err: errors.New("no redis")}, nil).MountRoutes(r)

	for _, path := range []string{"/health", "/stats"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, path)
	}
}
