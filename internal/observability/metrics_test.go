package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesJobMetrics(t *testing.T) {
	metrics := NewMetrics()
	jm := jobmetrics.NewMetrics(metrics.Registerer())
	_ = jm.Track("lookup:warmup").End(nil)

	body := scrape(t, metrics)
	if !strings.Contains(body, `odyssey_admin_jobs_total{job="lookup:warmup",status="success"} 1`) {
		t.Fatalf("expected job counter, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, "http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, "http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestUpstreamAndApprovalCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveUpstream("/HR/GetStaffDetails", 200, 120*time.Millisecond)
	metrics.ObserveUpstream("/HR/GetStaffDetails", 0, time.Second)
	metrics.ApprovalOutcome("staff", "Approve", "success")

	body := scrape(t, metrics)
	for _, want := range []string{
		`odyssey_admin_upstream_requests_total{code="200",endpoint="/HR/GetStaffDetails"} 1`,
		`odyssey_admin_upstream_requests_total{code="0",endpoint="/HR/GetStaffDetails"} 1`,
		`odyssey_admin_approval_actions_total{action="Approve",module="staff",result="success"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in: %s", want, body)
		}
	}

	var nilMetrics *Metrics
	nilMetrics.ApprovalOutcome("staff", "Verify", "success")
	nilMetrics.ObserveUpstream("/x", 200, time.Millisecond)
}
