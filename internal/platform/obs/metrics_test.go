package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP("/drivers/{driverID}/compliance", http.StatusOK, 20*time.Millisecond)
	m.CountViolation("driving_limit", "critical")
	m.CountSchedule("scheduled")

	err := errors.New("boom")
	Time(WithRequestID(context.Background(), "req-1"), "repo.ListEvents")(&err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`hos_http_requests_total{route="/drivers/{driverID}/compliance",status="200"} 1`,
		`hos_violations_detected_total{rule="driving_limit",severity="critical"} 1`,
		`hos_schedules_total{status="scheduled"} 1`,
		`hos_operation_duration_seconds_count{op="repo.ListEvents",outcome="error"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
