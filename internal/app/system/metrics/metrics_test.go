package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/agreeverse/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := metrics.New()
	m.Auth("farmer", "signin", "ok")
	m.Auth("farmer", "signin", "ok")
	m.Rejected("admin", "unauthenticated")
	m.OAuth("user", "created")

	if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues("farmer", "signin", "ok")); got != 2 {
		t.Errorf("auth attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.GuardRejections.WithLabelValues("admin", "unauthenticated")); got != 1 {
		t.Errorf("guard rejections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.OAuthOutcomes.WithLabelValues("user", "created")); got != 1 {
		t.Errorf("oauth outcomes = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	m.Auth("user", "signin", "ok")
	m.Rejected("user", "invalid_token")
	m.OAuth("user", "failed")
}

func TestHandler_Exposition(t *testing.T) {
	m := metrics.New()
	m.Auth("user", "signup", "created")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	b, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(b), "agreeverse_auth_attempts_total") {
		t.Error("expected auth counter in exposition")
	}
}
