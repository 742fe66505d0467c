package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.TransactionChanged("expense", "create")
	m.AuthAttempt("login", true)
	m.RateLimited()
	m.EventPublished(nil)
	m.EventConsumed(errors.New("boom"))
	m.RowExported()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}

func TestCounters(t *testing.T) {
	m := New()

	m.TransactionChanged("expense", "create")
	m.TransactionChanged("expense", "create")
	m.TransactionChanged("income", "delete")
	if got := testutil.ToFloat64(m.transactions.WithLabelValues("expense", "create")); got != 2 {
		t.Fatalf("expected 2 expense creates, got %v", got)
	}

	m.AuthAttempt("login", false)
	if got := testutil.ToFloat64(m.authAttempts.WithLabelValues("login", "failure")); got != 1 {
		t.Fatalf("expected 1 failed login, got %v", got)
	}

	m.RateLimited()
	if got := testutil.ToFloat64(m.rateLimitHits); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %v", got)
	}

	m.EventPublished(errors.New("broker down"))
	if got := testutil.ToFloat64(m.eventsHandled.WithLabelValues("published", "failure")); got != 1 {
		t.Fatalf("expected 1 failed publish, got %v", got)
	}
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `fintrack_http_requests_total{method="GET",route="unmatched",status="200"} 1`) {
		t.Fatalf("missing request counter in output:\n%s", body)
	}
}
