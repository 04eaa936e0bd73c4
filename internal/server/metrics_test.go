package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_MiddlewareLabelsByPattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/{id}/permissions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	h := m.Middleware(mux)

	for _, id := range []string{"a", "b", "c"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/user/"+id+"/permissions", nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /user/{id}/permissions", "403")); got != 3 {
		t.Errorf("matched route count = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")); got != 1 {
		t.Errorf("unmatched count = %v, want 1", got)
	}
}

func TestMetrics_AuthFailureAndHandler(t *testing.T) {
	m := NewMetrics(nil)
	m.AuthFailure("expired")
	m.AuthFailure("expired")

	if got := testutil.ToFloat64(m.AuthFailuresTotal.WithLabelValues("expired")); got != 2 {
		t.Errorf("auth_failures_total{expired} = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `auth_failures_total{reason="expired"} 2`) {
		t.Errorf("exposition missing counter:\n%s", rec.Body.String())
	}
}
