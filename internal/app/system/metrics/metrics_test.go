package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/liderplan/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := metrics.HTTPRequests.WithLabelValues("/plans/{id}", http.MethodGet, "404")
	before := testutil.ToFloat64(c)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/"+id, nil))
	}

	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("counter delta = %v, want 2", got)
	}
}

func TestHandler_ExposesCollectors(t *testing.T) {
	metrics.Logins.WithLabelValues("success").Inc()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "liderplan_logins_total") {
		t.Error("expected liderplan_logins_total in exposition")
	}
}

func TestResult(t *testing.T) {
	if metrics.Result(nil) != "success" || metrics.Result(errors.New("x")) != "error" {
		t.Error("unexpected Result labels")
	}
}
