// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts served requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liderplan_http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route pattern and method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "liderplan_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"route", "method"})

	// Logins counts login attempts by result.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liderplan_logins_total",
		Help: "Login attempts by result (success, invalid, rate_limited)",
	}, []string{"result"})

	// Plans counts plan mutations by operation.
	Plans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liderplan_plan_operations_total",
		Help: "Plan operations by kind (create, update, delete)",
	}, []string{"operation"})

	// Activities counts activity mutations by operation.
	Activities = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liderplan_activity_operations_total",
		Help: "Activity operations by kind (create, update, status, delete, comment, evidence)",
	}, []string{"operation"})

	// ActivitiesClosed counts writes that moved an activity to CLOSED.
	ActivitiesClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "liderplan_activities_closed_total",
		Help: "Activities that reached CLOSED",
	})

	// FileBytes tracks uploaded file sizes.
	FileBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "liderplan_upload_bytes",
		Help:    "Size of uploaded evidence files in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB to ~256MiB
	})

	// Files counts file operations by kind and result.
	Files = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liderplan_file_operations_total",
		Help: "File operations by kind (upload, download, delete) and result",
	}, []string{"operation", "result"})

	// Sweeps counts maintenance passes by worker and result.
	Sweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liderplan_worker_sweeps_total",
		Help: "Background maintenance passes by worker and result",
	}, []string{"worker", "result"})

	// SweptRecords counts records changed by maintenance passes.
	SweptRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "liderplan_worker_swept_records_total",
		Help: "Records changed by background maintenance, by worker",
	}, []string{"worker"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records HTTPRequests and HTTPDuration. The route label is the
// chi route pattern so IDs in paths do not create new series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Result maps an error to a "success" or "error" label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
