package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lantransfer_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lantransfer_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	// Transfer metrics
	FilesUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lantransfer_files_uploaded_total",
			Help: "Total files stored",
		},
		[]string{"category"},
	)

	FilesDownloaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lantransfer_files_downloaded_total",
			Help: "Total file downloads started",
		},
		[]string{"category"},
	)

	FilesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lantransfer_files_deleted_total",
			Help: "Total files deleted",
		},
	)

	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lantransfer_messages_posted_total",
			Help: "Total chat messages posted",
		},
	)
)

// statusWriter wraps http.ResponseWriter to capture status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Metrics records request counts and latency, labelled with the matched
// route pattern so file names do not become label values.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
