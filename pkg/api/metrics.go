package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "chatroom_http_request_duration_seconds",
	Help:    "HTTP request latency by route template and method.",
	Buckets: prometheus.DefBuckets,
}, []string{"path", "method"})

// instrument records request durations keyed by the mux route template, so
// /messages/{id} stays one series regardless of the concrete ID.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		httpDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}
