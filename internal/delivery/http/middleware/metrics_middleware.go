package middleware

import (
	"net/http"
	"strconv"
	"time"

	"clinic-front-desk/pkg/metrics"

	"github.com/gorilla/mux"
)

// Metrics records request counts and latency labelled by route template,
// so /doctors/{id} is one series instead of one per id.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status())).Inc()
			m.HTTPLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
