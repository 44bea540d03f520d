// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/occamtv/occam/internal/metrics"
)

// Metrics records request counts, latency and in-flight gauge per route
// pattern. Using the chi pattern instead of the raw path keeps label
// cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.IncHTTPInFlight()
		defer metrics.DecHTTPInFlight()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(r.Method, route, ww.Status(), time.Since(start))
	})
}
