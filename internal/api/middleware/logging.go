// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/occamtv/occam/internal/log"
)

// Logging emits one structured access log line per request. Server errors are
// logged at error level, everything else at debug so steady-state traffic does
// not drown the log at the default level.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}

		logger := log.WithComponentFromContext(r.Context(), "http")
		evt := logger.Debug()
		if ww.Status() >= http.StatusInternalServerError {
			evt = logger.Error()
		}
		evt.
			Str(log.FieldMethod, r.Method).
			Str(log.FieldPath, route).
			Int(log.FieldStatus, ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request completed")
	})
}
