// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"
	"runtime"

	"github.com/occamtv/occam/internal/log"
)

// Recoverer converts handler panics into a 500 response instead of tearing
// down the connection. The stack is logged, the client sees only the generic
// error envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				buf := make([]byte, 8192)
				n := runtime.Stack(buf, false)

				logger := log.WithComponentFromContext(r.Context(), "http")
				logger.Error().
					Interface("panic", rec).
					Bytes("stack", buf[:n]).
					Str(log.FieldMethod, r.Method).
					Str(log.FieldPath, r.URL.Path).
					Msg("panic recovered")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
