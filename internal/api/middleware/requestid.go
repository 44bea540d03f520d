// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/occamtv/occam/internal/log"
)

// HeaderRequestID is the canonical request correlation header.
const HeaderRequestID = "X-Request-ID"

// RequestID ensures every request carries a correlation ID. A client-supplied
// X-Request-ID is honored verbatim; otherwise a fresh UUID is generated. The ID
// is echoed on the response and stored in the request context so downstream
// log events can attach it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(HeaderRequestID, id)
		ctx := log.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
