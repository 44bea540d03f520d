// SPDX-License-Identifier: MIT
package api

import (
	"encoding/json"
	"net/http"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/log"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its HTTP status and renders the error envelope.
// Server-side failures log at error level with the full cause chain, client
// errors at debug.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)

	logger := log.WithComponentFromContext(r.Context(), "api")
	evt := logger.Debug()
	if status >= http.StatusInternalServerError {
		evt = logger.Error()
	}
	evt.Err(err).
		Str(log.FieldMethod, r.Method).
		Str(log.FieldPath, r.URL.Path).
		Int(log.FieldStatus, status).
		Msg("request failed")

	writeJSON(w, status, map[string]string{"error": apperr.UserMessage(err)})
}
