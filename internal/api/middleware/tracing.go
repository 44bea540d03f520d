// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/occamtv/occam/internal/log"
	"github.com/occamtv/occam/internal/telemetry"
)

// Tracing opens a server span per request. The span is named after the chi
// route pattern once routing has resolved it, and the URL attribute carries
// only the path. Query strings are reduced to a trailing "?" so API keys and
// search terms never land in trace storage.
func Tracing(tracerName string) func(http.Handler) http.Handler {
	tracer := telemetry.Tracer(tracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			urlLabel := r.URL.Path
			if r.URL.RawQuery != "" {
				urlLabel += "?"
			}

			span.SetName(r.Method + " " + route)
			span.SetAttributes(telemetry.HTTPAttributes(r.Method, route, urlLabel, ww.Status())...)
			if id := log.RequestIDFromContext(ctx); id != "" {
				span.SetAttributes(attribute.String("http.request_id", id))
			}
			if ww.Status() >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(ww.Status()))
			}
		})
	}
}
