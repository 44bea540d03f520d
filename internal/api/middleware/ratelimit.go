// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig bounds per-client request throughput.
type RateLimitConfig struct {
	// RequestLimit is the number of requests allowed per window.
	RequestLimit int
	// WindowSize is the measurement window. Zero means one second.
	WindowSize time.Duration
}

// RateLimit applies a per-IP sliding window limit. Rejected requests get a
// 429 with a Retry-After hint and the standard error envelope.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	window := cfg.WindowSize
	if window <= 0 {
		window = time.Second
	}

	return httprate.Limit(cfg.RequestLimit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
		}),
	)
}
