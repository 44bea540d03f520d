// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitRejectsBurst(t *testing.T) {
	var served int
	h := RateLimit(RateLimitConfig{RequestLimit: 1, WindowSize: time.Minute})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			served++
			w.WriteHeader(http.StatusOK)
		}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1, served)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, second.Body.String())
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestRateLimitKeyedByClientIP(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 1, WindowSize: time.Minute})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "203.0.113.7:1000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same window, different client.
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "203.0.113.8:1000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitDefaultsWindowToOneSecond(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 1})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	burstLimited := false
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code == http.StatusTooManyRequests {
			burstLimited = true
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			break
		}
	}
	assert.True(t, burstLimited, "burst of 10 should trip a 1 rps limit")
}
