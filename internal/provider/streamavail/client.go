// SPDX-License-Identifier: MIT

// Package streamavail talks to the RapidAPI Streaming Availability API.
// It resolves titles by IMDB ID directly, so no intermediate ID mapping is
// needed, but every availability lookup spends monthly quota and is guarded
// by a shared usage counter plus a local pacer.
package streamavail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/metrics"
)

const (
	providerName = "streamavail"

	defaultMonthlyQuota   = 25000
	defaultDailySafeLimit = 800

	requestTimeout = 10 * time.Second
)

// Config tunes the client. Zero values fall back to the documented defaults.
type Config struct {
	SearchTTL      time.Duration
	MonthlyQuota   int64
	DailySafeLimit int
}

// Client is the direct-IMDB streaming availability provider. Immutable after
// New, safe for concurrent use.
type Client struct {
	base      string
	key       string
	http      *http.Client
	cache     *cache.Cache
	quota     *quota
	pacer     *rate.Limiter
	searchTTL time.Duration
	log       zerolog.Logger
}

// New builds a client against baseURL using apiKey for the RapidAPI header.
func New(c *cache.Cache, apiKey, baseURL string, cfg Config, logger zerolog.Logger) *Client {
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = cache.DefaultSearchTTL
	}
	if cfg.MonthlyQuota <= 0 {
		cfg.MonthlyQuota = defaultMonthlyQuota
	}
	if cfg.DailySafeLimit <= 0 {
		cfg.DailySafeLimit = defaultDailySafeLimit
	}

	// Pace availability calls so a month's quota cannot burn down in one
	// burst. Tokens refill at the daily safe rate; the burst window covers
	// a typical optimization batch.
	perSecond := rate.Limit(float64(cfg.DailySafeLimit) / (24 * time.Hour).Seconds())
	burst := cfg.DailySafeLimit / 16
	if burst < 1 {
		burst = 1
	}

	return &Client{
		base:      strings.TrimRight(baseURL, "/"),
		key:       apiKey,
		http:      &http.Client{Timeout: requestTimeout},
		cache:     c,
		quota:     &quota{cache: c, monthly: cfg.MonthlyQuota, log: logger},
		pacer:     rate.NewLimiter(perSecond, burst),
		searchTTL: cfg.SearchTTL,
		log:       logger,
	}
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return providerName }

func (c *Client) get(ctx context.Context, path string, params url.Values, operation string, v any) error {
	u, err := url.Parse(c.base)
	if err != nil {
		return apperr.Wrap(apperr.ErrExternalAPI, "invalid provider base URL", err)
	}
	u.Path = path
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperr.Wrap(apperr.ErrExternalAPI, "failed to build streaming API request", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.key)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		metrics.RecordProviderRequest(providerName, operation, "error", time.Since(start))
		return apperr.Wrap(apperr.ErrExternalAPI, "request to streaming API failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		metrics.RecordProviderRequest(providerName, operation, "error", time.Since(start))
		return apperr.Newf(apperr.ErrExternalAPI, "streaming API returned status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		metrics.RecordProviderRequest(providerName, operation, "error", time.Since(start))
		return apperr.Wrap(apperr.ErrExternalAPI, "failed to decode streaming API response", err)
	}
	metrics.RecordProviderRequest(providerName, operation, "ok", time.Since(start))
	return nil
}
