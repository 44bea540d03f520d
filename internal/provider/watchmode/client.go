// SPDX-License-Identifier: MIT

// Package watchmode talks to the Watchmode API. Watchmode knows titles by
// its own numeric IDs, so IMDB lookups resolve through a cached ID mapping,
// and sources are reported as numeric service IDs that are translated
// through the catalog's native-ID mapping loaded at startup.
package watchmode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/catalog"
	"github.com/occamtv/occam/internal/metrics"
)

const (
	providerName = "watchmode"

	requestTimeout = 10 * time.Second
)

// MappingSource provides the native-service-ID translation table, normally
// the catalog store.
type MappingSource interface {
	NativeServiceMappings(ctx context.Context) (map[int64]catalog.ServiceRef, error)
}

// Config tunes the client. Zero values fall back to the documented defaults.
type Config struct {
	SearchTTL time.Duration
}

// Client is the proxied-ID streaming availability provider. Immutable after
// New, safe for concurrent use.
type Client struct {
	base      string
	key       string
	http      *http.Client
	cache     *cache.Cache
	mapping   map[int64]catalog.ServiceRef
	searchTTL time.Duration
	log       zerolog.Logger
}

// New builds a client against baseURL and loads the service-ID mapping from
// the catalog. Without at least one mapped service no source could ever be
// priced, so an empty mapping refuses to start.
func New(ctx context.Context, c *cache.Cache, mappings MappingSource, apiKey, baseURL string, cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = cache.DefaultSearchTTL
	}

	mapping, err := mappings.NativeServiceMappings(ctx)
	if err != nil {
		return nil, err
	}
	if len(mapping) == 0 {
		return nil, apperr.New(apperr.ErrInternal, "no native service mappings configured")
	}
	logger.Info().
		Int("services", len(mapping)).
		Msg("service mapping loaded")

	return &Client{
		base:      strings.TrimRight(baseURL, "/"),
		key:       apiKey,
		http:      &http.Client{Timeout: requestTimeout},
		cache:     c,
		mapping:   mapping,
		searchTTL: cfg.SearchTTL,
		log:       logger,
	}, nil
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return providerName }

func (c *Client) get(ctx context.Context, path string, params url.Values, operation string, v any) error {
	u, err := url.Parse(c.base)
	if err != nil {
		return apperr.Wrap(apperr.ErrExternalAPI, "invalid provider base URL", err)
	}
	u.Path = path
	params.Set("apiKey", c.key)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return apperr.Wrap(apperr.ErrExternalAPI, "failed to build streaming API request", err)
	}
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
