// SPDX-License-Identifier: MIT

package watchmode

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/model"
	"github.com/occamtv/occam/internal/telemetry"
)

type autocompleteResponse struct {
	Results []autocompleteResultDTO `json:"results"`
}

type autocompleteResultDTO struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Year   int    `json:"year"`
	ImdbID string `json:"imdb_id"`
}

type titleSearchResponse struct {
	TitleResults []struct {
		ID uint64 `json:"id"`
	} `json:"title_results"`
}

// SearchTitles looks up shows by name, cached under the normalized query.
// Results that carry an IMDB ID warm the ID mapping as a side effect, saving
// a resolution round trip if the title is optimized later.
func (c *Client) SearchTitles(ctx context.Context, query string) ([]model.Title, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "Search query cannot be empty")
	}

	ctx, span := telemetry.Tracer("occam.watchmode").Start(ctx, "occam.watchmode.search",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(telemetry.ProviderAttributes(providerName, "search", "")...)

	titles, err := cache.Cached(ctx, c.cache, cache.TitleSearch(query), c.searchTTL,
		func(ctx context.Context) ([]model.Title, error) {
			params := url.Values{}
			params.Set("search_value", query)
			params.Set("search_type", "1")

			var resp autocompleteResponse
			if err := c.get(ctx, "/v1/autocomplete-search/", params, "search", &resp); err != nil {
				return nil, err
			}

			titles := make([]model.Title, 0, len(resp.Results))
			for _, r := range resp.Results {
				if r.ImdbID != "" {
					c.cache.SetInBackground(cache.ImdbToNative(r.ImdbID), r.ID, cache.TTLMapping)
				} else {
					c.log.Debug().
						Uint64("native_id", r.ID).
						Str("title", r.Name).
						Msg("search result without IMDB ID")
				}
				titles = append(titles, r.toTitle())
			}
			return titles, nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return titles, nil
}

// toTitle maps an autocomplete result onto the API title shape. The ID is
// always the native numeric one; availability lookups use it directly.
func (d autocompleteResultDTO) toTitle() model.Title {
	t := model.Title{
		ID:    model.Native(d.ID),
		Title: d.Name,
		Type:  parseTitleType(d.Type),
	}
	if d.Year > 0 {
		year := d.Year
		t.ReleaseYear = &year
	}
	return t
}

func parseTitleType(s string) model.TitleType {
	switch s {
	case "series", "tv_series":
		return model.TypeSeries
	default:
		return model.TypeMovie
	}
}

// resolveNative translates an IMDB ID into Watchmode's numeric title ID,
// cached for a month since the mapping never changes.
func (c *Client) resolveNative(ctx context.Context, imdb string) (uint64, error) {
	return cache.Cached(ctx, c.cache, cache.ImdbToNative(imdb), cache.TTLMapping,
		func(ctx context.Context) (uint64, error) {
			params := url.Values{}
			params.Set("search_field", "imdb_id")
			params.Set("search_value", imdb)

			var resp titleSearchResponse
			if err := c.get(ctx, "/v1/search/", params, "resolve", &resp); err != nil {
				return 0, err
			}
			if len(resp.TitleResults) == 0 {
				return 0, apperr.New(apperr.ErrExternalAPI, fmt.Sprintf("No native ID found for IMDB %s", imdb))
			}
			return resp.TitleResults[0].ID, nil
		})
}
