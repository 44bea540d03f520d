// SPDX-License-Identifier: MIT

package streamavail

import (
	"context"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/model"
	"github.com/occamtv/occam/internal/telemetry"
)

// showDTO is the upstream shape shared by search results and the detail
// endpoint. The API reports movies with releaseYear and series with
// firstAirYear, so both are carried.
type showDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Overview     string `json:"overview"`
	ReleaseYear  int    `json:"releaseYear"`
	FirstAirYear int    `json:"firstAirYear"`
	ImdbID       string `json:"imdbId"`
	ShowType     string `json:"showType"`
}

// SearchTitles looks up shows by name, cached under the normalized query.
func (c *Client) SearchTitles(ctx context.Context, query string) ([]model.Title, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "Search query cannot be empty")
	}

	ctx, span := telemetry.Tracer("occam.streamavail").Start(ctx, "occam.streamavail.search",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(telemetry.ProviderAttributes(providerName, "search", "")...)

	titles, err := cache.Cached(ctx, c.cache, cache.TitleSearch(query), c.searchTTL,
		func(ctx context.Context) ([]model.Title, error) {
			params := url.Values{}
			params.Set("title", query)
			params.Set("country", "us")

			var shows []showDTO
			if err := c.get(ctx, "/shows/search/title", params, "search", &shows); err != nil {
				return nil, err
			}

			titles := make([]model.Title, 0, len(shows))
			for _, s := range shows {
				titles = append(titles, s.toTitle())
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

// toTitle maps an upstream show onto the API title shape. Shows without an
// IMDB ID keep the upstream's own ID so they stay addressable.
func (d showDTO) toTitle() model.Title {
	id := d.ImdbID
	if id == "" {
		id = d.ID
	}
	t := model.Title{
		ID:          model.Imdb(id),
		Title:       d.Title,
		Type:        parseShowType(d.ShowType),
		ReleaseYear: yearOf(d.ReleaseYear, d.FirstAirYear),
	}
	if d.Overview != "" {
		overview := d.Overview
		t.Overview = &overview
	}
	return t
}

func parseShowType(s string) model.TitleType {
	switch s {
	case "series", "tv_series":
		return model.TypeSeries
	default:
		return model.TypeMovie
	}
}

func yearOf(release, firstAir int) *int {
	if release > 0 {
		return &release
	}
	if firstAir > 0 {
		return &firstAir
	}
	return nil
}
