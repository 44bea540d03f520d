// SPDX-License-Identifier: MIT

package streamavail

import (
	"context"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/model"
	"github.com/occamtv/occam/internal/provider"
	"github.com/occamtv/occam/internal/telemetry"
)

// showDetailDTO is the /shows/{id} response. Streaming options are grouped
// per country; only the us bucket is read.
type showDetailDTO struct {
	showDTO
	StreamingOptions map[string][]streamingOptionDTO `json:"streamingOptions"`
}

type streamingOptionDTO struct {
	Service struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"service"`
	Type    string `json:"type"`
	Quality string `json:"quality"`
	Link    string `json:"link"`
}

// FetchAvailability returns where the title can be watched in the US.
// Cache hits are free; a miss spends monthly quota, so the guard runs before
// the upstream call and the usage counters are bumped after a success.
func (c *Client) FetchAvailability(ctx context.Context, id model.TitleID) (model.StreamingAvailability, error) {
	ctx, span := telemetry.Tracer("occam.streamavail").Start(ctx, "occam.streamavail.availability",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(telemetry.ProviderAttributes(providerName, "availability", id.String())...)

	avail, err := cache.Cached(ctx, c.cache, cache.Availability(id), cache.TTLAvailability,
		func(ctx context.Context) (model.StreamingAvailability, error) {
			if err := c.quota.check(ctx); err != nil {
				return model.StreamingAvailability{}, err
			}
			if err := c.pacer.Wait(ctx); err != nil {
				return model.StreamingAvailability{}, apperr.Wrap(apperr.ErrExternalAPI, "availability request cancelled", err)
			}

			params := url.Values{}
			params.Set("country", "us")

			var detail showDetailDTO
			if err := c.get(ctx, "/shows/"+id.String(), params, "availability", &detail); err != nil {
				return model.StreamingAvailability{}, err
			}
			if detail.ImdbID == "" {
				return model.StreamingAvailability{}, apperr.New(apperr.ErrExternalAPI, "API response missing IMDB ID")
			}

			c.quota.record(ctx)
			return detail.toAvailability(id), nil
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.StreamingAvailability{}, err
	}
	span.SetStatus(codes.Ok, "")
	return avail, nil
}

// FetchAvailabilityBatch fans out over ids via the shared batcher.
func (c *Client) FetchAvailabilityBatch(ctx context.Context, ids []model.TitleID) ([]model.StreamingAvailability, error) {
	return provider.FetchBatch(ctx, c.log, c, ids)
}

// toAvailability keeps the requested ID, never the upstream echo, and keeps
// only options whose type string matches a known kind exactly.
func (d showDetailDTO) toAvailability(requested model.TitleID) model.StreamingAvailability {
	options := d.StreamingOptions["us"]
	services := make([]model.ServiceAvailability, 0, len(options))
	for _, opt := range options {
		availType, ok := parseOptionType(opt.Type)
		if !ok {
			continue
		}
		sa := model.ServiceAvailability{
			ServiceID:   opt.Service.ID,
			ServiceName: opt.Service.Name,
			Type:        availType,
		}
		if opt.Quality != "" {
			quality := opt.Quality
			sa.Quality = &quality
		}
		if opt.Link != "" {
			link := opt.Link
			sa.Link = &link
		}
		services = append(services, sa)
	}
	return model.StreamingAvailability{
		ID:       requested,
		Services: services,
		CachedAt: time.Now().UTC(),
	}
}

func parseOptionType(s string) (model.AvailabilityType, bool) {
	switch s {
	case "subscription":
		return model.AvailSubscription, true
	case "rent":
		return model.AvailRent, true
	case "buy":
		return model.AvailBuy, true
	case "free":
		return model.AvailFree, true
	case "addon":
		return model.AvailAddon, true
	default:
		return "", false
	}
}
