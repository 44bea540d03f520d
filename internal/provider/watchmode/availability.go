// SPDX-License-Identifier: MIT

package watchmode

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/model"
	"github.com/occamtv/occam/internal/provider"
	"github.com/occamtv/occam/internal/telemetry"
)

type titleDetailsDTO struct {
	ID      uint64      `json:"id"`
	Title   string      `json:"title"`
	Sources []sourceDTO `json:"sources"`
}

type sourceDTO struct {
	SourceID int64  `json:"source_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Region   string `json:"region"`
	WebURL   string `json:"web_url"`
	Format   string `json:"format"`
}

// FetchAvailability returns where the title can be watched in the US. IMDB
// IDs resolve to the native one first; the cache entry is keyed by the
// requested ID either way, and the result echoes it back.
func (c *Client) FetchAvailability(ctx context.Context, id model.TitleID) (model.StreamingAvailability, error) {
	ctx, span := telemetry.Tracer("occam.watchmode").Start(ctx, "occam.watchmode.availability",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(telemetry.ProviderAttributes(providerName, "availability", id.String())...)

	avail, err := cache.Cached(ctx, c.cache, cache.Availability(id), cache.TTLAvailability,
		func(ctx context.Context) (model.StreamingAvailability, error) {
			native, err := c.nativeFor(ctx, id)
			if err != nil {
				return model.StreamingAvailability{}, err
			}

			params := url.Values{}
			params.Set("append_to_response", "sources")
			params.Set("regions", "US")

			var details titleDetailsDTO
			path := "/v1/title/" + strconv.FormatUint(native, 10) + "/details/"
			if err := c.get(ctx, path, params, "availability", &details); err != nil {
				return model.StreamingAvailability{}, err
			}
			return c.toAvailability(id, details), nil
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

func (c *Client) nativeFor(ctx context.Context, id model.TitleID) (uint64, error) {
	if id.Kind == model.KindNative {
		return id.Native, nil
	}
	return c.resolveNative(ctx, id.IMDB)
}

// toAvailability translates sources through the catalog mapping. Sources
// for services the catalog does not know are dropped, as are offer types
// Watchmode invents that have no local equivalent.
func (c *Client) toAvailability(requested model.TitleID, details titleDetailsDTO) model.StreamingAvailability {
	services := make([]model.ServiceAvailability, 0, len(details.Sources))
	for _, src := range details.Sources {
		ref, ok := c.mapping[src.SourceID]
		if !ok {
			c.log.Debug().
				Int64("source_id", src.SourceID).
				Str("source_name", src.Name).
				Msg("unmapped source, skipping")
			continue
		}
		availType, ok := parseSourceType(src.Type)
		if !ok {
			continue
		}
		sa := model.ServiceAvailability{
			ServiceID:   ref.ID,
			ServiceName: ref.Name,
			Type:        availType,
		}
		if src.Format != "" {
			format := src.Format
			sa.Quality = &format
		}
		if src.WebURL != "" {
			link := src.WebURL
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

func parseSourceType(s string) (model.AvailabilityType, bool) {
	switch strings.ToLower(s) {
	case "sub", "subscription":
		return model.AvailSubscription, true
	case "rent":
		return model.AvailRent, true
	case "buy", "purchase":
		return model.AvailBuy, true
	case "free":
		return model.AvailFree, true
	case "addon":
		return model.AvailAddon, true
	default:
		return "", false
	}
}
