// SPDX-License-Identifier: MIT

// Package provider defines the upstream streaming-data contract and the
// shared fan-out used to fetch availability for many titles at once.
// Concrete clients live in the streamavail and watchmode subpackages.
package provider

import (
	"context"

	"github.com/occamtv/occam/internal/model"
)

// Provider is an upstream source of title search results and per-title
// streaming availability. Implementations are immutable after construction
// and safe for concurrent use.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// SearchTitles looks up titles matching the query. A blank query is
	// rejected with an invalid-input error before any network call.
	SearchTitles(ctx context.Context, query string) ([]model.Title, error)

	// FetchAvailability returns the streaming availability for one title.
	// The returned availability always carries the requested ID.
	FetchAvailability(ctx context.Context, id model.TitleID) (model.StreamingAvailability, error)

	// FetchAvailabilityBatch fetches availability for every ID concurrently.
	// Individual failures are absorbed; it errors only when every fetch fails.
	FetchAvailabilityBatch(ctx context.Context, ids []model.TitleID) ([]model.StreamingAvailability, error)
}
