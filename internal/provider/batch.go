// SPDX-License-Identifier: MIT

package provider

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/model"
)

// FetchBatch fans FetchAvailability out over ids, one goroutine per title,
// and collects whatever succeeds. Per-title failures are logged and dropped
// so a single flaky upstream response cannot sink a whole optimization run.
// Only when every fetch fails does the batch itself report an error.
func FetchBatch(ctx context.Context, logger zerolog.Logger, p Provider, ids []model.TitleID) ([]model.StreamingAvailability, error) {
	if len(ids) == 0 {
		return []model.StreamingAvailability{}, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]model.StreamingAvailability, 0, len(ids))
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id model.TitleID) {
			defer wg.Done()

			avail, err := p.FetchAvailability(ctx, id)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("provider", p.Name()).
					Str("title_id", id.String()).
					Msg("availability fetch failed, skipping title")
				return
			}

			mu.Lock()
			results = append(results, avail)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	if len(results) == 0 {
		return nil, apperr.New(apperr.ErrExternalAPI, "Failed to fetch any availability data")
	}
	return results, nil
}
