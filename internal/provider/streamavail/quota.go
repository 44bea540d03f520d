// SPDX-License-Identifier: MIT

package streamavail

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/metrics"
)

const (
	monthlyCounterTTL = 32 * 24 * time.Hour
	dailyCounterTTL   = 7 * 24 * time.Hour

	warnThresholdPct = 80
)

// quota tracks monthly API usage in shared Redis counters so every replica
// draws from the same budget. Counter failures fail open: losing Redis must
// degrade accounting, not block lookups.
type quota struct {
	cache   *cache.Cache
	monthly int64
	log     zerolog.Logger
}

func monthlyKey(t time.Time) string { return "api_usage:" + t.Format("2006-01") }
func dailyKey(t time.Time) string   { return "api_usage:daily:" + t.Format("2006-01-02") }

// check refuses the call once the monthly budget is spent and warns when
// usage crosses the alert threshold.
func (q *quota) check(ctx context.Context) error {
	used, err := q.cache.GetInt(ctx, monthlyKey(time.Now().UTC()))
	if err != nil {
		q.log.Warn().Err(err).Msg("quota read failed, allowing request")
		return nil
	}
	metrics.SetQuotaMonthlyUsed(int(used))

	if used >= q.monthly {
		return apperr.New(apperr.ErrExternalAPI, "Monthly API quota exceeded")
	}
	if used*100 >= q.monthly*warnThresholdPct {
		q.log.Warn().
			Int64("used", used).
			Int64("quota", q.monthly).
			Msg("monthly API quota above 80%")
	}
	return nil
}

// record bumps the monthly and daily usage counters after a successful
// upstream call. Each counter keeps the expiry of its first increment.
func (q *quota) record(ctx context.Context) {
	now := time.Now().UTC()

	if n, err := q.cache.IncrWithTTL(ctx, monthlyKey(now), monthlyCounterTTL); err != nil {
		q.log.Warn().Err(err).Msg("monthly usage increment failed")
	} else {
		metrics.SetQuotaMonthlyUsed(int(n))
	}
	if _, err := q.cache.IncrWithTTL(ctx, dailyKey(now), dailyCounterTTL); err != nil {
		q.log.Warn().Err(err).Msg("daily usage increment failed")
	}
}
