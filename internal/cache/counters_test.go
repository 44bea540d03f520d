// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIncrWithTTLSetsExpiryOnlyOnce(t *testing.T) {
	mr, c := newTestCache(t, Config{})
	ctx := context.Background()

	n, err := c.IncrWithTTL(ctx, "api_usage:2026-08", 32*24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, 32*24*time.Hour, mr.TTL("api_usage:2026-08"))

	// Age the key, then increment again. The TTL must keep counting down
	// from the original expiry rather than being reset on every call.
	mr.FastForward(24 * time.Hour)
	n, err = c.IncrWithTTL(ctx, "api_usage:2026-08", 32*24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.Equal(t, 31*24*time.Hour, mr.TTL("api_usage:2026-08"))
}

func TestGetIntMissingKeyIsZero(t *testing.T) {
	_, c := newTestCache(t, Config{})

	n, err := c.GetInt(context.Background(), "api_usage:2026-09")
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestGetIntReadsCounter(t *testing.T) {
	_, c := newTestCache(t, Config{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.IncrWithTTL(ctx, "api_usage:daily:2026-08-24", 7*24*time.Hour); err != nil {
			t.Fatalf("incr: %v", err)
		}
	}
	n, err := c.GetInt(ctx, "api_usage:daily:2026-08-24")
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}
