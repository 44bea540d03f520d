// SPDX-License-Identifier: MIT

package watchmode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/occamtv/occam/internal/cache"
	"github.com/occamtv/occam/internal/catalog"
)

type fakeMappings struct {
	m   map[int64]catalog.ServiceRef
	err error
}

func (f fakeMappings) NativeServiceMappings(context.Context) (map[int64]catalog.ServiceRef, error) {
	return f.m, f.err
}

var testMappings = map[int64]catalog.ServiceRef{
	203: {ID: "netflix", Name: "Netflix"},
	157: {ID: "hulu", Name: "Hulu"},
	26:  {ID: "prime", Name: "Prime Video"},
}

// newTestClient wires a client against an httptest upstream and a miniredis
// backed cache, using the canned service mapping.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := cache.New(context.Background(), cache.Config{URL: "redis://" + mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Shutdown(context.Background())
		_ = c.Close()
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(), c, fakeMappings{m: testMappings}, "test-key", srv.URL, Config{}, zerolog.Nop())
	require.NoError(t, err)
	return client, mr
}

// drain flushes pending background cache writes so tests can assert on keys.
func drain(t *testing.T, c *Client) {
	t.Helper()
	require.NoError(t, c.cache.Shutdown(context.Background()))
}

func TestName(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())
	require.Equal(t, "watchmode", client.Name())
}

func TestNewEmptyMappingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.New(context.Background(), cache.Config{URL: "redis://" + mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = New(context.Background(), c, fakeMappings{m: map[int64]catalog.ServiceRef{}}, "k", "http://example.invalid", Config{}, zerolog.Nop())
	require.Error(t, err)
}

func TestNewMappingSourceError(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.New(context.Background(), cache.Config{URL: "redis://" + mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	wantErr := context.DeadlineExceeded
	_, err = New(context.Background(), c, fakeMappings{err: wantErr}, "k", "http://example.invalid", Config{}, zerolog.Nop())
	require.ErrorIs(t, err, wantErr)
}

func TestGetSendsAPIKeyParam(t *testing.T) {
	var gotKey string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("apiKey")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))

	_, err := client.SearchTitles(context.Background(), "inception")
	require.NoError(t, err)
	require.Equal(t, "test-key", gotKey)
}
