// SPDX-License-Identifier: MIT

package watchmode

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/model"
)

const detailsBody = `{
	"id":3173903,"title":"Inception",
	"sources":[
		{"source_id":203,"name":"Netflix","type":"sub","region":"US","web_url":"https://netflix.example/title/1","format":"4K"},
		{"source_id":157,"name":"Hulu","type":"Sub","region":"US","format":"HD"},
		{"source_id":26,"name":"Prime Video","type":"purchase","region":"US"},
		{"source_id":999,"name":"Obscure+","type":"sub","region":"US"},
		{"source_id":203,"name":"Netflix","type":"cinema","region":"US"}
	]
}`

// detailsMux answers both the resolution and details endpoints, counting
// resolution calls.
func detailsMux(resolveCalls *atomic.Int32) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search/", func(w http.ResponseWriter, r *http.Request) {
		resolveCalls.Add(1)
		_, _ = w.Write([]byte(`{"title_results":[{"id":3173903}]}`))
	})
	mux.HandleFunc("/v1/title/3173903/details/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailsBody))
	})
	return mux
}

func TestFetchAvailabilityNativeDirect(t *testing.T) {
	var resolveCalls atomic.Int32
	client, _ := newTestClient(t, detailsMux(&resolveCalls))

	avail, err := client.FetchAvailability(context.Background(), model.Native(3173903))
	require.NoError(t, err)
	require.Zero(t, resolveCalls.Load(), "native IDs need no resolution")

	require.Equal(t, model.Native(3173903), avail.ID)
	require.Len(t, avail.Services, 3)

	// Case-insensitive type parsing, catalog names over upstream names.
	require.Equal(t, "netflix", avail.Services[0].ServiceID)
	require.Equal(t, "Netflix", avail.Services[0].ServiceName)
	require.Equal(t, model.AvailSubscription, avail.Services[0].Type)
	require.Equal(t, "4K", *avail.Services[0].Quality)
	require.Equal(t, "https://netflix.example/title/1", *avail.Services[0].Link)

	require.Equal(t, "hulu", avail.Services[1].ServiceID)
	require.Equal(t, model.AvailSubscription, avail.Services[1].Type)

	require.Equal(t, "prime", avail.Services[2].ServiceID)
	require.Equal(t, model.AvailBuy, avail.Services[2].Type)
	require.Nil(t, avail.Services[2].Quality)

	require.Equal(t, []string{"netflix", "hulu"}, avail.SubscriptionServices())
}

func TestFetchAvailabilityImdbResolves(t *testing.T) {
	var resolveCalls atomic.Int32
	client, _ := newTestClient(t, detailsMux(&resolveCalls))

	avail, err := client.FetchAvailability(context.Background(), model.Imdb("tt1375666"))
	require.NoError(t, err)
	require.EqualValues(t, 1, resolveCalls.Load())

	// The requested IMDB ID is echoed back, not the resolved native one.
	require.Equal(t, model.Imdb("tt1375666"), avail.ID)
	require.Len(t, avail.Services, 3)
}

func TestFetchAvailabilitySeededMappingSkipsResolution(t *testing.T) {
	var resolveCalls atomic.Int32
	client, mr := newTestClient(t, detailsMux(&resolveCalls))

	require.NoError(t, mr.Set("imdb2native:tt1375666", "3173903"))

	avail, err := client.FetchAvailability(context.Background(), model.Imdb("tt1375666"))
	require.NoError(t, err)
	require.Zero(t, resolveCalls.Load())
	require.Equal(t, model.Imdb("tt1375666"), avail.ID)
}

func TestFetchAvailabilityResolutionFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title_results":[]}`))
	})
	client, _ := newTestClient(t, mux)

	_, err := client.FetchAvailability(context.Background(), model.Imdb("tt0000001"))
	require.ErrorIs(t, err, apperr.ErrExternalAPI)
	require.Equal(t, "No native ID found for IMDB tt0000001", apperr.UserMessage(err))
}

func TestFetchAvailabilityCachedByRequestedID(t *testing.T) {
	var resolveCalls atomic.Int32
	var detailCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/search/", func(w http.ResponseWriter, r *http.Request) {
		resolveCalls.Add(1)
		_, _ = w.Write([]byte(`{"title_results":[{"id":3173903}]}`))
	})
	mux.HandleFunc("/v1/title/3173903/details/", func(w http.ResponseWriter, r *http.Request) {
		detailCalls.Add(1)
		_, _ = w.Write([]byte(detailsBody))
	})
	client, _ := newTestClient(t, mux)

	_, err := client.FetchAvailability(context.Background(), model.Imdb("tt1375666"))
	require.NoError(t, err)
	drain(t, client)

	_, err = client.FetchAvailability(context.Background(), model.Imdb("tt1375666"))
	require.NoError(t, err)

	require.EqualValues(t, 1, resolveCalls.Load())
	require.EqualValues(t, 1, detailCalls.Load())
}
