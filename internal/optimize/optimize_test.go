// SPDX-License-Identifier: MIT

package optimize

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/model"
	"github.com/occamtv/occam/internal/provider"
)

// stubProvider serves canned per-title subscription availability. Titles
// without an entry come back with no services, not as errors.
type stubProvider struct {
	mu    sync.Mutex
	calls int
	subs  map[string][]string
	err   error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) SearchTitles(context.Context, string) ([]model.Title, error) {
	return nil, apperr.New(apperr.ErrInternal, "not implemented")
}

func (s *stubProvider) FetchAvailability(_ context.Context, id model.TitleID) (model.StreamingAvailability, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.err != nil {
		return model.StreamingAvailability{}, s.err
	}
	var services []model.ServiceAvailability
	for _, sid := range s.subs[id.String()] {
		services = append(services, model.ServiceAvailability{
			ServiceID:   sid,
			ServiceName: sid,
			Type:        model.AvailSubscription,
		})
	}
	return model.StreamingAvailability{ID: id, Services: services}, nil
}

func (s *stubProvider) FetchAvailabilityBatch(ctx context.Context, ids []model.TitleID) ([]model.StreamingAvailability, error) {
	return provider.FetchBatch(ctx, zerolog.Nop(), s, ids)
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubCatalog prices a fixed service list, filtered to the ids asked for,
// the way the real store restricts to active rows.
type stubCatalog struct {
	infos     []model.ServiceInfo
	err       error
	requested []string
}

func (s *stubCatalog) ActiveServices(_ context.Context, ids []string) ([]model.ServiceInfo, error) {
	s.requested = ids
	if s.err != nil {
		return nil, s.err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []model.ServiceInfo{}
	for _, info := range s.infos {
		if want[info.ID] {
			out = append(out, info)
		}
	}
	return out, nil
}

func svc(id, name, cost string) model.ServiceInfo {
	return model.ServiceInfo{ID: id, Name: name, MonthlyCost: model.MustPrice(cost)}
}

func serviceIDs(cfg model.ServiceConfiguration) []string {
	ids := make([]string, len(cfg.Services))
	for i, s := range cfg.Services {
		ids[i] = s.ID
	}
	sort.Strings(ids)
	return ids
}

func newOptimizer(p *stubProvider, c *stubCatalog) *Optimizer {
	return New(p, c, zerolog.Nop())
}

func TestOptimizeDisjointMustHaves(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"netflix"},
		"tt0068646": {"hulu"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("hulu", "Hulu", "7.99"),
		svc("netflix", "Netflix", "15.49"),
	}}

	resp, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave: []model.TitleID{model.Imdb("tt0111161"), model.Imdb("tt0068646")},
	})
	require.NoError(t, err)

	// No nice-to-haves means every weight agrees, so dedup leaves one entry.
	require.Len(t, resp.Configurations, 1)
	first := resp.Configurations[0]
	require.Equal(t, []string{"hulu", "netflix"}, serviceIDs(first))
	require.Equal(t, "23.48", first.TotalCost.String())
	require.Equal(t, 2, first.MustHaveCoverage)
	require.Equal(t, 0, first.NiceToHaveCoverage)
	require.Empty(t, resp.UnavailableMustHave)
	require.Empty(t, resp.UnavailableNiceToHave)

	require.ElementsMatch(t, []string{"netflix", "hulu"}, cat.requested)
	for _, info := range first.Services {
		if info.ID == "netflix" {
			require.Equal(t, "Netflix", info.Name)
			require.Equal(t, "15.49", info.MonthlyCost.String())
		}
	}
}

func TestOptimizeOverlapPrefersCheaperService(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"netflix", "hulu"},
		"tt0068646": {"netflix", "hulu"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("hulu", "Hulu", "7.99"),
		svc("netflix", "Netflix", "15.49"),
	}}

	resp, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave: []model.TitleID{model.Imdb("tt0111161"), model.Imdb("tt0068646")},
	})
	require.NoError(t, err)

	require.Len(t, resp.Configurations, 1)
	first := resp.Configurations[0]
	require.Equal(t, []string{"hulu"}, serviceIDs(first))
	require.Equal(t, "7.99", first.TotalCost.String())
	require.Equal(t, 2, first.MustHaveCoverage)
}

func TestOptimizeSpectrumAddsNiceToHave(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"netflix"},
		"tt0068646": {"hulu"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("hulu", "Hulu", "7.99"),
		svc("netflix", "Netflix", "15.49"),
	}}

	resp, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave:   []model.TitleID{model.Imdb("tt0111161")},
		NiceToHave: []model.TitleID{model.Imdb("tt0068646")},
	})
	require.NoError(t, err)

	// Cost focus skips the add-on, coverage focus pays for it.
	require.Len(t, resp.Configurations, 2)
	require.Equal(t, []string{"netflix"}, serviceIDs(resp.Configurations[0]))
	require.Equal(t, "15.49", resp.Configurations[0].TotalCost.String())
	require.Equal(t, 0, resp.Configurations[0].NiceToHaveCoverage)

	require.Equal(t, []string{"hulu", "netflix"}, serviceIDs(resp.Configurations[1]))
	require.Equal(t, "23.48", resp.Configurations[1].TotalCost.String())
	require.Equal(t, 1, resp.Configurations[1].NiceToHaveCoverage)
	require.Equal(t, 1, resp.Configurations[1].MustHaveCoverage)
}

func TestOptimizeAllMustHavesUnavailable(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"netflix"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("netflix", "Netflix", "15.49"),
	}}

	resp, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave: []model.TitleID{model.Imdb("tt0068646")},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Configurations)
	require.Empty(t, resp.Configurations)
	require.Equal(t, []model.TitleID{model.Imdb("tt0068646")}, resp.UnavailableMustHave)
	require.Empty(t, resp.UnavailableNiceToHave)
	require.Nil(t, cat.requested)
}

func TestOptimizeWeightSpectrum(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"hulu", "apple"},
		"tt0068646": {"netflix"},
		"tt0071562": {"disney"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("apple", "Apple TV+", "6.99"),
		svc("disney", "Disney+", "7.99"),
		svc("hulu", "Hulu", "7.99"),
		svc("netflix", "Netflix", "15.49"),
	}}

	resp, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave:   []model.TitleID{model.Imdb("tt0111161")},
		NiceToHave: []model.TitleID{model.Imdb("tt0068646"), model.Imdb("tt0071562")},
	})
	require.NoError(t, err)

	require.Len(t, resp.Configurations, 3)
	require.Equal(t, []string{"apple"}, serviceIDs(resp.Configurations[0]))
	require.Equal(t, "6.99", resp.Configurations[0].TotalCost.String())
	require.Equal(t, 1, resp.Configurations[0].MustHaveCoverage)
	require.Equal(t, 0, resp.Configurations[0].NiceToHaveCoverage)

	require.Equal(t, []string{"apple", "disney"}, serviceIDs(resp.Configurations[1]))
	require.Equal(t, "14.98", resp.Configurations[1].TotalCost.String())
	require.Equal(t, 1, resp.Configurations[1].NiceToHaveCoverage)

	// 6.99 + 7.99 + 15.49 covers both nice-to-haves.
	require.Equal(t, []string{"apple", "disney", "netflix"}, serviceIDs(resp.Configurations[2]))
	require.Equal(t, "30.47", resp.Configurations[2].TotalCost.String())
	require.Equal(t, 2, resp.Configurations[2].NiceToHaveCoverage)

	seen := map[string]bool{}
	for _, cfg := range resp.Configurations {
		sig := strings.Join(serviceIDs(cfg), ",")
		require.False(t, seen[sig], "duplicate configuration %q", sig)
		seen[sig] = true
		require.LessOrEqual(t, resp.Configurations[0].TotalCost.Float64(), cfg.TotalCost.Float64())
	}
}

func TestOptimizeNiceOnlyRequest(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0068646": {"hulu"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("hulu", "Hulu", "7.99"),
	}}

	resp, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		NiceToHave: []model.TitleID{model.Imdb("tt0068646")},
	})
	require.NoError(t, err)

	// With nothing required, subscribing to nothing is the cost optimum.
	require.Len(t, resp.Configurations, 2)
	require.Empty(t, resp.Configurations[0].Services)
	require.Equal(t, "0", resp.Configurations[0].TotalCost.String())
	require.Equal(t, []string{"hulu"}, serviceIDs(resp.Configurations[1]))
	require.Equal(t, 1, resp.Configurations[1].NiceToHaveCoverage)
}

func TestOptimizeNiceDuplicateOfMustDropped(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"netflix"},
		"tt0068646": {"hulu"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("hulu", "Hulu", "7.99"),
		svc("netflix", "Netflix", "15.49"),
	}}

	resp, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave:   []model.TitleID{model.Imdb("tt0111161")},
		NiceToHave: []model.TitleID{model.Imdb("tt0111161"), model.Imdb("tt0068646")},
	})
	require.NoError(t, err)

	// tt0111161 counts as must-have only, so nice coverage tops out at 1.
	require.Len(t, resp.Configurations, 2)
	require.Equal(t, 1, resp.Configurations[1].NiceToHaveCoverage)
	require.Equal(t, 2, p.callCount())
}

func TestOptimizeEmptyRequest(t *testing.T) {
	p := &stubProvider{}
	cat := &stubCatalog{}

	_, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	require.Equal(t, "Must provide at least one title", apperr.UserMessage(err))
	require.Zero(t, p.callCount())
}

func TestOptimizeNoCatalogServices(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"acorn"},
	}}
	cat := &stubCatalog{}

	_, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave: []model.TitleID{model.Imdb("tt0111161")},
	})
	require.ErrorIs(t, err, apperr.ErrOptimization)
	require.Equal(t, "No streaming services found for provided titles", apperr.UserMessage(err))
}

func TestOptimizeCatalogErrorPropagates(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"netflix"},
	}}
	cat := &stubCatalog{err: apperr.New(apperr.ErrDatabase, "database unreachable")}

	_, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave: []model.TitleID{model.Imdb("tt0111161")},
	})
	require.ErrorIs(t, err, apperr.ErrDatabase)
}

func TestOptimizeBatchFailurePropagates(t *testing.T) {
	p := &stubProvider{err: apperr.New(apperr.ErrExternalAPI, "upstream returned status 500")}
	cat := &stubCatalog{}

	_, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave: []model.TitleID{model.Imdb("tt0111161"), model.Imdb("tt0068646")},
	})
	require.ErrorIs(t, err, apperr.ErrExternalAPI)
	require.Equal(t, "Failed to fetch any availability data", apperr.UserMessage(err))
}

func TestOptimizeMustCoverLostToInactiveService(t *testing.T) {
	// tt0111161 streams only on a service the catalog no longer prices,
	// which leaves its coverage row empty and the problem infeasible.
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"acorn"},
		"tt0068646": {"netflix"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("netflix", "Netflix", "15.49"),
	}}

	_, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave: []model.TitleID{model.Imdb("tt0111161"), model.Imdb("tt0068646")},
	})
	require.ErrorIs(t, err, apperr.ErrOptimization)
	require.Equal(t, "Optimization failed", apperr.UserMessage(err))
}

func TestOptimizeUnavailableNiceToHaveListed(t *testing.T) {
	p := &stubProvider{subs: map[string][]string{
		"tt0111161": {"netflix"},
	}}
	cat := &stubCatalog{infos: []model.ServiceInfo{
		svc("netflix", "Netflix", "15.49"),
	}}

	resp, err := newOptimizer(p, cat).Optimize(context.Background(), model.OptimizationRequest{
		MustHave:   []model.TitleID{model.Imdb("tt0111161")},
		NiceToHave: []model.TitleID{model.Imdb("tt0068646")},
	})
	require.NoError(t, err)

	require.Len(t, resp.Configurations, 1)
	require.Equal(t, []string{"netflix"}, serviceIDs(resp.Configurations[0]))
	require.Empty(t, resp.UnavailableMustHave)
	require.Equal(t, []model.TitleID{model.Imdb("tt0068646")}, resp.UnavailableNiceToHave)
}
