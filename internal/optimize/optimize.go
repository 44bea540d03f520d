// SPDX-License-Identifier: MIT

// Package optimize turns availability data and catalog prices into ranked
// subscription sets. Each run solves the same covering problem across a
// spectrum of nice-to-have weights, so the response walks from the pure
// cost optimum toward coverage-heavy alternatives.
package optimize

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/metrics"
	"github.com/occamtv/occam/internal/model"
	"github.com/occamtv/occam/internal/provider"
	"github.com/occamtv/occam/internal/solve"
	"github.com/occamtv/occam/internal/telemetry"
)

// weights span cost-focused to coverage-focused runs, ascending. The first
// weight is small enough that no real subscription price is outweighed by a
// bonus, which keeps configurations[0] the pure cost optimum.
var weights = [...]float64{0.1, 1.0, 3.0, 10.0, 100.0}

// CatalogSource prices candidate services, normally the catalog store.
type CatalogSource interface {
	ActiveServices(ctx context.Context, ids []string) ([]model.ServiceInfo, error)
}

// Optimizer computes subscription sets covering the requested titles.
type Optimizer struct {
	provider provider.Provider
	catalog  CatalogSource
	log      zerolog.Logger
}

// New builds an optimizer over the given provider and catalog.
func New(p provider.Provider, c CatalogSource, logger zerolog.Logger) *Optimizer {
	return &Optimizer{provider: p, catalog: c, log: logger}
}

// Optimize runs the full pipeline: dedup the request, batch-fetch
// availability, restrict to priced catalog services, solve the weight
// spectrum and dedup the resulting configurations by service signature.
func (o *Optimizer) Optimize(ctx context.Context, req model.OptimizationRequest) (model.OptimizationResponse, error) {
	ctx, span := telemetry.Tracer("occam.optimize").Start(ctx, "occam.optimize.run")
	defer span.End()

	resp, err := o.run(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}
	span.SetAttributes(telemetry.OptimizeAttributes(len(req.MustHave), len(req.NiceToHave), len(resp.Configurations))...)
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

func (o *Optimizer) run(ctx context.Context, req model.OptimizationRequest) (model.OptimizationResponse, error) {
	start := time.Now()

	must := dedupIDs(req.MustHave, nil)
	nice := dedupIDs(req.NiceToHave, must)
	if len(must)+len(nice) == 0 {
		return model.OptimizationResponse{}, apperr.New(apperr.ErrInvalidInput, "Must provide at least one title")
	}

	union := make([]model.TitleID, 0, len(must)+len(nice))
	union = append(union, must...)
	union = append(union, nice...)

	avails, err := o.provider.FetchAvailabilityBatch(ctx, union)
	if err != nil {
		metrics.RecordOptimizerRun("error", time.Since(start), 0)
		return model.OptimizationResponse{}, err
	}

	// Per-title subscription service sets; only subscription entries count
	// toward coverage.
	subs := make(map[model.TitleID][]string, len(avails))
	for _, a := range avails {
		subs[a.ID] = uniqueStrings(a.SubscriptionServices())
	}

	availMust, unavailMust := splitAvailable(must, subs)
	availNice, unavailNice := splitAvailable(nice, subs)

	resp := model.OptimizationResponse{
		Configurations:        []model.ServiceConfiguration{},
		UnavailableMustHave:   unavailMust,
		UnavailableNiceToHave: unavailNice,
	}

	// Nothing to cover is an answer, not an error: report every must-have
	// as unavailable and no configurations.
	if len(must) > 0 && len(availMust) == 0 {
		o.log.Info().
			Int("must_have", len(must)).
			Msg("no must-have title is available on any subscription service")
		metrics.RecordOptimizerRun("no_availability", time.Since(start), 0)
		return resp, nil
	}

	infos, err := o.catalog.ActiveServices(ctx, collectServiceIDs(availMust, availNice, subs))
	if err != nil {
		metrics.RecordOptimizerRun("error", time.Since(start), 0)
		return model.OptimizationResponse{}, err
	}
	if len(infos) == 0 {
		metrics.RecordOptimizerRun("error", time.Since(start), 0)
		return model.OptimizationResponse{}, apperr.New(apperr.ErrOptimization, "No streaming services found for provided titles")
	}

	col := make(map[string]int, len(infos))
	costs := make([]float64, len(infos))
	for i, info := range infos {
		col[info.ID] = i
		costs[i] = info.MonthlyCost.Float64()
	}

	// Coverage rows for available must-haves. Services the catalog dropped
	// cannot appear; a row emptied that way is a genuine infeasibility and
	// surfaces through the solver.
	covers := make([][]int, 0, len(availMust))
	for _, t := range availMust {
		var row []int
		for _, sid := range subs[t] {
			if j, ok := col[sid]; ok {
				row = append(row, j)
			}
		}
		covers = append(covers, row)
	}

	// Per-service bonus: how many nice-to-have titles it would cover.
	bonus := make([]float64, len(infos))
	for _, t := range availNice {
		for _, sid := range subs[t] {
			if j, ok := col[sid]; ok {
				bonus[j]++
			}
		}
	}

	seen := make(map[string]bool)
	var lastErr error
	for _, w := range weights {
		folded := make([]float64, len(costs))
		for j := range costs {
			folded[j] = costs[j] - w*bonus[j]
		}

		sol, err := solve.Binary(solve.Problem{Costs: folded, Covers: covers})
		if err != nil {
			lastErr = err
			o.log.Warn().Err(err).Float64("weight", w).Msg("solver failed for weight")
			continue
		}

		var sel []int
		for j, on := range sol.Selected {
			if on {
				sel = append(sel, j)
			}
		}
		sig := signature(infos, sel)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		resp.Configurations = append(resp.Configurations, buildConfiguration(infos, sel, availMust, availNice, subs))
	}

	if len(resp.Configurations) == 0 {
		metrics.RecordOptimizerRun("error", time.Since(start), 0)
		return model.OptimizationResponse{}, apperr.Wrap(apperr.ErrOptimization, "Optimization failed", lastErr)
	}
	metrics.RecordOptimizerRun("ok", time.Since(start), len(resp.Configurations))
	return resp, nil
}

// dedupIDs keeps the first occurrence of each ID, dropping any that appear
// in exclude. Preserves request order.
func dedupIDs(ids []model.TitleID, exclude []model.TitleID) []model.TitleID {
	excluded := make(map[model.TitleID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	seen := make(map[model.TitleID]bool, len(ids))
	out := make([]model.TitleID, 0, len(ids))
	for _, id := range ids {
		if seen[id] || excluded[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// splitAvailable partitions ids by whether any subscription service offers
// them, preserving request order in both halves.
func splitAvailable(ids []model.TitleID, subs map[model.TitleID][]string) (available, unavailable []model.TitleID) {
	available = []model.TitleID{}
	unavailable = []model.TitleID{}
	for _, id := range ids {
		if len(subs[id]) > 0 {
			available = append(available, id)
		} else {
			unavailable = append(unavailable, id)
		}
	}
	return available, unavailable
}

func collectServiceIDs(availMust, availNice []model.TitleID, subs map[model.TitleID][]string) []string {
	seen := make(map[string]bool)
	var ids []string
	collect := func(titles []model.TitleID) {
		for _, t := range titles {
			for _, sid := range subs[t] {
				if !seen[sid] {
					seen[sid] = true
					ids = append(ids, sid)
				}
			}
		}
	}
	collect(availMust)
	collect(availNice)
	return ids
}

// signature canonicalizes a selection as its sorted service IDs joined by
// commas, the dedup key across weights.
func signature(infos []model.ServiceInfo, sel []int) string {
	ids := make([]string, len(sel))
	for i, j := range sel {
		ids[i] = infos[j].ID
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

func buildConfiguration(infos []model.ServiceInfo, sel []int, availMust, availNice []model.TitleID, subs map[model.TitleID][]string) model.ServiceConfiguration {
	selected := make(map[string]bool, len(sel))
	services := make([]model.ServiceInfo, 0, len(sel))
	var total model.Price
	for _, j := range sel {
		services = append(services, infos[j])
		selected[infos[j].ID] = true
		total = total.Add(infos[j].MonthlyCost)
	}

	niceCovered := 0
	for _, t := range availNice {
		for _, sid := range subs[t] {
			if selected[sid] {
				niceCovered++
				break
			}
		}
	}

	return model.ServiceConfiguration{
		Services:           services,
		TotalCost:          total,
		MustHaveCoverage:   len(availMust),
		NiceToHaveCoverage: niceCovered,
	}
}
