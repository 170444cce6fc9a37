package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avelov/arbscan/internal/domain"
)

// OrchestratorConfig bounds one multi-market analysis pass.
type OrchestratorConfig struct {
	Search           SearchConfig
	MinProfitPercent float64
	// PerMarketTop caps the top-N view produced for each market.
	PerMarketTop int
	// GlobalTop caps the merged top-N view across all markets.
	GlobalTop int
	// MarketTimeout is the hard deadline for one market's pipeline. On
	// expiry the task's partial results are discarded, never merged.
	MarketTimeout time.Duration
}

// Orchestrator runs graph build, cycle search, and ranking once per market,
// in parallel across markets, then merges and globally re-ranks. A failing or
// timed-out market contributes nothing and never blocks the others.
type Orchestrator struct {
	source domain.PairSource
	cfg    OrchestratorConfig
	logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator drawing pairs from the given source.
func NewOrchestrator(source domain.PairSource, cfg OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		source: source,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "orchestrator")),
	}
}

// marketReport is the tagged per-market contribution before the merge.
type marketReport struct {
	qualifying []domain.Opportunity
	topRanked  []domain.Opportunity
}

// Run analyzes every requested market concurrently and returns the merged
// result. The worker bound is min(len(markets), NumCPU). Per-market failures
// are recorded in Failures and logged; they never abort the pass, so an
// all-markets-failed run yields an empty (not nil-error) aggregate. For a
// fixed set of per-market outputs the merged ordering is deterministic:
// stable sort by profit, ties broken by discovery order within a market and
// submission order across markets.
func (o *Orchestrator) Run(ctx context.Context, markets []string) domain.ScanResult {
	started := time.Now().UTC()

	o.logger.InfoContext(ctx, "scan starting",
		slog.Any("markets", markets),
		slog.Duration("market_timeout", o.cfg.MarketTimeout),
	)

	workers := runtime.NumCPU()
	if len(markets) < workers {
		workers = len(markets)
	}

	reports := make([]marketReport, len(markets))
	failed := make([]bool, len(markets))

	g := &errgroup.Group{}
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, market := range markets {
		i, market := i, market
		g.Go(func() error {
			rep, err := o.analyzeMarket(ctx, market)
			if err != nil {
				o.logger.ErrorContext(ctx, "market analysis failed",
					slog.String("market", market),
					slog.String("error", err.Error()),
				)
				failed[i] = true
				return nil // failure is isolated, not propagated
			}
			reports[i] = rep
			return nil
		})
	}

	// Barrier: merge only after every task has settled.
	_ = g.Wait()

	result := domain.ScanResult{
		Markets:   markets,
		StartedAt: started,
	}
	for i, rep := range reports {
		if failed[i] {
			result.Failures = append(result.Failures, markets[i])
			continue
		}
		result.Qualifying = append(result.Qualifying, rep.qualifying...)
		result.TopRanked = append(result.TopRanked, rep.topRanked...)
	}

	sortByProfit(result.Qualifying)
	sortByProfit(result.TopRanked)
	if o.cfg.GlobalTop > 0 && len(result.TopRanked) > o.cfg.GlobalTop {
		result.TopRanked = result.TopRanked[:o.cfg.GlobalTop]
	}

	result.Duration = time.Since(started)
	result.DurationMs = result.Duration.Milliseconds()

	o.logger.InfoContext(ctx, "scan complete",
		slog.Int("qualifying", len(result.Qualifying)),
		slog.Int("top_ranked", len(result.TopRanked)),
		slog.Int("failed_markets", len(result.Failures)),
		slog.Duration("duration", result.Duration),
	)

	return result
}

// analyzeMarket runs one market's pipeline under its hard deadline. The
// pipeline itself runs in a helper goroutine; there is no mechanism to cancel
// the search mid-flight, so on timeout the pending result is simply dropped
// at this boundary.
func (o *Orchestrator) analyzeMarket(ctx context.Context, market string) (marketReport, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.MarketTimeout)
	defer cancel()

	type outcome struct {
		rep marketReport
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("engine: market %s panicked: %v", market, r)}
			}
		}()
		rep, err := o.runPipeline(ctx, market)
		done <- outcome{rep: rep, err: err}
	}()

	select {
	case <-ctx.Done():
		return marketReport{}, fmt.Errorf("engine: market %s: %w", market, ctx.Err())
	case out := <-done:
		return out.rep, out.err
	}
}

// runPipeline executes fetch → build → search → rank for a single market and
// tags every opportunity with the market name. A market with zero usable
// pairs is an empty contribution, not an error.
func (o *Orchestrator) runPipeline(ctx context.Context, market string) (marketReport, error) {
	pairs, err := o.source.Pairs(ctx, market)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			o.logger.WarnContext(ctx, "market yielded no usable pairs",
				slog.String("market", market),
			)
			return marketReport{}, nil
		}
		return marketReport{}, fmt.Errorf("engine: fetch pairs for %s: %w", market, err)
	}

	graph := BuildGraph(pairs, o.logger.With(slog.String("market", market)))
	opps := NewSearcher(graph, o.cfg.Search).Run()

	ranker := Ranker{MinProfitPercent: o.cfg.MinProfitPercent}
	rep := marketReport{
		qualifying: ranker.Filter(opps),
		topRanked:  ranker.TopN(opps, o.cfg.PerMarketTop),
	}
	for i := range rep.qualifying {
		rep.qualifying[i].Market = market
	}
	for i := range rep.topRanked {
		rep.topRanked[i].Market = market
	}

	o.logger.InfoContext(ctx, "market analysis complete",
		slog.String("market", market),
		slog.Int("pairs", len(pairs)),
		slog.Int("opportunities", len(opps)),
		slog.Int("qualifying", len(rep.qualifying)),
	)

	return rep, nil
}
