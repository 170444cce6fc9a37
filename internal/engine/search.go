package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/avelov/arbscan/internal/domain"
)

// amountEpsilon prunes branches whose carried amount has collapsed to a
// worthless size; without it near-zero paths explode combinatorially.
const amountEpsilon = 1e-8

// SearchConfig bounds the cycle enumeration.
type SearchConfig struct {
	// Anchors are the currencies a cycle must start and end at.
	Anchors []string
	// StartAmount is the notional injected at the anchor.
	StartAmount float64
	// MinTrades is the minimum path length for a cycle to count.
	MinTrades int
	// MaxDepth is the maximum number of hops explored.
	MaxDepth int
}

// Searcher enumerates every conversion cycle in a graph that satisfies the
// configured depth and trade-count bounds. The enumeration is exhaustive
// within the bounds, not best-first: all structurally valid cycles are
// reported so the ranking stage can choose.
type Searcher struct {
	graph *Graph
	cfg   SearchConfig
}

// NewSearcher creates a Searcher over the given immutable graph snapshot.
func NewSearcher(graph *Graph, cfg SearchConfig) *Searcher {
	return &Searcher{graph: graph, cfg: cfg}
}

// Run searches from every configured anchor present in the graph and returns
// all discovered opportunities in discovery order. Running twice over the
// same graph snapshot yields an identical, identically ordered set.
func (s *Searcher) Run() []domain.Opportunity {
	var found []domain.Opportunity

	for _, anchor := range s.cfg.Anchors {
		if !s.graph.Contains(anchor) {
			continue
		}
		found = s.dfs(anchor, anchor, s.cfg.StartAmount, nil, map[string]bool{anchor: true}, found)
	}

	return found
}

// dfs explores outgoing edges of current, carrying amount through each hop.
// path and visited are owned by this call; every recursion receives its own
// copies so sibling branches never observe each other's state.
func (s *Searcher) dfs(anchor, current string, amount float64, path []domain.PathStep, visited map[string]bool, found []domain.Opportunity) []domain.Opportunity {
	depth := len(path)

	if depth > s.cfg.MaxDepth {
		return found
	}

	// Cycle closed: record and stop exploring past it.
	if current == anchor && depth >= s.cfg.MinTrades {
		return append(found, s.record(anchor, amount, path))
	}

	for _, edge := range s.graph.Neighbors(current) {
		// Only the anchor may be re-entered, and only to close the loop.
		if visited[edge.To] && edge.To != anchor {
			continue
		}

		if amount < amountEpsilon {
			continue
		}

		next, err := Simulate(amount, edge.Price, edge.FeeRate, edge.Action == domain.ActionBuy)
		if err != nil {
			// Unreachable: the graph never holds a non-positive price.
			continue
		}

		newPath := make([]domain.PathStep, len(path), len(path)+1)
		copy(newPath, path)
		newPath = append(newPath, domain.PathStep{
			From:      current,
			To:        edge.To,
			Symbol:    edge.Symbol,
			Action:    edge.Action,
			Price:     edge.Price,
			FeeRate:   edge.FeeRate,
			AmountIn:  amount,
			AmountOut: next,
		})

		newVisited := make(map[string]bool, len(visited)+1)
		for c := range visited {
			newVisited[c] = true
		}
		newVisited[edge.To] = true

		found = s.dfs(anchor, edge.To, next, newPath, newVisited, found)
	}

	return found
}

// record finalizes a closed cycle into an Opportunity. Display amounts are
// rounded to 4 decimals here; the search itself always carries raw values.
func (s *Searcher) record(anchor string, endAmount float64, path []domain.PathStep) domain.Opportunity {
	profit := endAmount - s.cfg.StartAmount
	profitPercent := (profit / s.cfg.StartAmount) * 100

	tradePath := make([]string, len(path))
	breakdown := make([]domain.FeeDetail, len(path))
	var feeRates []string
	seen := map[string]bool{}

	for i, step := range path {
		hop := fmt.Sprintf("%s -> %s", step.From, step.To)
		tradePath[i] = hop
		breakdown[i] = domain.FeeDetail{
			Step:       hop,
			Symbol:     step.Symbol,
			Action:     string(step.Action),
			FeeRate:    step.FeeRate,
			FeePercent: fmt.Sprintf("%.3f%%", step.FeeRate*100),
		}

		// Distinct fee rates in first-seen order; cosmetic summary only.
		rate := fmt.Sprintf("%.2f%%", step.FeeRate*100)
		if !seen[rate] {
			seen[rate] = true
			feeRates = append(feeRates, rate)
		}
	}

	return domain.Opportunity{
		StartCoin:     anchor,
		StartAmount:   s.cfg.StartAmount,
		EndCoin:       anchor,
		EndAmount:     round4(endAmount),
		Profit:        round4(profit),
		ProfitPercent: round4(profitPercent),
		TradePath:     tradePath,
		TradeCount:    len(path),
		FeeSummary:    joinFees(feeRates),
		FeeBreakdown:  breakdown,
		Steps:         path,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func joinFees(rates []string) string {
	if len(rates) == 0 {
		return "N/A"
	}
	return strings.Join(rates, "/")
}
