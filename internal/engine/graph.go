package engine

import (
	"log/slog"
	"strings"

	"github.com/avelov/arbscan/internal/domain"
)

// Edge is one directed conversion option between two currencies via a
// specific instrument. Edges are never mutated after the graph is built.
type Edge struct {
	To      string
	Symbol  string
	Action  domain.TradeAction
	Price   float64
	FeeRate float64
}

// Graph is a directed multigraph of currencies. Parallel edges between the
// same two currencies via different instruments are retained as distinct
// traversal options. The graph is immutable for the duration of a search.
type Graph struct {
	adj map[string][]Edge
}

// BuildGraph constructs the conversion graph from the given pairs. Each pair
// yields up to two edges: quote→base tagged BUY at the ask, and base→quote
// tagged SELL at the bid; a side with a non-positive price is skipped. Pairs
// missing symbol, base, or quote are skipped with a warning. Edge order per
// currency follows input order.
func BuildGraph(pairs []domain.Pair, logger *slog.Logger) *Graph {
	g := &Graph{adj: make(map[string][]Edge)}

	for _, p := range pairs {
		if p.Symbol == "" || p.Base == "" || p.Quote == "" {
			logger.Warn("graph: skipping malformed pair",
				slog.String("symbol", p.Symbol),
				slog.String("base", p.Base),
				slog.String("quote", p.Quote),
			)
			continue
		}

		base := strings.ToUpper(p.Base)
		quote := strings.ToUpper(p.Quote)
		fee := p.FeeTaker

		// Nodes exist even when one price side is unusable.
		if _, ok := g.adj[base]; !ok {
			g.adj[base] = nil
		}
		if _, ok := g.adj[quote]; !ok {
			g.adj[quote] = nil
		}

		// Quote -> Base: spend quote, receive base, priced at the ask.
		if p.Ask > 0 {
			g.adj[quote] = append(g.adj[quote], Edge{
				To:      base,
				Symbol:  p.Symbol,
				Action:  domain.ActionBuy,
				Price:   p.Ask,
				FeeRate: fee,
			})
		}

		// Base -> Quote: spend base, receive quote, priced at the bid.
		if p.Bid > 0 {
			g.adj[base] = append(g.adj[base], Edge{
				To:      quote,
				Symbol:  p.Symbol,
				Action:  domain.ActionSell,
				Price:   p.Bid,
				FeeRate: fee,
			})
		}
	}

	return g
}

// Neighbors returns the outgoing edges of the currency, or nil when the
// currency is not in the graph.
func (g *Graph) Neighbors(currency string) []Edge {
	return g.adj[currency]
}

// Contains reports whether the currency appears in the graph.
func (g *Graph) Contains(currency string) bool {
	_, ok := g.adj[currency]
	return ok
}
