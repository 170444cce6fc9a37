// Package engine implements the conversion-cycle search: building a directed
// currency graph from tradable pairs, exhaustively enumerating bounded-depth
// cycles from a set of anchor currencies, simulating price and fee at each
// hop, and ranking the resulting opportunities. A MarketOrchestrator runs the
// pipeline concurrently across independent markets and merges the output.
package engine

import (
	"fmt"

	"github.com/avelov/arbscan/internal/domain"
)

// Simulate converts amountIn across one edge and deducts the proportional fee.
//
// A BUY spends the quote currency to receive the base currency, so the price
// (quote per base, the ask) divides. A SELL spends the base currency to
// receive the quote currency at the bid, so the price multiplies. No rounding
// is applied here; display rounding happens when an opportunity is recorded.
//
// The graph never constructs an edge with a non-positive price, so the error
// return is an invariant check rather than a recoverable condition.
func Simulate(amountIn, price, feeRate float64, isBuy bool) (float64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("engine: simulate with price %v: %w", price, domain.ErrInvalidPrice)
	}

	var out float64
	if isBuy {
		out = amountIn / price
	} else {
		out = amountIn * price
	}
	return out * (1 - feeRate), nil
}
