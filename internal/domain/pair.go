// Package domain defines the core types shared across the arbscan scanner:
// tradable pairs, conversion opportunities, scan results, and the cache/store
// interfaces their infrastructure implementations satisfy.
package domain

// SymbolInfo describes one tradable spot instrument as listed by a venue.
// Fee rates are fractions (0.001 == 0.1%); venues that do not publish
// per-pair fees carry the venue default.
type SymbolInfo struct {
	Symbol   string  `json:"symbol"`
	Base     string  `json:"base"`
	Quote    string  `json:"quote"`
	FeeMaker float64 `json:"fee_maker"`
	FeeTaker float64 `json:"fee_taker"`
	MinBase  float64 `json:"min_base"`
	MinQuote float64 `json:"min_quote"`
}

// Ticker is the best bid/ask snapshot for one instrument.
type Ticker struct {
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	BidQty float64 `json:"bid_qty"`
	AskQty float64 `json:"ask_qty"`
}

// Pair is a symbol merged with its current ticker. This is the input record
// the conversion graph is built from; only pairs with bid>0 and ask>0 are
// emitted by the market-data provider.
type Pair struct {
	Symbol   string  `json:"symbol"`
	Base     string  `json:"base"`
	Quote    string  `json:"quote"`
	Bid      float64 `json:"bid"`
	Ask      float64 `json:"ask"`
	FeeMaker float64 `json:"fee_maker"`
	FeeTaker float64 `json:"fee_taker"`
	MinBase  float64 `json:"min_base"`
	MinQuote float64 `json:"min_quote"`
}
