package domain

import "time"

// TradeAction is the direction of one conversion hop.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// OpportunityStatus classifies an opportunity purely by its profit percent,
// independent of the configured qualifying threshold.
type OpportunityStatus string

const (
	StatusProfitable OpportunityStatus = "PROFITABLE"
	StatusLowProfit  OpportunityStatus = "LOW_PROFIT"
	StatusLoss       OpportunityStatus = "LOSS"
)

// PathStep is one traversed edge of a conversion cycle, annotated with the
// amount entering and leaving the hop. Steps are internal search detail and
// are stripped from opportunities before they leave the ranking stage.
type PathStep struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Symbol    string      `json:"symbol"`
	Action    TradeAction `json:"action"`
	Price     float64     `json:"price"`
	FeeRate   float64     `json:"fee_rate"`
	AmountIn  float64     `json:"input"`
	AmountOut float64     `json:"output"`
}

// FeeDetail is the per-hop fee breakdown exposed to consumers.
type FeeDetail struct {
	Step       string  `json:"step"`
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	FeeRate    float64 `json:"fee_rate"`
	FeePercent string  `json:"fee_percent"`
}

// Opportunity is a completed conversion cycle with its simulated amounts.
// It is created once by the search, enriched by the ranker (timestamp,
// status), and immutable from the consumer's point of view. Display amounts
// are rounded to 4 decimals when the opportunity is recorded; raw amounts
// are never mutated during the search itself.
type Opportunity struct {
	ID            string            `json:"id"`
	Market        string            `json:"market,omitempty"`
	StartCoin     string            `json:"start_coin"`
	StartAmount   float64           `json:"start_amount"`
	EndCoin       string            `json:"end_coin"`
	EndAmount     float64           `json:"end_amount"`
	Profit        float64           `json:"profit"`
	ProfitPercent float64           `json:"profit_percent"`
	TradePath     []string          `json:"trade_path"`
	TradeCount    int               `json:"number_of_trades"`
	FeeSummary    string            `json:"fees_str"`
	FeeBreakdown  []FeeDetail       `json:"fee_breakdown"`
	Status        OpportunityStatus `json:"status,omitempty"`
	Timestamp     time.Time         `json:"timestamp,omitzero"`

	// Steps carries the raw per-hop detail between search and ranking.
	// The ranker clears it before handing opportunities to callers.
	Steps []PathStep `json:"-"`
}
