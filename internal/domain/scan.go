package domain

import (
	"context"
	"time"
)

// ScanResult is the merged outcome of one analysis pass across all requested
// markets. Qualifying holds opportunities above the configured profit
// threshold; TopRanked is the threshold-independent global top slice.
type ScanResult struct {
	ID         string        `json:"id"`
	Markets    []string      `json:"markets"`
	Qualifying []Opportunity `json:"profitable"`
	TopRanked  []Opportunity `json:"all_paths"`
	Failures   []string      `json:"failures,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"-"`
	DurationMs int64         `json:"duration_ms"`
}

// ScanSummary is the persisted one-row digest of a scan.
type ScanSummary struct {
	ID              string    `json:"id"`
	Markets         []string  `json:"markets"`
	ProfitableCount int       `json:"profitable_count"`
	StartedAt       time.Time `json:"started_at"`
	DurationMs      int64     `json:"duration_ms"`
}

// PairSource supplies the normalized, price-bearing pairs for one market.
// Implementations own symbol caching and venue access; the engine only sees
// the merged records.
type PairSource interface {
	// Pairs returns every tradable pair of the market with a usable ticker.
	// It returns ErrNoData when the market yields zero usable pairs.
	Pairs(ctx context.Context, market string) ([]Pair, error)
}
