package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/avelov/arbscan/internal/domain"
)

// lowProfitThreshold separates PROFITABLE from LOW_PROFIT in percent terms.
const lowProfitThreshold = 0.2

// Ranker turns the raw opportunity batch of one market into the two consumer
// views: the threshold-filtered qualifying list and the threshold-independent
// top-N list. Both views are stable-sorted descending by absolute profit, so
// ties keep discovery order.
type Ranker struct {
	// MinProfitPercent is the qualifying threshold. It may be negative to
	// surface near-breakeven cycles.
	MinProfitPercent float64
}

// Filter retains opportunities whose profit percent meets the threshold,
// stamps them with an ID and generation timestamp, strips internal per-hop
// state, and sorts them descending by profit.
func (r Ranker) Filter(opps []domain.Opportunity) []domain.Opportunity {
	now := time.Now().UTC()

	qualifying := make([]domain.Opportunity, 0, len(opps))
	for _, op := range opps {
		if op.ProfitPercent < r.MinProfitPercent {
			continue
		}
		qualifying = append(qualifying, finalize(op, now))
	}

	sortByProfit(qualifying)
	return qualifying
}

// TopN ignores the profitability threshold: it sorts all opportunities
// descending by profit, keeps the first limit entries, and labels each with a
// status derived purely from its profit percent.
func (r Ranker) TopN(opps []domain.Opportunity, limit int) []domain.Opportunity {
	now := time.Now().UTC()

	top := make([]domain.Opportunity, len(opps))
	for i, op := range opps {
		top[i] = finalize(op, now)
	}

	sortByProfit(top)
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}

	for i := range top {
		top[i].Status = classify(top[i].ProfitPercent)
	}
	return top
}

// finalize produces the display-safe projection of an opportunity: raw steps
// are dropped and ID/timestamp are attached. The input is copied, never
// mutated, so the same batch can feed both views.
func finalize(op domain.Opportunity, now time.Time) domain.Opportunity {
	op.ID = uuid.NewString()
	op.Timestamp = now
	op.Steps = nil
	return op
}

func classify(profitPercent float64) domain.OpportunityStatus {
	switch {
	case profitPercent >= lowProfitThreshold:
		return domain.StatusProfitable
	case profitPercent > 0:
		return domain.StatusLowProfit
	default:
		return domain.StatusLoss
	}
}

// sortByProfit is the shared ordering of both views: descending by absolute
// profit, stable so first-discovered wins ties.
func sortByProfit(opps []domain.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Profit > opps[j].Profit
	})
}
