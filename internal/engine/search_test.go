package engine

import (
	"math"
	"reflect"
	"testing"

	"github.com/avelov/arbscan/internal/domain"
)

// triangleGraph builds a three-currency market where every quote is flat
// (bid == ask) so every cycle loses exactly its fees.
func triangleGraph(t *testing.T) *Graph {
	t.Helper()
	return BuildGraph([]domain.Pair{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Bid: 100, Ask: 100, FeeTaker: 0.001},
		{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT", Bid: 10, Ask: 10, FeeTaker: 0.001},
		{Symbol: "ETHBTC", Base: "ETH", Quote: "BTC", Bid: 0.1, Ask: 0.1, FeeTaker: 0.001},
	}, testLogger())
}

func searchCfg() SearchConfig {
	return SearchConfig{
		Anchors:     []string{"USDT"},
		StartAmount: 100,
		MinTrades:   2,
		MaxDepth:    3,
	}
}

func TestSearchEnumeratesAllCycles(t *testing.T) {
	opps := NewSearcher(triangleGraph(t), searchCfg()).Run()

	if len(opps) != 4 {
		t.Fatalf("found %d cycles, want 4", len(opps))
	}

	wantPaths := [][]string{
		{"USDT -> BTC", "BTC -> USDT"},
		{"USDT -> BTC", "BTC -> ETH", "ETH -> USDT"},
		{"USDT -> ETH", "ETH -> USDT"},
		{"USDT -> ETH", "ETH -> BTC", "BTC -> USDT"},
	}
	for i, op := range opps {
		if !reflect.DeepEqual(op.TradePath, wantPaths[i]) {
			t.Errorf("cycle %d path = %v, want %v", i, op.TradePath, wantPaths[i])
		}
		if op.TradeCount != len(op.TradePath) {
			t.Errorf("cycle %d trade count = %d, want %d", i, op.TradeCount, len(op.TradePath))
		}
		if op.StartCoin != "USDT" || op.EndCoin != "USDT" {
			t.Errorf("cycle %d endpoints = %s/%s, want USDT/USDT", i, op.StartCoin, op.EndCoin)
		}
	}
}

func TestSearchAmountsLoseExactlyFees(t *testing.T) {
	opps := NewSearcher(triangleGraph(t), searchCfg()).Run()
	if len(opps) != 4 {
		t.Fatalf("found %d cycles, want 4", len(opps))
	}

	// Flat prices, 0.1% fee per hop, rounded to 4 decimals on record:
	// 99.8001 for two hops, 99.7003 for three.
	twoHop := round4(100 * 0.999 * 0.999)
	threeHop := round4(100 * 0.999 * 0.999 * 0.999)

	for i, op := range opps {
		want := twoHop
		if op.TradeCount == 3 {
			want = threeHop
		}
		if op.EndAmount != want {
			t.Errorf("cycle %d end amount = %v, want %v", i, op.EndAmount, want)
		}
		if got := op.EndAmount - op.StartAmount; math.Abs(op.Profit-round4(got)) > 1e-9 {
			t.Errorf("cycle %d profit = %v, inconsistent with amounts (%v)", i, op.Profit, got)
		}
	}
}

func TestSearchHonorsMinTrades(t *testing.T) {
	cfg := searchCfg()
	cfg.MinTrades = 3
	opps := NewSearcher(triangleGraph(t), cfg).Run()

	if len(opps) != 2 {
		t.Fatalf("found %d cycles, want 2 (direct round trips excluded)", len(opps))
	}
	for _, op := range opps {
		if op.TradeCount < 3 {
			t.Errorf("cycle %v has %d trades, below minimum", op.TradePath, op.TradeCount)
		}
	}
}

func TestSearchHonorsMaxDepth(t *testing.T) {
	cfg := searchCfg()
	cfg.MaxDepth = 2
	opps := NewSearcher(triangleGraph(t), cfg).Run()

	if len(opps) != 2 {
		t.Fatalf("found %d cycles, want 2 (three-hop cycles excluded)", len(opps))
	}
	for _, op := range opps {
		if op.TradeCount > 2 {
			t.Errorf("cycle %v has %d trades, above maximum depth", op.TradePath, op.TradeCount)
		}
	}
}

func TestSearchSkipsAbsentAnchor(t *testing.T) {
	cfg := searchCfg()
	cfg.Anchors = []string{"XRP", "USDT"}
	opps := NewSearcher(triangleGraph(t), cfg).Run()

	// XRP is not in the graph; the USDT anchor still runs.
	if len(opps) != 4 {
		t.Fatalf("found %d cycles, want 4 from the remaining anchor", len(opps))
	}
}

func TestSearchPrunesNegligibleAmounts(t *testing.T) {
	cfg := searchCfg()
	cfg.StartAmount = 1e-9
	opps := NewSearcher(triangleGraph(t), cfg).Run()

	if len(opps) != 0 {
		t.Fatalf("found %d cycles from a negligible start amount, want 0", len(opps))
	}
}

func TestSearchIsDeterministic(t *testing.T) {
	s := NewSearcher(triangleGraph(t), searchCfg())

	first := s.Run()
	second := s.Run()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated runs over the same graph must yield identical results")
	}
}

func TestSearchRevisitsOnlyAnchor(t *testing.T) {
	opps := NewSearcher(triangleGraph(t), searchCfg()).Run()

	for _, op := range opps {
		seen := map[string]int{}
		for _, step := range op.Steps {
			seen[step.To]++
		}
		for currency, n := range seen {
			if currency != "USDT" && n > 1 {
				t.Errorf("cycle %v visits %s %d times", op.TradePath, currency, n)
			}
		}
	}
}

func TestSearchFeeSummary(t *testing.T) {
	g := BuildGraph([]domain.Pair{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Bid: 100, Ask: 100, FeeTaker: 0.001},
		{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT", Bid: 10, Ask: 10, FeeTaker: 0.001},
		{Symbol: "ETHBTC", Base: "ETH", Quote: "BTC", Bid: 0.1, Ask: 0.1, FeeTaker: 0.002},
	}, testLogger())
	opps := NewSearcher(g, searchCfg()).Run()

	var threeHop *domain.Opportunity
	for i := range opps {
		if opps[i].TradeCount == 3 {
			threeHop = &opps[i]
			break
		}
	}
	if threeHop == nil {
		t.Fatal("expected a three-hop cycle")
	}

	// Distinct rates in first-seen order.
	if threeHop.FeeSummary != "0.10%/0.20%" {
		t.Fatalf("fee summary = %q, want %q", threeHop.FeeSummary, "0.10%/0.20%")
	}
	if len(threeHop.FeeBreakdown) != 3 {
		t.Fatalf("fee breakdown has %d entries, want 3", len(threeHop.FeeBreakdown))
	}
	if got := threeHop.FeeBreakdown[0].FeePercent; got != "0.100%" {
		t.Fatalf("fee percent = %q, want %q", got, "0.100%")
	}

	// Uniform-rate cycles collapse to a single summary entry.
	for _, op := range opps {
		if op.TradeCount == 2 && op.FeeSummary != "0.10%" {
			t.Fatalf("uniform fee summary = %q, want %q", op.FeeSummary, "0.10%")
		}
	}
}
