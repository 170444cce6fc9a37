package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avelov/arbscan/internal/domain"
)

const mexcDefaultFeeRate = 0.001

// Mexc is the read-only MEXC spot market-data client. The MEXC v3 surface
// mirrors Binance's but reports per-pair commissions in exchangeInfo.
type Mexc struct {
	baseURL    string
	httpClient *http.Client
}

// NewMexc creates a MEXC client against the production API.
func NewMexc(timeout time.Duration) *Mexc {
	return &Mexc{
		baseURL:    "https://api.mexc.com",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Venue.
func (m *Mexc) Name() string { return "MEXC" }

// SetBaseURL overrides the API root. Used by tests.
func (m *Mexc) SetBaseURL(url string) { m.baseURL = url }

// FetchSymbols returns enabled spot symbols with their commissions.
// GET /api/v3/exchangeInfo
func (m *Mexc) FetchSymbols(ctx context.Context) ([]domain.SymbolInfo, error) {
	var resp struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
			// Commissions arrive as JSON numbers or strings depending
			// on endpoint version.
			MakerCommission      json.Number `json:"makerCommission"`
			TakerCommission      json.Number `json:"takerCommission"`
			IsSpotTradingAllowed *bool       `json:"isSpotTradingAllowed"`
			Filters              []struct {
				FilterType  string `json:"filterType"`
				MinQty      string `json:"minQty"`
				MinNotional string `json:"minNotional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := getJSON(ctx, m.httpClient, m.baseURL+"/api/v3/exchangeInfo", &resp); err != nil {
		return nil, fmt.Errorf("mexc: fetch symbols: %w", err)
	}

	symbols := make([]domain.SymbolInfo, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status != "1" {
			continue
		}
		if s.IsSpotTradingAllowed != nil && !*s.IsSpotTradingAllowed {
			continue
		}

		maker := commission(s.MakerCommission)
		taker := commission(s.TakerCommission)

		var minBase, minQuote float64
		for _, f := range s.Filters {
			switch f.FilterType {
			case "LOT_SIZE":
				minBase = safeFloat(f.MinQty)
			case "NOTIONAL", "MIN_NOTIONAL":
				minQuote = safeFloat(f.MinNotional)
			}
		}

		symbols = append(symbols, domain.SymbolInfo{
			Symbol:   s.Symbol,
			Base:     s.BaseAsset,
			Quote:    s.QuoteAsset,
			FeeMaker: maker,
			FeeTaker: taker,
			MinBase:  minBase,
			MinQuote: minQuote,
		})
	}
	return symbols, nil
}

// FetchTickers returns the best bid/ask for all symbols.
// GET /api/v3/ticker/bookTicker
func (m *Mexc) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp []struct {
		Symbol   string `json:"symbol"`
		BidPrice string `json:"bidPrice"`
		BidQty   string `json:"bidQty"`
		AskPrice string `json:"askPrice"`
		AskQty   string `json:"askQty"`
	}
	if err := getJSON(ctx, m.httpClient, m.baseURL+"/api/v3/ticker/bookTicker", &resp); err != nil {
		return nil, fmt.Errorf("mexc: fetch tickers: %w", err)
	}

	tickers := make(map[string]domain.Ticker, len(resp))
	for _, t := range resp {
		tickers[t.Symbol] = domain.Ticker{
			Bid:    safeFloat(t.BidPrice),
			Ask:    safeFloat(t.AskPrice),
			BidQty: safeFloat(t.BidQty),
			AskQty: safeFloat(t.AskQty),
		}
	}
	return tickers, nil
}

// commission converts a reported commission to a fee fraction, falling back
// to the venue default when absent or unparsable.
func commission(n json.Number) float64 {
	if n.String() == "" {
		return mexcDefaultFeeRate
	}
	f, err := n.Float64()
	if err != nil {
		return mexcDefaultFeeRate
	}
	return f
}

var _ Venue = (*Mexc)(nil)
