package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avelov/arbscan/internal/domain"
)

// binanceFeeRate is the standard spot taker/maker rate. The public REST
// surface does not expose per-pair fees without authentication.
const binanceFeeRate = 0.001

// Binance is the read-only Binance spot market-data client.
type Binance struct {
	baseURL    string
	httpClient *http.Client
}

// NewBinance creates a Binance client against the production API.
func NewBinance(timeout time.Duration) *Binance {
	return &Binance{
		baseURL:    "https://api.binance.com",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Venue.
func (b *Binance) Name() string { return "Binance" }

// SetBaseURL overrides the API root. Used by tests.
func (b *Binance) SetBaseURL(url string) { b.baseURL = url }

// FetchSymbols returns every symbol currently in TRADING status.
// GET /api/v3/exchangeInfo
func (b *Binance) FetchSymbols(ctx context.Context) ([]domain.SymbolInfo, error) {
	var resp struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
			Filters    []struct {
				FilterType  string `json:"filterType"`
				MinQty      string `json:"minQty"`
				MinNotional string `json:"minNotional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := getJSON(ctx, b.httpClient, b.baseURL+"/api/v3/exchangeInfo", &resp); err != nil {
		return nil, fmt.Errorf("binance: fetch symbols: %w", err)
	}

	symbols := make([]domain.SymbolInfo, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status != "TRADING" {
			continue
		}

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
			FeeMaker: binanceFeeRate,
			FeeTaker: binanceFeeRate,
			MinBase:  minBase,
			MinQuote: minQuote,
		})
	}
	return symbols, nil
}

// FetchTickers returns the best bid/ask for all symbols.
// GET /api/v3/ticker/bookTicker
func (b *Binance) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp []struct {
		Symbol   string `json:"symbol"`
		BidPrice string `json:"bidPrice"`
		BidQty   string `json:"bidQty"`
		AskPrice string `json:"askPrice"`
		AskQty   string `json:"askQty"`
	}
	if err := getJSON(ctx, b.httpClient, b.baseURL+"/api/v3/ticker/bookTicker", &resp); err != nil {
		return nil, fmt.Errorf("binance: fetch tickers: %w", err)
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

var _ Venue = (*Binance)(nil)
