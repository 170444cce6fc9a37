package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avelov/arbscan/internal/domain"
)

// htxFeeRate is HTX's standard 0.2% spot rate.
const htxFeeRate = 0.002

// HTX is the read-only HTX (Huobi) spot market-data client. HTX symbols are
// lowercase concatenations (e.g. "btcusdt").
type HTX struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTX creates an HTX client against the production API.
func NewHTX(timeout time.Duration) *HTX {
	return &HTX{
		baseURL:    "https://api.htx.com",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Venue.
func (h *HTX) Name() string { return "HTX" }

// SetBaseURL overrides the API root. Used by tests.
func (h *HTX) SetBaseURL(url string) { h.baseURL = url }

// FetchSymbols returns symbols in online state.
// GET /v1/common/symbols
func (h *HTX) FetchSymbols(ctx context.Context) ([]domain.SymbolInfo, error) {
	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Symbol        string  `json:"symbol"`
			BaseCurrency  string  `json:"base-currency"`
			QuoteCurrency string  `json:"quote-currency"`
			State         string  `json:"state"`
			MinOrderAmt   float64 `json:"min-order-amt"`
			MinOrderValue float64 `json:"min-order-value"`
		} `json:"data"`
	}
	if err := getJSON(ctx, h.httpClient, h.baseURL+"/v1/common/symbols", &resp); err != nil {
		return nil, fmt.Errorf("htx: fetch symbols: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("htx: fetch symbols: status %q", resp.Status)
	}

	symbols := make([]domain.SymbolInfo, 0, len(resp.Data))
	for _, s := range resp.Data {
		if s.State != "online" {
			continue
		}
		symbols = append(symbols, domain.SymbolInfo{
			Symbol:   s.Symbol,
			Base:     strings.ToUpper(s.BaseCurrency),
			Quote:    strings.ToUpper(s.QuoteCurrency),
			FeeMaker: htxFeeRate,
			FeeTaker: htxFeeRate,
			MinBase:  s.MinOrderAmt,
			MinQuote: s.MinOrderValue,
		})
	}
	return symbols, nil
}

// FetchTickers returns the best bid/ask for all symbols.
// GET /market/tickers
func (h *HTX) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Symbol  string  `json:"symbol"`
			Bid     float64 `json:"bid"`
			BidSize float64 `json:"bidSize"`
			Ask     float64 `json:"ask"`
			AskSize float64 `json:"askSize"`
		} `json:"data"`
	}
	if err := getJSON(ctx, h.httpClient, h.baseURL+"/market/tickers", &resp); err != nil {
		return nil, fmt.Errorf("htx: fetch tickers: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("htx: fetch tickers: status %q", resp.Status)
	}

	tickers := make(map[string]domain.Ticker, len(resp.Data))
	for _, t := range resp.Data {
		tickers[t.Symbol] = domain.Ticker{
			Bid:    t.Bid,
			Ask:    t.Ask,
			BidQty: t.BidSize,
			AskQty: t.AskSize,
		}
	}
	return tickers, nil
}

var _ Venue = (*HTX)(nil)
