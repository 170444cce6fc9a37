package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avelov/arbscan/internal/domain"
)

const bybitFeeRate = 0.001

// Bybit is the read-only Bybit V5 spot market-data client.
type Bybit struct {
	baseURL    string
	httpClient *http.Client
}

// NewBybit creates a Bybit client against the production API.
func NewBybit(timeout time.Duration) *Bybit {
	return &Bybit{
		baseURL:    "https://api.bybit.com",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Venue.
func (b *Bybit) Name() string { return "Bybit" }

// SetBaseURL overrides the API root. Used by tests.
func (b *Bybit) SetBaseURL(url string) { b.baseURL = url }

// FetchSymbols returns spot instruments in Trading status.
// GET /v5/market/instruments-info?category=spot
func (b *Bybit) FetchSymbols(ctx context.Context) ([]domain.SymbolInfo, error) {
	var resp struct {
		RetCode int `json:"retCode"`
		Result  struct {
			List []struct {
				Symbol        string `json:"symbol"`
				Status        string `json:"status"`
				BaseCoin      string `json:"baseCoin"`
				QuoteCoin     string `json:"quoteCoin"`
				LotSizeFilter struct {
					MinOrderQty string `json:"minOrderQty"`
					MinOrderAmt string `json:"minOrderAmt"`
				} `json:"lotSizeFilter"`
			} `json:"list"`
		} `json:"result"`
	}
	url := b.baseURL + "/v5/market/instruments-info?category=spot"
	if err := getJSON(ctx, b.httpClient, url, &resp); err != nil {
		return nil, fmt.Errorf("bybit: fetch symbols: %w", err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit: fetch symbols: retCode %d", resp.RetCode)
	}

	symbols := make([]domain.SymbolInfo, 0, len(resp.Result.List))
	for _, s := range resp.Result.List {
		if s.Status != "Trading" {
			continue
		}
		symbols = append(symbols, domain.SymbolInfo{
			Symbol:   s.Symbol,
			Base:     s.BaseCoin,
			Quote:    s.QuoteCoin,
			FeeMaker: bybitFeeRate,
			FeeTaker: bybitFeeRate,
			MinBase:  safeFloat(s.LotSizeFilter.MinOrderQty),
			MinQuote: safeFloat(s.LotSizeFilter.MinOrderAmt),
		})
	}
	return symbols, nil
}

// FetchTickers returns the best bid/ask for all spot symbols.
// GET /v5/market/tickers?category=spot
func (b *Bybit) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp struct {
		RetCode int `json:"retCode"`
		Result  struct {
			List []struct {
				Symbol    string `json:"symbol"`
				Bid1Price string `json:"bid1Price"`
				Bid1Size  string `json:"bid1Size"`
				Ask1Price string `json:"ask1Price"`
				Ask1Size  string `json:"ask1Size"`
			} `json:"list"`
		} `json:"result"`
	}
	url := b.baseURL + "/v5/market/tickers?category=spot"
	if err := getJSON(ctx, b.httpClient, url, &resp); err != nil {
		return nil, fmt.Errorf("bybit: fetch tickers: %w", err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit: fetch tickers: retCode %d", resp.RetCode)
	}

	tickers := make(map[string]domain.Ticker, len(resp.Result.List))
	for _, t := range resp.Result.List {
		tickers[t.Symbol] = domain.Ticker{
			Bid:    safeFloat(t.Bid1Price),
			Ask:    safeFloat(t.Ask1Price),
			BidQty: safeFloat(t.Bid1Size),
			AskQty: safeFloat(t.Ask1Size),
		}
	}
	return tickers, nil
}

var _ Venue = (*Bybit)(nil)
