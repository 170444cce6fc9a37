package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avelov/arbscan/internal/domain"
)

const kucoinFeeRate = 0.001

// KuCoin is the read-only KuCoin spot market-data client. KuCoin symbols are
// hyphenated (e.g. "BTC-USDT"); they are kept as-is so tickers and symbols
// join on the venue's own naming.
type KuCoin struct {
	baseURL    string
	httpClient *http.Client
}

// NewKuCoin creates a KuCoin client against the production API.
func NewKuCoin(timeout time.Duration) *KuCoin {
	return &KuCoin{
		baseURL:    "https://api.kucoin.com",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Venue.
func (k *KuCoin) Name() string { return "KuCoin" }

// SetBaseURL overrides the API root. Used by tests.
func (k *KuCoin) SetBaseURL(url string) { k.baseURL = url }

// FetchSymbols returns symbols with trading enabled.
// GET /api/v1/symbols
func (k *KuCoin) FetchSymbols(ctx context.Context) ([]domain.SymbolInfo, error) {
	var resp struct {
		Code string `json:"code"`
		Data []struct {
			Symbol        string `json:"symbol"`
			BaseCurrency  string `json:"baseCurrency"`
			QuoteCurrency string `json:"quoteCurrency"`
			BaseMinSize   string `json:"baseMinSize"`
			QuoteMinSize  string `json:"quoteMinSize"`
			EnableTrading bool   `json:"enableTrading"`
		} `json:"data"`
	}
	if err := getJSON(ctx, k.httpClient, k.baseURL+"/api/v1/symbols", &resp); err != nil {
		return nil, fmt.Errorf("kucoin: fetch symbols: %w", err)
	}
	if resp.Code != "200000" {
		return nil, fmt.Errorf("kucoin: fetch symbols: unexpected code %q", resp.Code)
	}

	symbols := make([]domain.SymbolInfo, 0, len(resp.Data))
	for _, s := range resp.Data {
		if !s.EnableTrading {
			continue
		}
		symbols = append(symbols, domain.SymbolInfo{
			Symbol:   s.Symbol,
			Base:     s.BaseCurrency,
			Quote:    s.QuoteCurrency,
			FeeMaker: kucoinFeeRate,
			FeeTaker: kucoinFeeRate,
			MinBase:  safeFloat(s.BaseMinSize),
			MinQuote: safeFloat(s.QuoteMinSize),
		})
	}
	return symbols, nil
}

// FetchTickers returns the best bid/ask for all symbols. The allTickers
// summary labels the best bid "buy" and the best ask "sell".
// GET /api/v1/market/allTickers
func (k *KuCoin) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp struct {
		Code string `json:"code"`
		Data struct {
			Ticker []struct {
				Symbol string `json:"symbol"`
				Buy    string `json:"buy"`
				Sell   string `json:"sell"`
			} `json:"ticker"`
		} `json:"data"`
	}
	if err := getJSON(ctx, k.httpClient, k.baseURL+"/api/v1/market/allTickers", &resp); err != nil {
		return nil, fmt.Errorf("kucoin: fetch tickers: %w", err)
	}
	if resp.Code != "200000" {
		return nil, fmt.Errorf("kucoin: fetch tickers: unexpected code %q", resp.Code)
	}

	tickers := make(map[string]domain.Ticker, len(resp.Data.Ticker))
	for _, t := range resp.Data.Ticker {
		tickers[t.Symbol] = domain.Ticker{
			Bid: safeFloat(t.Buy),
			Ask: safeFloat(t.Sell),
		}
	}
	return tickers, nil
}

var _ Venue = (*KuCoin)(nil)
