package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avelov/arbscan/internal/domain"
)

func TestNewResolvesVenues(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"mexc", "MEXC"},
		{"Binance", "Binance"},
		{"KUCOIN", "KuCoin"},
		{"bybit", "Bybit"},
		{"htx", "HTX"},
		{"Huobi", "HTX"},
	}
	for _, c := range cases {
		v, err := New(c.in, time.Second)
		if err != nil {
			t.Fatalf("New(%q) error: %v", c.in, err)
		}
		if v.Name() != c.want {
			t.Errorf("New(%q).Name() = %q, want %q", c.in, v.Name(), c.want)
		}
	}
}

func TestNewRejectsUnknownVenue(t *testing.T) {
	_, err := New("nasdaq", time.Second)
	if !errors.Is(err, domain.ErrUnknownMarket) {
		t.Fatalf("error = %v, want ErrUnknownMarket", err)
	}
}

func jsonServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBinanceParsesSymbolsAndTickers(t *testing.T) {
	srv := jsonServer(t, map[string]string{
		"/api/v3/exchangeInfo": `{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT",
			 "filters":[{"filterType":"LOT_SIZE","minQty":"0.0001"},{"filterType":"NOTIONAL","minNotional":"5"}]},
			{"symbol":"DEADUSDT","status":"BREAK","baseAsset":"DEAD","quoteAsset":"USDT","filters":[]}
		]}`,
		"/api/v3/ticker/bookTicker": `[
			{"symbol":"BTCUSDT","bidPrice":"49990.10","bidQty":"1.5","askPrice":"50010.20","askQty":"0.7"}
		]`,
	})

	b := NewBinance(time.Second)
	b.SetBaseURL(srv.URL)

	symbols, err := b.FetchSymbols(context.Background())
	if err != nil {
		t.Fatalf("FetchSymbols: %v", err)
	}
	if len(symbols) != 1 {
		t.Fatalf("got %d symbols, want 1 (non-trading excluded)", len(symbols))
	}
	s := symbols[0]
	if s.Symbol != "BTCUSDT" || s.Base != "BTC" || s.Quote != "USDT" {
		t.Fatalf("unexpected symbol: %+v", s)
	}
	if s.FeeTaker != 0.001 || s.MinBase != 0.0001 || s.MinQuote != 5 {
		t.Fatalf("unexpected symbol economics: %+v", s)
	}

	tickers, err := b.FetchTickers(context.Background())
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	tk, ok := tickers["BTCUSDT"]
	if !ok {
		t.Fatal("BTCUSDT ticker missing")
	}
	if tk.Bid != 49990.10 || tk.Ask != 50010.20 || tk.BidQty != 1.5 || tk.AskQty != 0.7 {
		t.Fatalf("unexpected ticker: %+v", tk)
	}
}

func TestMexcParsesCommissions(t *testing.T) {
	srv := jsonServer(t, map[string]string{
		"/api/v3/exchangeInfo": `{"symbols":[
			{"symbol":"BTCUSDT","status":"1","baseAsset":"BTC","quoteAsset":"USDT",
			 "makerCommission":"0","takerCommission":"0.0005","isSpotTradingAllowed":true,"filters":[]},
			{"symbol":"ETHUSDT","status":"1","baseAsset":"ETH","quoteAsset":"USDT","filters":[]},
			{"symbol":"OFFUSDT","status":"1","baseAsset":"OFF","quoteAsset":"USDT","isSpotTradingAllowed":false,"filters":[]}
		]}`,
	})

	m := NewMexc(time.Second)
	m.SetBaseURL(srv.URL)

	symbols, err := m.FetchSymbols(context.Background())
	if err != nil {
		t.Fatalf("FetchSymbols: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("got %d symbols, want 2 (spot-disabled excluded)", len(symbols))
	}
	if symbols[0].FeeTaker != 0.0005 || symbols[0].FeeMaker != 0 {
		t.Fatalf("reported commissions not used: %+v", symbols[0])
	}
	// Missing commissions fall back to the venue default.
	if symbols[1].FeeTaker != mexcDefaultFeeRate {
		t.Fatalf("default commission = %v, want %v", symbols[1].FeeTaker, mexcDefaultFeeRate)
	}
}

func TestKuCoinChecksEnvelopeCode(t *testing.T) {
	srv := jsonServer(t, map[string]string{
		"/api/v1/symbols": `{"code":"200000","data":[
			{"symbol":"BTC-USDT","baseCurrency":"BTC","quoteCurrency":"USDT",
			 "baseMinSize":"0.00001","quoteMinSize":"0.1","enableTrading":true},
			{"symbol":"OFF-USDT","baseCurrency":"OFF","quoteCurrency":"USDT","enableTrading":false}
		]}`,
		"/api/v1/market/allTickers": `{"code":"500000","data":{"ticker":[]}}`,
	})

	k := NewKuCoin(time.Second)
	k.SetBaseURL(srv.URL)

	symbols, err := k.FetchSymbols(context.Background())
	if err != nil {
		t.Fatalf("FetchSymbols: %v", err)
	}
	if len(symbols) != 1 || symbols[0].Symbol != "BTC-USDT" {
		t.Fatalf("unexpected symbols: %+v", symbols)
	}

	if _, err := k.FetchTickers(context.Background()); err == nil {
		t.Fatal("non-200000 envelope code must fail")
	}
}

func TestKuCoinTickerFieldMapping(t *testing.T) {
	// The allTickers summary labels the best bid "buy" and the best ask "sell".
	srv := jsonServer(t, map[string]string{
		"/api/v1/market/allTickers": `{"code":"200000","data":{"ticker":[
			{"symbol":"BTC-USDT","buy":"49990","sell":"50010"}
		]}}`,
	})

	k := NewKuCoin(time.Second)
	k.SetBaseURL(srv.URL)

	tickers, err := k.FetchTickers(context.Background())
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	tk := tickers["BTC-USDT"]
	if tk.Bid != 49990 || tk.Ask != 50010 {
		t.Fatalf("bid/ask mapping wrong: %+v", tk)
	}
}

func TestBybitParsesV5Envelope(t *testing.T) {
	srv := jsonServer(t, map[string]string{
		"/v5/market/instruments-info": `{"retCode":0,"result":{"list":[
			{"symbol":"BTCUSDT","status":"Trading","baseCoin":"BTC","quoteCoin":"USDT",
			 "lotSizeFilter":{"minOrderQty":"0.00004","minOrderAmt":"1"}},
			{"symbol":"XUSDT","status":"Closed","baseCoin":"X","quoteCoin":"USDT","lotSizeFilter":{}}
		]}}`,
		"/v5/market/tickers": `{"retCode":0,"result":{"list":[
			{"symbol":"BTCUSDT","bid1Price":"49990","bid1Size":"2","ask1Price":"50010","ask1Size":"1"}
		]}}`,
	})

	b := NewBybit(time.Second)
	b.SetBaseURL(srv.URL)

	symbols, err := b.FetchSymbols(context.Background())
	if err != nil {
		t.Fatalf("FetchSymbols: %v", err)
	}
	if len(symbols) != 1 || symbols[0].MinBase != 0.00004 {
		t.Fatalf("unexpected symbols: %+v", symbols)
	}

	tickers, err := b.FetchTickers(context.Background())
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	if tk := tickers["BTCUSDT"]; tk.Bid != 49990 || tk.Ask != 50010 {
		t.Fatalf("unexpected ticker: %+v", tk)
	}
}

func TestHTXParsesLowercaseSymbols(t *testing.T) {
	srv := jsonServer(t, map[string]string{
		"/v1/common/symbols": `{"status":"ok","data":[
			{"symbol":"btcusdt","base-currency":"btc","quote-currency":"usdt","state":"online",
			 "min-order-amt":0.0001,"min-order-value":5},
			{"symbol":"offusdt","base-currency":"off","quote-currency":"usdt","state":"offline"}
		]}`,
		"/market/tickers": `{"status":"ok","data":[
			{"symbol":"btcusdt","bid":49990,"bidSize":2,"ask":50010,"askSize":1}
		]}`,
	})

	h := NewHTX(time.Second)
	h.SetBaseURL(srv.URL)

	symbols, err := h.FetchSymbols(context.Background())
	if err != nil {
		t.Fatalf("FetchSymbols: %v", err)
	}
	if len(symbols) != 1 {
		t.Fatalf("got %d symbols, want 1 (offline excluded)", len(symbols))
	}
	s := symbols[0]
	// Currency codes are uppercased; the instrument symbol keeps HTX's
	// lowercase form so it joins against the ticker map.
	if s.Symbol != "btcusdt" || s.Base != "BTC" || s.Quote != "USDT" {
		t.Fatalf("unexpected symbol: %+v", s)
	}
	if s.FeeTaker != htxFeeRate {
		t.Fatalf("fee = %v, want HTX rate %v", s.FeeTaker, htxFeeRate)
	}

	tickers, err := h.FetchTickers(context.Background())
	if err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	if _, ok := tickers["btcusdt"]; !ok {
		t.Fatal("lowercase ticker symbol missing")
	}
}

func TestGetJSONRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	b := NewBinance(time.Second)
	b.SetBaseURL(srv.URL)
	if _, err := b.FetchTickers(context.Background()); err == nil {
		t.Fatal("HTTP 429 must surface as an error")
	}
}
