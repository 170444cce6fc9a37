// Package exchange implements REST clients for the supported spot venues.
// Each client exposes the same two read-only surfaces: the venue's symbol
// listing and a best bid/ask snapshot for every instrument.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avelov/arbscan/internal/domain"
)

// defaultTimeout is applied when the caller passes a zero request timeout.
const defaultTimeout = 10 * time.Second

// Venue is a read-only market-data client for one exchange.
type Venue interface {
	// Name returns the canonical venue name, e.g. "Binance".
	Name() string
	// FetchSymbols returns the venue's active spot instruments.
	FetchSymbols(ctx context.Context) ([]domain.SymbolInfo, error)
	// FetchTickers returns the current best bid/ask per instrument symbol.
	FetchTickers(ctx context.Context) (map[string]domain.Ticker, error)
}

// New returns the client for the named venue. Names are case-insensitive;
// "huobi" is accepted as an alias for HTX. Unknown names return
// domain.ErrUnknownMarket.
func New(name string, timeout time.Duration) (Venue, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	switch strings.ToLower(name) {
	case "mexc":
		return NewMexc(timeout), nil
	case "binance":
		return NewBinance(timeout), nil
	case "kucoin":
		return NewKuCoin(timeout), nil
	case "bybit":
		return NewBybit(timeout), nil
	case "htx", "huobi":
		return NewHTX(timeout), nil
	default:
		return nil, fmt.Errorf("exchange: %q: %w", name, domain.ErrUnknownMarket)
	}
}

// getJSON performs a GET against url and decodes the JSON body into v.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// safeFloat parses venue string numbers, which are frequently empty or
// missing, into a float64 without failing the whole record.
func safeFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
