// Package marketdata merges venue symbol listings with live tickers into the
// normalized pair records the engine consumes. Symbol listings are static
// data and go through an optional cache; tickers are always fetched live.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avelov/arbscan/internal/domain"
	"github.com/avelov/arbscan/internal/exchange"
)

// VenueFactory resolves a market name to its venue client.
type VenueFactory func(name string) (exchange.Venue, error)

// ProviderConfig configures the market-data provider.
type ProviderConfig struct {
	// Venues resolves market names; defaults to the exchange registry with
	// RequestTimeout applied.
	Venues VenueFactory
	// Symbols is the optional symbol-listing cache. Nil disables caching.
	Symbols domain.SymbolCache
	// RequestTimeout is the per-request timeout for venue clients.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Provider implements domain.PairSource across all registered venues.
type Provider struct {
	venues  VenueFactory
	symbols domain.SymbolCache
	logger  *slog.Logger
}

// NewProvider creates a Provider from cfg.
func NewProvider(cfg ProviderConfig) *Provider {
	venues := cfg.Venues
	if venues == nil {
		venues = func(name string) (exchange.Venue, error) {
			return exchange.New(name, cfg.RequestTimeout)
		}
	}
	return &Provider{
		venues:  venues,
		symbols: cfg.Symbols,
		logger:  cfg.Logger.With(slog.String("component", "marketdata")),
	}
}

// Pairs fetches the market's symbol listing and live tickers, joins them on
// symbol, and returns every pair with a usable two-sided quote. A market that
// yields zero usable pairs returns domain.ErrNoData.
func (p *Provider) Pairs(ctx context.Context, market string) ([]domain.Pair, error) {
	venue, err := p.venues(market)
	if err != nil {
		return nil, err
	}

	symbols, err := p.fetchSymbols(ctx, venue)
	if err != nil {
		return nil, fmt.Errorf("marketdata: %s symbols: %w", market, err)
	}

	tickers, err := venue.FetchTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("marketdata: %s tickers: %w", market, err)
	}

	pairs := make([]domain.Pair, 0, len(symbols))
	for _, s := range symbols {
		t, ok := lookupTicker(tickers, s.Symbol)
		if !ok {
			continue
		}
		if t.Bid <= 0 || t.Ask <= 0 {
			continue
		}
		pairs = append(pairs, domain.Pair{
			Symbol:   s.Symbol,
			Base:     s.Base,
			Quote:    s.Quote,
			Bid:      t.Bid,
			Ask:      t.Ask,
			FeeMaker: s.FeeMaker,
			FeeTaker: s.FeeTaker,
			MinBase:  s.MinBase,
			MinQuote: s.MinQuote,
		})
	}

	p.logger.InfoContext(ctx, "market data updated",
		slog.String("market", market),
		slog.Int("symbols", len(symbols)),
		slog.Int("valid_pairs", len(pairs)),
	)

	if len(pairs) == 0 {
		return nil, fmt.Errorf("marketdata: %s: %w", market, domain.ErrNoData)
	}
	return pairs, nil
}

// fetchSymbols serves the venue's listing from cache when available, fetching
// live and repopulating on a miss. Cache failures degrade to a live fetch.
func (p *Provider) fetchSymbols(ctx context.Context, venue exchange.Venue) ([]domain.SymbolInfo, error) {
	if p.symbols != nil {
		cached, err := p.symbols.Get(ctx, venue.Name())
		if err == nil && len(cached) > 0 {
			p.logger.DebugContext(ctx, "symbols served from cache",
				slog.String("venue", venue.Name()),
				slog.Int("count", len(cached)),
			)
			return cached, nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			p.logger.WarnContext(ctx, "symbol cache read failed",
				slog.String("venue", venue.Name()),
				slog.String("error", err.Error()),
			)
		}
	}

	symbols, err := venue.FetchSymbols(ctx)
	if err != nil {
		return nil, err
	}

	if p.symbols != nil && len(symbols) > 0 {
		if err := p.symbols.Set(ctx, venue.Name(), symbols); err != nil {
			p.logger.WarnContext(ctx, "symbol cache write failed",
				slog.String("venue", venue.Name()),
				slog.String("error", err.Error()),
			)
		}
	}
	return symbols, nil
}

// lookupTicker joins on the exact symbol first, then retries with upper and
// lower casing to absorb venue casing quirks.
func lookupTicker(tickers map[string]domain.Ticker, symbol string) (domain.Ticker, bool) {
	if t, ok := tickers[symbol]; ok {
		return t, true
	}
	if t, ok := tickers[strings.ToUpper(symbol)]; ok {
		return t, true
	}
	if t, ok := tickers[strings.ToLower(symbol)]; ok {
		return t, true
	}
	return domain.Ticker{}, false
}

var _ domain.PairSource = (*Provider)(nil)
