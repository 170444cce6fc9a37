package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelov/arbscan/internal/domain"
)

// SymbolCache implements domain.SymbolCache using a JSON-serialized string
// value per venue. Symbol listings change rarely, so a long TTL keeps
// repeated scans off the venues' metadata endpoints.
//
// Key schema:
//
//	symbols:{venue} - JSON array of SymbolInfo
type SymbolCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSymbolCache creates a SymbolCache backed by the given Client with the
// given listing TTL.
func NewSymbolCache(c *Client, ttl time.Duration) *SymbolCache {
	return &SymbolCache{rdb: c.Underlying(), ttl: ttl}
}

func symbolKey(venue string) string { return "symbols:" + strings.ToLower(venue) }

// Get returns the cached listing for the venue, or domain.ErrNotFound when
// no listing is cached (or the entry expired).
func (sc *SymbolCache) Get(ctx context.Context, venue string) ([]domain.SymbolInfo, error) {
	data, err := sc.rdb.Get(ctx, symbolKey(venue)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get symbols %s: %w", venue, err)
	}

	var symbols []domain.SymbolInfo
	if err := json.Unmarshal(data, &symbols); err != nil {
		return nil, fmt.Errorf("redis: unmarshal symbols %s: %w", venue, err)
	}
	return symbols, nil
}

// Set stores the venue's listing with the configured TTL.
func (sc *SymbolCache) Set(ctx context.Context, venue string, symbols []domain.SymbolInfo) error {
	data, err := json.Marshal(symbols)
	if err != nil {
		return fmt.Errorf("redis: marshal symbols %s: %w", venue, err)
	}
	if err := sc.rdb.Set(ctx, symbolKey(venue), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set symbols %s: %w", venue, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SymbolCache = (*SymbolCache)(nil)
