package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelov/arbscan/internal/domain"
)

const resultTTL = 5 * time.Minute

// ResultCache implements domain.ResultCache. It holds the latest merged scan
// result so the HTTP surface can serve it without re-running the pipeline.
//
// Key schema:
//
//	scan:latest - JSON-serialized ScanResult
type ResultCache struct {
	rdb *redis.Client
}

// NewResultCache creates a ResultCache backed by the given Client.
func NewResultCache(c *Client) *ResultCache {
	return &ResultCache{rdb: c.Underlying()}
}

const latestScanKey = "scan:latest"

// SetLatest stores the result as the latest scan with a 5-minute TTL.
func (rc *ResultCache) SetLatest(ctx context.Context, result domain.ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: marshal scan %s: %w", result.ID, err)
	}
	if err := rc.rdb.Set(ctx, latestScanKey, data, resultTTL).Err(); err != nil {
		return fmt.Errorf("redis: set latest scan: %w", err)
	}
	return nil
}

// GetLatest returns the latest scan result, or domain.ErrNotFound when no
// scan has completed within the TTL window.
func (rc *ResultCache) GetLatest(ctx context.Context) (domain.ScanResult, error) {
	data, err := rc.rdb.Get(ctx, latestScanKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScanResult{}, domain.ErrNotFound
		}
		return domain.ScanResult{}, fmt.Errorf("redis: get latest scan: %w", err)
	}

	var result domain.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ScanResult{}, fmt.Errorf("redis: unmarshal latest scan: %w", err)
	}
	return result, nil
}

// Compile-time interface check.
var _ domain.ResultCache = (*ResultCache)(nil)
