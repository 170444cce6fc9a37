package domain

import "context"

// SymbolCache caches per-venue symbol listings. Symbol metadata changes
// rarely, so listings are cached with a long TTL to keep repeated scans from
// hammering venue metadata endpoints.
type SymbolCache interface {
	// Get returns the cached listing for the venue, or ErrNotFound.
	Get(ctx context.Context, venue string) ([]SymbolInfo, error)
	// Set stores the listing for the venue.
	Set(ctx context.Context, venue string, symbols []SymbolInfo) error
}

// ResultCache holds the most recent merged scan result for the HTTP surface.
type ResultCache interface {
	// SetLatest stores the result as the latest scan.
	SetLatest(ctx context.Context, result ScanResult) error
	// GetLatest returns the latest scan, or ErrNotFound when no scan has
	// completed yet (or the entry expired).
	GetLatest(ctx context.Context) (ScanResult, error)
}
