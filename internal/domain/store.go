package domain

import "context"

// ScanStore persists scan digests and their top opportunities.
type ScanStore interface {
	// InsertScan stores the scan summary row and the top-ranked
	// opportunities of the result.
	InsertScan(ctx context.Context, result ScanResult) error
	// ListScans returns the most recent scan summaries, newest first.
	ListScans(ctx context.Context, limit int) ([]ScanSummary, error)
	// ListRecentOpportunities returns recently persisted opportunities,
	// newest first.
	ListRecentOpportunities(ctx context.Context, limit int) ([]Opportunity, error)
}
