package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelov/arbscan/internal/domain"
)

// ScanStore implements domain.ScanStore using PostgreSQL. Each scan persists
// one scan_history digest row plus its top-ranked opportunities.
type ScanStore struct {
	pool *pgxpool.Pool
}

// NewScanStore creates a new ScanStore backed by the given connection pool.
func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

// InsertScan stores the scan summary and its top-ranked opportunities in one
// transaction.
func (s *ScanStore) InsertScan(ctx context.Context, result domain.ScanResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin scan insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const scanQuery = `
		INSERT INTO scan_history (id, markets, profitable_count, failures, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)`

	failures := result.Failures
	if failures == nil {
		failures = []string{}
	}

	if _, err := tx.Exec(ctx, scanQuery,
		result.ID, result.Markets, len(result.Qualifying), failures,
		result.StartedAt, result.DurationMs,
	); err != nil {
		return fmt.Errorf("postgres: insert scan %s: %w", result.ID, err)
	}

	const oppQuery = `
		INSERT INTO opportunities (
			id, scan_id, market, start_coin, start_amount, end_amount,
			profit, profit_percent, trade_path, trade_count,
			fee_summary, status, detected_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13
		)`

	batch := &pgx.Batch{}
	for _, op := range result.TopRanked {
		batch.Queue(oppQuery,
			op.ID, result.ID, op.Market, op.StartCoin, op.StartAmount, op.EndAmount,
			op.Profit, op.ProfitPercent, op.TradePath, op.TradeCount,
			op.FeeSummary, string(op.Status), op.Timestamp,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("postgres: insert opportunities for scan %s: %w", result.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit scan %s: %w", result.ID, err)
	}
	return nil
}

// ListScans returns the most recent scan summaries, newest first.
func (s *ScanStore) ListScans(ctx context.Context, limit int) ([]domain.ScanSummary, error) {
	query := `
		SELECT id, markets, profitable_count, started_at, duration_ms
		FROM scan_history ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scans: %w", err)
	}
	defer rows.Close()

	var scans []domain.ScanSummary
	for rows.Next() {
		var sc domain.ScanSummary
		if err := rows.Scan(&sc.ID, &sc.Markets, &sc.ProfitableCount, &sc.StartedAt, &sc.DurationMs); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		scans = append(scans, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list scans rows: %w", err)
	}
	return scans, nil
}

// ListRecentOpportunities returns recently persisted opportunities ordered by
// detection time, newest first.
func (s *ScanStore) ListRecentOpportunities(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `
		SELECT id, market, start_coin, start_amount, end_amount,
		       profit, profit_percent, trade_path, trade_count,
		       fee_summary, status, detected_at
		FROM opportunities ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var op domain.Opportunity
		var status string
		if err := rows.Scan(
			&op.ID, &op.Market, &op.StartCoin, &op.StartAmount, &op.EndAmount,
			&op.Profit, &op.ProfitPercent, &op.TradePath, &op.TradeCount,
			&op.FeeSummary, &status, &op.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		op.EndCoin = op.StartCoin
		op.Status = domain.OpportunityStatus(status)
		opps = append(opps, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list opportunities rows: %w", err)
	}
	return opps, nil
}

// Compile-time interface check.
var _ domain.ScanStore = (*ScanStore)(nil)
