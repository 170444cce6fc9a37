// Package service coordinates the scan pipeline with persistence, caching,
// and notifications.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelov/arbscan/internal/domain"
	"github.com/avelov/arbscan/internal/engine"
	"github.com/avelov/arbscan/internal/notify"
)

// ScanService runs multi-market scans and fans the result out to the store,
// the result cache, and the notifier. Store, cache, and notifier are all
// optional; a missing collaborator is skipped.
type ScanService struct {
	orchestrator *engine.Orchestrator
	markets      []string
	store        domain.ScanStore
	results      domain.ResultCache
	notifier     *notify.Notifier
	logger       *slog.Logger
}

// ScanServiceConfig configures a ScanService.
type ScanServiceConfig struct {
	Orchestrator *engine.Orchestrator
	// Markets scanned when RunScan is called with an empty list.
	Markets  []string
	Store    domain.ScanStore
	Results  domain.ResultCache
	Notifier *notify.Notifier
	Logger   *slog.Logger
}

// NewScanService creates a ScanService from cfg.
func NewScanService(cfg ScanServiceConfig) *ScanService {
	return &ScanService{
		orchestrator: cfg.Orchestrator,
		markets:      cfg.Markets,
		store:        cfg.Store,
		results:      cfg.Results,
		notifier:     cfg.Notifier,
		logger:       cfg.Logger.With(slog.String("component", "scan_service")),
	}
}

// RunScan analyzes the given markets (or the configured defaults when the
// list is empty), persists and caches the merged result, and emits
// notifications. Persistence and cache failures are logged, not returned:
// the scan result itself is still valid for the caller.
func (s *ScanService) RunScan(ctx context.Context, markets []string) (domain.ScanResult, error) {
	if len(markets) == 0 {
		markets = s.markets
	}

	result := s.orchestrator.Run(ctx, markets)
	result.ID = uuid.NewString()

	if s.store != nil {
		if err := s.store.InsertScan(ctx, result); err != nil {
			s.logger.ErrorContext(ctx, "persist scan failed",
				slog.String("scan_id", result.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.results != nil {
		if err := s.results.SetLatest(ctx, result); err != nil {
			s.logger.ErrorContext(ctx, "cache scan failed",
				slog.String("scan_id", result.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.notifyResult(ctx, result)

	return result, nil
}

// RunLoop runs scans on a fixed interval until ctx is cancelled. The first
// scan runs immediately.
func (s *ScanService) RunLoop(ctx context.Context, interval time.Duration) error {
	s.logger.InfoContext(ctx, "scan loop starting",
		slog.Duration("interval", interval),
		slog.Any("markets", s.markets),
	)

	if _, err := s.RunScan(ctx, nil); err != nil {
		s.logger.ErrorContext(ctx, "scan failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scan loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunScan(ctx, nil); err != nil {
				s.logger.ErrorContext(ctx, "scan failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Latest returns the most recent cached scan result.
func (s *ScanService) Latest(ctx context.Context) (domain.ScanResult, error) {
	if s.results == nil {
		return domain.ScanResult{}, domain.ErrNotFound
	}
	return s.results.GetLatest(ctx)
}

// notifyResult emits scan_complete always and profitable_found when at least
// one cycle beat breakeven.
func (s *ScanService) notifyResult(ctx context.Context, result domain.ScanResult) {
	if s.notifier == nil {
		return
	}

	profitable := 0
	for _, op := range result.Qualifying {
		if op.Profit > 0 {
			profitable++
		}
	}

	msg := fmt.Sprintf("markets=%v qualifying=%d profitable=%d failures=%v duration=%s",
		result.Markets, len(result.Qualifying), profitable, result.Failures, result.Duration.Round(time.Millisecond))
	_ = s.notifier.Notify(ctx, "scan_complete", "Scan complete", msg)

	if profitable > 0 {
		best := result.Qualifying[0]
		_ = s.notifier.Notify(ctx, "profitable_found", "Profitable cycle found",
			fmt.Sprintf("%s %s: %v (+%.4f %s, %.4f%%)",
				best.Market, best.StartCoin, best.TradePath, best.Profit, best.StartCoin, best.ProfitPercent))
	}
}
