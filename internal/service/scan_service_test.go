package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avelov/arbscan/internal/domain"
	"github.com/avelov/arbscan/internal/engine"
	"github.com/avelov/arbscan/internal/notify"
)

type staticSource struct{}

func (staticSource) Pairs(ctx context.Context, market string) ([]domain.Pair, error) {
	// A profitable triangle: buy BTC at 100, sell at 102.
	return []domain.Pair{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT", Bid: 102, Ask: 100, FeeTaker: 0.001},
	}, nil
}

type memStore struct {
	mu      sync.Mutex
	scans   []domain.ScanResult
	failing bool
}

func (s *memStore) InsertScan(ctx context.Context, result domain.ScanResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("pg down")
	}
	s.scans = append(s.scans, result)
	return nil
}

func (s *memStore) ListScans(ctx context.Context, limit int) ([]domain.ScanSummary, error) {
	return nil, nil
}

func (s *memStore) ListRecentOpportunities(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	return nil, nil
}

type memResults struct {
	mu     sync.Mutex
	latest *domain.ScanResult
}

func (r *memResults) SetLatest(ctx context.Context, result domain.ScanResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = &result
	return nil
}

func (r *memResults) GetLatest(ctx context.Context) (domain.ScanResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return domain.ScanResult{}, domain.ErrNotFound
	}
	return *r.latest, nil
}

type recordingSender struct {
	mu     sync.Mutex
	titles []string
}

func (s *recordingSender) Send(ctx context.Context, title, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, title)
	return nil
}

func (s *recordingSender) Name() string { return "recording" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store domain.ScanStore, results domain.ResultCache, notifier *notify.Notifier) *ScanService {
	logger := discardLogger()
	orch := engine.NewOrchestrator(staticSource{}, engine.OrchestratorConfig{
		Search: engine.SearchConfig{
			Anchors:     []string{"USDT"},
			StartAmount: 100,
			MinTrades:   2,
			MaxDepth:    2,
		},
		MinProfitPercent: -0.5,
		PerMarketTop:     50,
		GlobalTop:        100,
		MarketTimeout:    time.Second,
	}, logger)

	return NewScanService(ScanServiceConfig{
		Orchestrator: orch,
		Markets:      []string{"binance"},
		Store:        store,
		Results:      results,
		Notifier:     notifier,
		Logger:       logger,
	})
}

func TestRunScanPersistsAndCaches(t *testing.T) {
	store := &memStore{}
	results := &memResults{}
	svc := newTestService(store, results, nil)

	result, err := svc.RunScan(context.Background(), nil)
	if err != nil {
		t.Fatalf("RunScan: %v", err)
	}
	if result.ID == "" {
		t.Fatal("result must be stamped with an ID")
	}
	if len(result.Qualifying) != 1 {
		t.Fatalf("qualifying = %d, want the one profitable cycle", len(result.Qualifying))
	}

	if len(store.scans) != 1 || store.scans[0].ID != result.ID {
		t.Fatal("result not persisted")
	}

	cached, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if cached.ID != result.ID {
		t.Fatalf("cached ID = %s, want %s", cached.ID, result.ID)
	}
}

func TestRunScanSurvivesStoreFailure(t *testing.T) {
	store := &memStore{failing: true}
	svc := newTestService(store, &memResults{}, nil)

	result, err := svc.RunScan(context.Background(), nil)
	if err != nil {
		t.Fatalf("a store failure must not fail the scan: %v", err)
	}
	if len(result.Qualifying) != 1 {
		t.Fatal("scan result lost on store failure")
	}
}

func TestRunScanNotifies(t *testing.T) {
	sender := &recordingSender{}
	notifier := notify.NewNotifier([]notify.Sender{sender}, nil, discardLogger())
	svc := newTestService(nil, nil, notifier)

	if _, err := svc.RunScan(context.Background(), nil); err != nil {
		t.Fatalf("RunScan: %v", err)
	}

	if len(sender.titles) != 2 {
		t.Fatalf("sent %d notifications, want scan_complete and profitable_found", len(sender.titles))
	}
	if !strings.Contains(sender.titles[1], "Profitable") {
		t.Fatalf("second notification = %q, want profitable alert", sender.titles[1])
	}
}

func TestLatestWithoutCache(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	if _, err := svc.Latest(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
