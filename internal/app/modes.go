package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avelov/arbscan/internal/engine"
	"github.com/avelov/arbscan/internal/marketdata"
	"github.com/avelov/arbscan/internal/server"
	"github.com/avelov/arbscan/internal/server/handler"
	"github.com/avelov/arbscan/internal/service"
)

// buildScanService assembles the market-data provider, engine orchestrator,
// and scan service shared by all modes.
func (a *App) buildScanService(deps *Dependencies) *service.ScanService {
	provider := marketdata.NewProvider(marketdata.ProviderConfig{
		Symbols:        deps.SymbolCache,
		RequestTimeout: a.cfg.Scan.RequestTimeout.Duration,
		Logger:         a.logger,
	})

	orch := engine.NewOrchestrator(provider, engine.OrchestratorConfig{
		Search: engine.SearchConfig{
			Anchors:     a.cfg.Arbitrage.Anchors,
			StartAmount: a.cfg.Arbitrage.StartAmount,
			MinTrades:   a.cfg.Arbitrage.MinTrades,
			MaxDepth:    a.cfg.Arbitrage.MaxDepth,
		},
		MinProfitPercent: a.cfg.Arbitrage.MinProfitPercent,
		PerMarketTop:     a.cfg.Arbitrage.PerMarketTop,
		GlobalTop:        a.cfg.Arbitrage.GlobalTop,
		MarketTimeout:    a.cfg.Arbitrage.MarketTimeout.Duration,
	}, a.logger)

	return service.NewScanService(service.ScanServiceConfig{
		Orchestrator: orch,
		Markets:      a.cfg.Exchanges,
		Store:        deps.ScanStore,
		Results:      deps.ResultCache,
		Notifier:     deps.Notifier,
		Logger:       a.logger,
	})
}

// ScanMode runs a single scan across the configured exchanges and writes the
// merged result to stdout as JSON.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	svc := a.buildScanService(deps)
	result, err := svc.RunScan(ctx, nil)
	if err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("app: encode result: %w", err)
	}
	return nil
}

// DaemonMode runs the periodic scan loop and, when enabled, the HTTP API
// server until the context is cancelled.
func (a *App) DaemonMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting daemon mode")

	svc := a.buildScanService(deps)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := svc.RunLoop(ctx, a.cfg.Scan.Interval.Duration)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("scan loop: %w", err)
	})

	if a.cfg.Server.Enabled {
		a.startServer(ctx, g, svc, deps)
	}

	return g.Wait()
}

// ServerMode serves cached and persisted results without running scans.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	svc := a.buildScanService(deps)

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, svc, deps)
	return g.Wait()
}

// startServer registers the HTTP server goroutines on g: one serving, one
// waiting on ctx to trigger graceful shutdown.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, svc *service.ScanService, deps *Dependencies) {
	scanHandler := handler.NewScanHandler(svc, a.logger)
	if deps.ScanStore != nil {
		scanHandler = scanHandler.WithStore(deps.ScanStore)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, server.Handlers{
		Health: handler.NewHealthHandler(),
		Scan:   scanHandler,
	}, a.logger)

	g.Go(func() error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
		return nil
	})
}
