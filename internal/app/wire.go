package app

import (
	"context"
	"fmt"
	"log/slog"

	cacheredis "github.com/avelov/arbscan/internal/cache/redis"
	"github.com/avelov/arbscan/internal/config"
	"github.com/avelov/arbscan/internal/domain"
	"github.com/avelov/arbscan/internal/notify"
	"github.com/avelov/arbscan/internal/store/postgres"
)

// Dependencies bundles the infrastructure the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
// One-shot scan mode runs without Redis and Postgres, so every field here
// may be nil; consumers treat a nil dependency as "skip".
type Dependencies struct {
	ScanStore   domain.ScanStore
	SymbolCache domain.SymbolCache
	ResultCache domain.ResultCache
	Notifier    *notify.Notifier
}

// needsInfra returns true for modes that dial Redis and Postgres.
func needsInfra(mode string) bool {
	switch mode {
	case "daemon", "server":
		return true
	default:
		return false
	}
}

// Wire constructs the concrete dependency implementations from the given
// configuration and returns them with a cleanup function to be called on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	if needsInfra(cfg.Mode) {
		// --- PostgreSQL ---
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire postgres migrations: %w", err)
			}
		}
		deps.ScanStore = postgres.NewScanStore(pgClient.Pool())

		// --- Redis ---
		redisClient, err := cacheredis.New(ctx, cacheredis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.SymbolCache = cacheredis.NewSymbolCache(redisClient, cfg.Scan.SymbolTTL.Duration)
		deps.ResultCache = cacheredis.NewResultCache(redisClient)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
