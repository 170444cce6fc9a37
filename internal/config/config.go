// Package config defines the top-level configuration for the arbscan scanner
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ARBSCAN_* environment
// variables.
type Config struct {
	Exchanges []string        `toml:"exchanges"`
	Arbitrage ArbitrageConfig `toml:"arbitrage"`
	Scan      ScanConfig      `toml:"scan"`
	Redis     RedisConfig     `toml:"redis"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// ArbitrageConfig holds the cycle-search and ranking parameters.
type ArbitrageConfig struct {
	// Anchors are the currencies a cycle must start and end at.
	Anchors []string `toml:"anchors"`
	// StartAmount is the notional injected at each anchor.
	StartAmount float64 `toml:"start_amount"`
	// MinTrades is the minimum number of hops to close a cycle.
	MinTrades int `toml:"min_trades"`
	// MaxDepth is the maximum number of hops explored.
	MaxDepth int `toml:"max_depth"`
	// MinProfitPercent is the qualifying threshold; negative values allow
	// near-breakeven visibility.
	MinProfitPercent float64 `toml:"min_profit_percent"`
	// MarketTimeout is the hard deadline per market task.
	MarketTimeout duration `toml:"market_timeout"`
	// PerMarketTop caps each market's top-N view.
	PerMarketTop int `toml:"per_market_top"`
	// GlobalTop caps the merged top-N view.
	GlobalTop int `toml:"global_top"`
}

// ScanConfig holds scheduling and venue-access parameters.
type ScanConfig struct {
	// Interval between scans in daemon mode.
	Interval duration `toml:"interval"`
	// RequestTimeout for individual venue HTTP requests.
	RequestTimeout duration `toml:"request_timeout"`
	// SymbolTTL is how long venue symbol listings stay cached.
	SymbolTTL duration `toml:"symbol_ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Exchanges: []string{"MEXC", "Binance", "KuCoin", "Bybit", "HTX"},
		Arbitrage: ArbitrageConfig{
			Anchors:          []string{"USDT", "USDC"},
			StartAmount:      100.0,
			MinTrades:        2,
			MaxDepth:         2,
			MinProfitPercent: -0.5,
			MarketTimeout:    duration{120 * time.Second},
			PerMarketTop:     50,
			GlobalTop:        100,
		},
		Scan: ScanConfig{
			Interval:       duration{5 * time.Minute},
			RequestTimeout: duration{10 * time.Second},
			SymbolTTL:      duration{time.Hour},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "arbscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Notify: NotifyConfig{
			Events: []string{"scan_complete", "profitable_found", "error"},
		},
		Mode:     "daemon",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"daemon": true,
	"server": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// knownExchanges enumerates the venues the exchange registry can build.
var knownExchanges = map[string]bool{
	"mexc":    true,
	"binance": true,
	"kucoin":  true,
	"bybit":   true,
	"htx":     true,
	"huobi":   true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, daemon, server)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if len(c.Exchanges) == 0 {
		errs = append(errs, "exchanges: at least one exchange must be enabled")
	}
	for _, ex := range c.Exchanges {
		if !knownExchanges[strings.ToLower(ex)] {
			errs = append(errs, fmt.Sprintf("exchanges: unknown exchange %q", ex))
		}
	}

	if len(c.Arbitrage.Anchors) == 0 {
		errs = append(errs, "arbitrage: at least one anchor currency is required")
	}
	if c.Arbitrage.StartAmount <= 0 {
		errs = append(errs, "arbitrage: start_amount must be > 0")
	}
	if c.Arbitrage.MinTrades < 2 {
		errs = append(errs, "arbitrage: min_trades must be >= 2")
	}
	if c.Arbitrage.MaxDepth < c.Arbitrage.MinTrades {
		errs = append(errs, "arbitrage: max_depth must be >= min_trades")
	}
	if c.Arbitrage.MarketTimeout.Duration <= 0 {
		errs = append(errs, "arbitrage: market_timeout must be > 0")
	}
	if c.Arbitrage.PerMarketTop < 1 {
		errs = append(errs, "arbitrage: per_market_top must be >= 1")
	}
	if c.Arbitrage.GlobalTop < 1 {
		errs = append(errs, "arbitrage: global_top must be >= 1")
	}

	if c.Scan.Interval.Duration <= 0 {
		errs = append(errs, "scan: interval must be > 0")
	}
	if c.Scan.RequestTimeout.Duration <= 0 {
		errs = append(errs, "scan: request_timeout must be > 0")
	}

	// Redis and Postgres are only dialed in daemon/server modes.
	if c.Mode == "daemon" || c.Mode == "server" {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
