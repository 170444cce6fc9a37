package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "repl" }, "unknown mode"},
		{"unknown exchange", func(c *Config) { c.Exchanges = []string{"nasdaq"} }, "unknown exchange"},
		{"no exchanges", func(c *Config) { c.Exchanges = nil }, "at least one exchange"},
		{"no anchors", func(c *Config) { c.Arbitrage.Anchors = nil }, "anchor"},
		{"zero start amount", func(c *Config) { c.Arbitrage.StartAmount = 0 }, "start_amount"},
		{"min trades too low", func(c *Config) { c.Arbitrage.MinTrades = 1 }, "min_trades"},
		{"depth below trades", func(c *Config) { c.Arbitrage.MaxDepth = 1 }, "max_depth"},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }, "server: port"},
		{"empty redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis: addr"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Defaults()
			c.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestValidateSkipsInfraInScanMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "scan"
	cfg.Redis.Addr = ""
	cfg.Postgres.Host = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("scan mode must not require redis/postgres: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
mode = "scan"
exchanges = ["Binance", "KuCoin"]

[arbitrage]
anchors = ["USDT"]
max_depth = 3
market_timeout = "90s"

[scan]
interval = "2m"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "scan" {
		t.Fatalf("mode = %q, want scan", cfg.Mode)
	}
	if len(cfg.Exchanges) != 2 {
		t.Fatalf("exchanges = %v", cfg.Exchanges)
	}
	if cfg.Arbitrage.MaxDepth != 3 {
		t.Fatalf("max_depth = %d, want 3", cfg.Arbitrage.MaxDepth)
	}
	if cfg.Arbitrage.MarketTimeout.Duration != 90*time.Second {
		t.Fatalf("market_timeout = %s, want 90s", cfg.Arbitrage.MarketTimeout.Duration)
	}
	if cfg.Scan.Interval.Duration != 2*time.Minute {
		t.Fatalf("interval = %s, want 2m", cfg.Scan.Interval.Duration)
	}
	// Untouched sections keep their defaults.
	if cfg.Arbitrage.StartAmount != 100 {
		t.Fatalf("start_amount = %v, want default 100", cfg.Arbitrage.StartAmount)
	}
}

func TestLoadToleratesMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if cfg.Mode != "daemon" {
		t.Fatalf("mode = %q, want default daemon", cfg.Mode)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("ARBSCAN_MODE", "server")
	t.Setenv("ARBSCAN_EXCHANGES", "Binance, HTX")
	t.Setenv("ARBSCAN_ARBITRAGE_MAX_DEPTH", "4")
	t.Setenv("ARBSCAN_ARBITRAGE_MIN_PROFIT_PERCENT", "-0.25")
	t.Setenv("ARBSCAN_SCAN_INTERVAL", "30s")
	t.Setenv("ARBSCAN_REDIS_PASSWORD", "hunter2")
	t.Setenv("ARBSCAN_POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "server" {
		t.Fatalf("mode = %q, want env override", cfg.Mode)
	}
	if len(cfg.Exchanges) != 2 || cfg.Exchanges[1] != "HTX" {
		t.Fatalf("exchanges = %v, want trimmed comma split", cfg.Exchanges)
	}
	if cfg.Arbitrage.MaxDepth != 4 {
		t.Fatalf("max_depth = %d, want 4", cfg.Arbitrage.MaxDepth)
	}
	if cfg.Arbitrage.MinProfitPercent != -0.25 {
		t.Fatalf("min_profit_percent = %v, want -0.25", cfg.Arbitrage.MinProfitPercent)
	}
	if cfg.Scan.Interval.Duration != 30*time.Second {
		t.Fatalf("interval = %s, want 30s", cfg.Scan.Interval.Duration)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Fatal("redis password override not applied")
	}
	if cfg.Postgres.RunMigrations {
		t.Fatal("bool env override not applied")
	}
}

func TestDurationRoundTrip(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("1h30m")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 90*time.Minute {
		t.Fatalf("parsed %s, want 1h30m", d.Duration)
	}
	out, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(out) != "1h30m0s" {
		t.Fatalf("marshaled %q", out)
	}
}
