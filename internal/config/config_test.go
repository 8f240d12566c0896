package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "backtest-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.MetricsAddr != ":9108" {
		t.Fatalf("unexpected App.MetricsAddr: %s", cfg.App.MetricsAddr)
	}
	if len(cfg.Data.Symbols) != 1 || cfg.Data.Symbols[0] != "AAPL" {
		t.Fatalf("expected AAPL symbol, got %+v", cfg.Data.Symbols)
	}
	if cfg.Data.HistorySym != "^GSPC" {
		t.Fatalf("unexpected history symbol: %s", cfg.Data.HistorySym)
	}
	if cfg.Data.Synthetic.Seed != 7 || cfg.Data.Synthetic.Bars != 300 || cfg.Data.Synthetic.Volatility != 0.02 {
		t.Fatalf("unexpected synthetic settings: %+v", cfg.Data.Synthetic)
	}
	if cfg.Strategy.Params.ShortWindow != 100 || cfg.Strategy.Params.LongWindow != 200 {
		t.Fatalf("unexpected windows: %d/%d", cfg.Strategy.Params.ShortWindow, cfg.Strategy.Params.LongWindow)
	}
	if cfg.Strategy.Params.Nudge != 0.0001 {
		t.Fatalf("unexpected nudge: %v", cfg.Strategy.Params.Nudge)
	}
	if cfg.Strategy.Params.PredictionShift != 1 {
		t.Fatalf("unexpected prediction shift: %d", cfg.Strategy.Params.PredictionShift)
	}
	wantTest := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.Strategy.Params.TestStart.Equal(wantTest) {
		t.Fatalf("unexpected test start: %s", cfg.Strategy.Params.TestStart)
	}
	if cfg.Portfolio.InitialCapital != 100000 || cfg.Portfolio.Shares != 100 {
		t.Fatalf("unexpected portfolio: %+v", cfg.Portfolio)
	}
	if w := cfg.Portfolio.Warmup; w == nil || *w != 0 {
		t.Fatalf("explicit zero portfolio warm-up should load as 0, got %v", w)
	}
	if w := cfg.Strategy.Params.Warmup; w == nil || *w != 5 {
		t.Fatalf("unexpected strategy warm-up: %v", w)
	}
	if cfg.Output.TailRows != 10 {
		t.Fatalf("unexpected tail rows: %d", cfg.Output.TailRows)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg.Strategy.Params.End = Date{}
	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if !reloaded.Strategy.Params.TrainStart.Equal(cfg.Strategy.Params.TrainStart.Time) {
		t.Fatalf("train start lost in round trip: %s", reloaded.Strategy.Params.TrainStart)
	}
	if w := reloaded.Portfolio.Warmup; w == nil || *w != 0 {
		t.Fatalf("zero warm-up lost in round trip: %v", w)
	}
	if !reloaded.Strategy.Params.End.IsZero() {
		t.Fatalf("expected empty end date, got %s", reloaded.Strategy.Params.End)
	}
}

func TestValidateRejectsBadParameters(t *testing.T) {
	cases := map[string]func(*Config){
		"windows":   func(c *Config) { c.Strategy.Params.ShortWindow = 300 },
		"capital":   func(c *Config) { c.Portfolio.InitialCapital = 0 },
		"symbols":   func(c *Config) { c.Data.Symbols = nil },
		"mode":      func(c *Config) { c.Strategy.Mode = "martingale" },
		"test date": func(c *Config) { c.Strategy.Mode = "forecast"; c.Strategy.Params.TestStart = Date{} },
		"warmup":    func(c *Config) { w := -1; c.Portfolio.Warmup = &w },
		"lead-in":   func(c *Config) { w := -2; c.Strategy.Params.Warmup = &w },
	}
	for name, mutate := range cases {
		cfg, err := Load(filepath.Join("testdata", "config.yaml"))
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, signal.ErrConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("BACKTEST_LOG_LEVEL=warn\nBACKTEST_SYMBOLS=SPY, QQQ\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("BACKTEST_LOG_LEVEL")
		os.Unsetenv("BACKTEST_SYMBOLS")
	})
	t.Setenv("BACKTEST_INITIAL_CAPITAL", "25000")

	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := ApplyEnv(cfg, envFile); err != nil {
		t.Fatalf("ApplyEnv returned error: %v", err)
	}
	if cfg.App.LogLevel != "warn" {
		t.Fatalf("expected log level from env file, got %s", cfg.App.LogLevel)
	}
	if len(cfg.Data.Symbols) != 2 || cfg.Data.Symbols[1] != "QQQ" {
		t.Fatalf("unexpected symbols %v", cfg.Data.Symbols)
	}
	if cfg.Portfolio.InitialCapital != 25000 {
		t.Fatalf("expected capital override, got %.2f", cfg.Portfolio.InitialCapital)
	}

	if err := ApplyEnv(cfg, filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should be ignored, got %v", err)
	}
}

func TestApplyEnvBadCapital(t *testing.T) {
	t.Setenv("BACKTEST_INITIAL_CAPITAL", "lots")
	if err := ApplyEnv(&Config{}, ""); err == nil {
		t.Fatalf("expected parse error")
	}
}
