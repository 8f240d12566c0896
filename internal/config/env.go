package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ApplyEnv loads envFile (when present) into the process environment and lets BACKTEST_*
// variables override the YAML values.
func ApplyEnv(cfg *Config, envFile string) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	setString(&cfg.App.LogLevel, "BACKTEST_LOG_LEVEL")
	setString(&cfg.App.MetricsAddr, "BACKTEST_METRICS_ADDR")
	setString(&cfg.Data.Source, "BACKTEST_DATA_SOURCE")
	setString(&cfg.Data.Path, "BACKTEST_DATA_PATH")
	setString(&cfg.Data.HistoryPath, "BACKTEST_HISTORY_PATH")
	setString(&cfg.Output.StatesPath, "BACKTEST_STATES_PATH")

	if v := os.Getenv("BACKTEST_SYMBOLS"); v != "" {
		cfg.Data.Symbols = cfg.Data.Symbols[:0]
		for _, sym := range strings.Split(v, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				cfg.Data.Symbols = append(cfg.Data.Symbols, sym)
			}
		}
	}
	if v := os.Getenv("BACKTEST_INITIAL_CAPITAL"); v != "" {
		capital, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BACKTEST_INITIAL_CAPITAL: %w", err)
		}
		cfg.Portfolio.InitialCapital = capital
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
