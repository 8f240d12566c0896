package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/sztime001/trading-backtesting/internal/backtest"
	"github.com/sztime001/trading-backtesting/internal/config"
	"github.com/sztime001/trading-backtesting/internal/metrics"
	"github.com/sztime001/trading-backtesting/internal/portfolio"
	"github.com/sztime001/trading-backtesting/internal/strategy"
	"github.com/sztime001/trading-backtesting/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to the YAML config")
	flag.Parse()

	boot := util.NewLogger("info")
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if err := config.ApplyEnv(cfg, ".env"); err != nil {
		boot.Fatal().Err(err).Msg("apply env")
	}
	cfg.Strategy.Mode = strategy.ModeMovingAverage
	cfg.Portfolio.Mode = portfolio.ModeClose

	log := util.NewLogger(cfg.App.LogLevel)
	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Strs("symbols", cfg.Data.Symbols).
		Int("short", cfg.Strategy.Params.ShortWindow).
		Int("long", cfg.Strategy.Params.LongWindow).
		Msg("moving average crossover started")
	if _, err := backtest.Execute(ctx, cfg, log, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}
}
