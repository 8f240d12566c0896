package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sztime001/trading-backtesting/internal/backtest"
	"github.com/sztime001/trading-backtesting/internal/config"
	"github.com/sztime001/trading-backtesting/internal/execution"
	"github.com/sztime001/trading-backtesting/internal/marketdata"
	"github.com/sztime001/trading-backtesting/internal/portfolio"
	"github.com/sztime001/trading-backtesting/internal/report"
	"github.com/sztime001/trading-backtesting/internal/strategy"
)

func TestCrossoverFlowProducesOrders(t *testing.T) {
	bars := marketdata.NewGenerator(marketdata.WithSeed(3), marketdata.WithDrift(0.001)).Bars(250)

	strat, err := strategy.NewMovingAverageCross(5, 20)
	if err != nil {
		t.Fatalf("NewMovingAverageCross returned error: %v", err)
	}
	signals, err := strat.Generate(bars)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	sim, err := portfolio.NewMarketOnClose(0)
	if err != nil {
		t.Fatalf("NewMarketOnClose returned error: %v", err)
	}
	states, err := sim.Simulate("SYN", bars, signals, 100000)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}

	var buf bytes.Buffer
	exec := execution.NewExecutor(zerolog.New(&buf))
	orders := execution.OrdersFromSignals("SYN", signals, sim.Shares())
	if len(orders) == 0 {
		t.Fatalf("expected at least one crossover order")
	}
	if err := exec.SubmitAll(orders); err != nil {
		t.Fatalf("SubmitAll returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "submit order") {
		t.Fatalf("expected log output to include submit order, got %s", buf.String())
	}

	summary := report.Summarize(states)
	if summary.Trades != len(orders) {
		t.Fatalf("summary counted %d trades, executor saw %d orders", summary.Trades, len(orders))
	}
	if summary.FinalTotal <= 0 {
		t.Fatalf("expected positive final equity, got %v", summary.FinalTotal)
	}
}

func TestConfiguredRunWritesStates(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := config.Load(filepath.Join("..", "config", "testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg.Data.Source = backtest.SourceSynthetic
	cfg.Data.Symbols = []string{"SYN"}
	cfg.Strategy.Mode = strategy.ModeMovingAverage
	cfg.Portfolio.Mode = portfolio.ModeClose
	cfg.Output.StatesPath = filepath.Join(t.TempDir(), "states.jsonl")

	rec, err := portfolio.NewJSONLRecorder(cfg.Output.StatesPath)
	if err != nil {
		t.Fatalf("NewJSONLRecorder returned error: %v", err)
	}
	runner, err := backtest.NewRunner(cfg, zerolog.Nop(), backtest.WithRecorder(rec))
	if err != nil {
		t.Fatalf("NewRunner returned error: %v", err)
	}
	jobs, err := backtest.LoadJobs(cfg)
	if err != nil {
		t.Fatalf("LoadJobs returned error: %v", err)
	}
	results, err := runner.RunSymbols(ctx, jobs)
	if err != nil {
		t.Fatalf("RunSymbols returned error: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if len(results) != 1 || len(results[0].States) != cfg.Data.Synthetic.Bars {
		t.Fatalf("unexpected results")
	}
	tail := report.Tail(results[0].States, cfg.Output.TailRows)
	if len(tail) != cfg.Output.TailRows {
		t.Fatalf("expected %d tail rows, got %d", cfg.Output.TailRows, len(tail))
	}
}
