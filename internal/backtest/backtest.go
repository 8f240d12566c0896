// Package backtest wires data, strategy, simulator, and reporting into one pipeline.
package backtest

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sztime001/trading-backtesting/internal/config"
	"github.com/sztime001/trading-backtesting/internal/execution"
	"github.com/sztime001/trading-backtesting/internal/metrics"
	"github.com/sztime001/trading-backtesting/internal/portfolio"
	"github.com/sztime001/trading-backtesting/internal/report"
	"github.com/sztime001/trading-backtesting/internal/signal"
	"github.com/sztime001/trading-backtesting/internal/strategy"
)

// Job is one independent run: the bars to trade and the history a strategy may fit on.
type Job struct {
	Symbol  string
	Bars    signal.PriceSeries
	History signal.PriceSeries
}

// Result is everything a finished run produced.
type Result struct {
	Symbol  string
	Signals signal.SignalSeries
	States  []portfolio.State
	Orders  []execution.Order
	Summary report.Summary
}

// Runner executes jobs under one configuration.
type Runner struct {
	cfg      *config.Config
	log      zerolog.Logger
	executor *execution.Executor
	recorders []portfolio.StateRecorder
}

// Option configures Runner construction parameters.
type Option func(*Runner)

// WithRecorder sends every state of every run to rec. Recorders are called in the order given.
func WithRecorder(rec portfolio.StateRecorder) Option {
	return func(r *Runner) { r.recorders = append(r.recorders, rec) }
}

// NewRunner validates cfg and returns a runner logging through log.
func NewRunner(cfg *config.Config, log zerolog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", signal.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, log: log, executor: execution.NewExecutor(log)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// StrategyParams maps the YAML strategy block onto constructor parameters.
func StrategyParams(cfg *config.Config) strategy.Params {
	p := cfg.Strategy.Params
	return strategy.Params{
		ShortWindow: p.ShortWindow,
		LongWindow:  p.LongWindow,
		Periods: strategy.Periods{
			TrainStart: p.TrainStart.Time,
			TestStart:  p.TestStart.Time,
			End:        p.End.Time,
		},
		Forecast: strategy.ForecastParams{
			Lags:            p.Lags,
			Nudge:           p.Nudge,
			Warmup:          p.Warmup,
			PredictionShift: p.PredictionShift,
		},
	}
}

// Run generates signals for job, simulates the portfolio, and emits orders and a summary.
func (r *Runner) Run(ctx context.Context, job Job) (Result, error) {
	mode := strings.ToLower(r.cfg.Strategy.Mode)
	pmode := strings.ToLower(r.cfg.Portfolio.Mode)
	res, err := r.run(ctx, job)
	if err != nil {
		metrics.BacktestsTotal.WithLabelValues(mode, pmode, "error").Inc()
		return Result{}, fmt.Errorf("backtest %s: %w", job.Symbol, err)
	}
	metrics.BacktestsTotal.WithLabelValues(mode, pmode, "ok").Inc()
	return res, nil
}

func (r *Runner) run(ctx context.Context, job Job) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	historySymbol := r.cfg.Data.HistorySym
	if historySymbol == "" {
		historySymbol = job.Symbol
	}
	strat, err := strategy.Build(r.cfg.Strategy.Mode, historySymbol, job.History, StrategyParams(r.cfg))
	if err != nil {
		return Result{}, err
	}
	sim, err := portfolio.Build(r.cfg.Portfolio.Mode, portfolio.Params{
		Shares: r.cfg.Portfolio.Shares,
		Warmup: r.cfg.Portfolio.Warmup,
	})
	if err != nil {
		return Result{}, err
	}

	signals, err := strat.Generate(job.Bars)
	if err != nil {
		return Result{}, fmt.Errorf("generate signals: %w", err)
	}
	metrics.SignalsTotal.WithLabelValues(job.Symbol, strat.Name()).Add(float64(signals.Len()))

	states, err := sim.Simulate(job.Symbol, job.Bars, signals, r.cfg.Portfolio.InitialCapital)
	if err != nil {
		return Result{}, fmt.Errorf("simulate %s: %w", sim.Name(), err)
	}

	orders := execution.OrdersFromSignals(job.Symbol, signals, sim.Shares())
	if err := r.executor.SubmitAll(orders); err != nil {
		return Result{}, fmt.Errorf("submit orders: %w", err)
	}

	for _, rec := range r.recorders {
		for _, st := range states {
			if err := rec.Record(st); err != nil {
				return Result{}, fmt.Errorf("record state: %w", err)
			}
		}
	}

	summary := report.Summarize(states)
	summary.Symbol = job.Symbol
	metrics.FinalEquity.WithLabelValues(job.Symbol).Set(summary.FinalTotal)
	r.log.Info().
		Str("sym", job.Symbol).
		Str("strategy", strat.Name()).
		Str("portfolio", sim.Name()).
		Int("periods", summary.Periods).
		Int("orders", len(orders)).
		Float64("final_total", summary.FinalTotal).
		Float64("total_return", summary.TotalReturn).
		Float64("sharpe", summary.Sharpe).
		Float64("max_drawdown", summary.MaxDrawdown).
		Msg("backtest complete")

	return Result{Symbol: job.Symbol, Signals: signals, States: states, Orders: orders, Summary: summary}, nil
}

// RunSymbols runs independent jobs concurrently; results keep the order of jobs. The first
// failure cancels the remaining runs.
func (r *Runner) RunSymbols(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := r.Run(gctx, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
