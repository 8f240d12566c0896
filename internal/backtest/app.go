package backtest

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/sztime001/trading-backtesting/internal/config"
	"github.com/sztime001/trading-backtesting/internal/portfolio"
	"github.com/sztime001/trading-backtesting/internal/report"
)

// Execute runs every configured symbol, appends states to Output.StatesPath when set, and
// prints the tail of each equity curve to out. opts add further recorders.
func Execute(ctx context.Context, cfg *config.Config, log zerolog.Logger, out io.Writer, opts ...Option) ([]Result, error) {
	if path := cfg.Output.StatesPath; path != "" {
		rec, err := portfolio.NewJSONLRecorder(path)
		if err != nil {
			return nil, fmt.Errorf("open states file: %w", err)
		}
		defer rec.Close()
		opts = append(opts[:len(opts):len(opts)], WithRecorder(rec))
	}

	runner, err := NewRunner(cfg, log, opts...)
	if err != nil {
		return nil, err
	}
	jobs, err := LoadJobs(cfg)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	results, err := runner.RunSymbols(ctx, jobs)
	if err != nil {
		return nil, err
	}

	rows := cfg.Output.TailRows
	if rows <= 0 {
		rows = 10
	}
	for _, res := range results {
		if err := report.WriteTail(out, res.Symbol, res.States, rows); err != nil {
			return nil, err
		}
	}
	return results, nil
}
