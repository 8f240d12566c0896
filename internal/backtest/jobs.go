package backtest

import (
	"fmt"
	"strings"

	"github.com/sztime001/trading-backtesting/internal/config"
	"github.com/sztime001/trading-backtesting/internal/marketdata"
	"github.com/sztime001/trading-backtesting/internal/signal"
	"github.com/sztime001/trading-backtesting/internal/strategy"
)

const (
	// SourceCSV reads bars from Data.Path with {symbol} substituted.
	SourceCSV = "csv"
	// SourceSynthetic generates seeded random-walk bars.
	SourceSynthetic = "synthetic"
)

// LoadJobs builds one job per configured symbol. For the forecaster the traded bars are cut to
// the test period and the history comes from the configured history symbol.
func LoadJobs(cfg *config.Config) ([]Job, error) {
	forecast := isForecast(cfg.Strategy.Mode)
	p := cfg.Strategy.Params

	jobs := make([]Job, 0, len(cfg.Data.Symbols))
	for i, sym := range cfg.Data.Symbols {
		bars, err := loadBars(cfg, sym, cfg.Data.Path, uint64(i))
		if err != nil {
			return nil, err
		}
		job := Job{Symbol: sym, Bars: bars}
		if forecast {
			job.History = bars
			if hs := cfg.Data.HistorySym; hs != "" && hs != sym && source(cfg) == SourceCSV {
				path := cfg.Data.HistoryPath
				if path == "" {
					path = cfg.Data.Path
				}
				if job.History, err = loadBars(cfg, hs, path, 0); err != nil {
					return nil, err
				}
			}
			job.Bars = marketdata.Between(bars, p.TestStart.Time, p.End.Time)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func loadBars(cfg *config.Config, symbol, pathTemplate string, offset uint64) (signal.PriceSeries, error) {
	switch source(cfg) {
	case SourceSynthetic:
		syn := cfg.Data.Synthetic
		n := syn.Bars
		if n <= 0 {
			n = 500
		}
		gen := marketdata.NewGenerator(
			marketdata.WithSeed(syn.Seed+offset),
			marketdata.WithStart(syn.Start.Time),
			marketdata.WithStartPrice(syn.StartPrice),
			marketdata.WithDrift(syn.Drift),
			marketdata.WithVolatility(syn.Volatility),
		)
		return gen.Bars(n), nil
	case SourceCSV:
		if pathTemplate == "" {
			return nil, fmt.Errorf("%w: data.path is required for csv source", signal.ErrConfiguration)
		}
		return marketdata.LoadCSV(symbolPath(pathTemplate, symbol))
	default:
		return nil, fmt.Errorf("%w: unknown data source %q", signal.ErrConfiguration, cfg.Data.Source)
	}
}

func source(cfg *config.Config) string {
	s := strings.ToLower(strings.TrimSpace(cfg.Data.Source))
	if s == "" {
		return SourceCSV
	}
	return s
}

// symbolPath fills {symbol}; index symbols such as ^GSPC lose the caret in file names.
func symbolPath(template, symbol string) string {
	return strings.ReplaceAll(template, "{symbol}", strings.TrimPrefix(symbol, "^"))
}

func isForecast(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case strategy.ModeForecast, "qda", "forecasting":
		return true
	}
	return false
}
