// Package strategy turns price series into signal series.
package strategy

import (
	"fmt"
	"strings"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

// Strategy is the capability shared by signal generators.
type Strategy interface {
	Generate(bars signal.PriceSeries) (signal.SignalSeries, error)
	Name() string
}

const (
	// ModeMovingAverage selects the moving-average crossover.
	ModeMovingAverage = "ma_cross"
	// ModeForecast selects the QDA direction forecaster.
	ModeForecast = "forecast"
)

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	ShortWindow int
	LongWindow  int
	Periods     Periods
	Forecast    ForecastParams
}

// Build returns a strategy implementation matching the configured mode. The forecaster is fitted
// on history during construction; the crossover ignores it.
func Build(mode, symbol string, history signal.PriceSeries, params Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeMovingAverage, "ma", "moving_average":
		return NewMovingAverageCross(params.ShortWindow, params.LongWindow)
	case ModeForecast, "qda", "forecasting":
		return NewForecaster(symbol, history, params.Periods, params.Forecast)
	default:
		return nil, fmt.Errorf("%w: unknown strategy mode %q", signal.ErrConfiguration, mode)
	}
}
