// Package portfolio replays a signal series against prices and produces the equity curve.
package portfolio

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

// State is one period of a simulated portfolio.
type State struct {
	Time      time.Time        `json:"time"`
	Symbol    string           `json:"symbol"`
	Position  float64          `json:"position"`
	Holdings  float64          `json:"holdings"`
	Cash      float64          `json:"cash"`
	PriceDiff float64          `json:"price_diff"`
	Profit    float64          `json:"profit"`
	Total     float64          `json:"total"`
	Return    signal.NullFloat `json:"return"`
}

// Simulator converts signals and prices into a sequence of portfolio states.
type Simulator interface {
	Simulate(symbol string, bars signal.PriceSeries, signals signal.SignalSeries, initialCapital float64) ([]State, error)
	Shares() float64
	Name() string
}

const (
	// ModeClose selects the close-to-close simulator.
	ModeClose = "market_on_close"
	// ModeIntraday selects the open-to-close simulator.
	ModeIntraday = "intraday"
)

// Params groups simulator knobs. Zero Shares and a nil Warmup take the simulator defaults.
type Params struct {
	Shares int
	Warmup *int
}

// Build returns the simulator matching mode.
func Build(mode string, params Params) (Simulator, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeClose, "close", "close_to_close":
		return NewMarketOnClose(params.Shares)
	case ModeIntraday, "market_intraday":
		warmup := DefaultIntradayWarmup
		if params.Warmup != nil {
			warmup = *params.Warmup
		}
		return NewMarketIntraday(params.Shares, warmup)
	default:
		return nil, fmt.Errorf("%w: unknown portfolio mode %q", signal.ErrConfiguration, mode)
	}
}

// checkInputs runs before any arithmetic so a run either completes or fails outright.
func checkInputs(bars signal.PriceSeries, signals signal.SignalSeries, initialCapital float64) error {
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) || initialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive, got %v", signal.ErrConfiguration, initialCapital)
	}
	if err := bars.Validate(); err != nil {
		return err
	}
	return signals.CheckAligned(bars)
}

// fillReturns sets the period-over-period percentage change of Total.
func fillReturns(states []State) error {
	for i := range states {
		if math.IsNaN(states[i].Total) || math.IsInf(states[i].Total, 0) {
			return fmt.Errorf("%w: total is not finite on %s", signal.ErrNumeric, states[i].Time.Format(time.DateOnly))
		}
		if i == 0 {
			continue
		}
		prev := states[i-1].Total
		if prev == 0 {
			return fmt.Errorf("%w: return on %s divides by a zero total", signal.ErrNumeric, states[i].Time.Format(time.DateOnly))
		}
		states[i].Return = signal.Float((states[i].Total - prev) / prev)
	}
	return nil
}
