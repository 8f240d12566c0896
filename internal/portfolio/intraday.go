package portfolio

import (
	"fmt"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

const (
	// DefaultIntradayShares is the share count traded per unit of signal each session.
	DefaultIntradayShares = 500
	// DefaultIntradayWarmup is the number of leading sessions whose spread is ignored.
	DefaultIntradayWarmup = 5
)

// MarketIntraday enters at the open and exits at the close of every session, long or short.
// Overnight gaps are never held.
type MarketIntraday struct {
	shares float64
	warmup int
}

// NewMarketIntraday fixes the per-signal share count and warm-up length for every run.
// Zero shares select DefaultIntradayShares; a zero warm-up trades from the first session.
func NewMarketIntraday(shares, warmup int) (*MarketIntraday, error) {
	if shares < 0 || warmup < 0 {
		return nil, fmt.Errorf("%w: shares (%d) and warm-up (%d) must not be negative", signal.ErrConfiguration, shares, warmup)
	}
	if shares == 0 {
		shares = DefaultIntradayShares
	}
	return &MarketIntraday{shares: float64(shares), warmup: warmup}, nil
}

// Name returns the identifier for logging.
func (m *MarketIntraday) Name() string { return "MarketIntraday" }

// Shares returns the per-signal share count.
func (m *MarketIntraday) Shares() float64 { return m.shares }

// Simulate accumulates position times the open-to-close spread on top of the initial capital.
// The spread of the warm-up sessions is zeroed regardless of the signal.
func (m *MarketIntraday) Simulate(symbol string, bars signal.PriceSeries, signals signal.SignalSeries, initialCapital float64) ([]State, error) {
	if err := checkInputs(bars, signals, initialCapital); err != nil {
		return nil, err
	}

	states := make([]State, len(bars))
	total := initialCapital
	for i, b := range bars {
		position := float64(signals.Signals[i].Value) * m.shares
		diff := b.Close - b.Open
		if i < m.warmup {
			diff = 0
		}
		profit := position * diff
		total += profit
		states[i] = State{
			Time:      b.Time,
			Symbol:    symbol,
			Position:  position,
			PriceDiff: diff,
			Profit:    profit,
			Total:     total,
		}
	}
	if err := fillReturns(states); err != nil {
		return nil, err
	}
	return states, nil
}
