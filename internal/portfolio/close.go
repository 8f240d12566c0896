package portfolio

import (
	"fmt"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

// DefaultCloseShares is the share count bought per unit of signal at the close.
const DefaultCloseShares = 100

// MarketOnClose trades at each close: a position change is paid for out of cash at that close.
type MarketOnClose struct {
	shares float64
}

// NewMarketOnClose fixes the per-signal share count for every run.
func NewMarketOnClose(shares int) (*MarketOnClose, error) {
	if shares < 0 {
		return nil, fmt.Errorf("%w: negative share count %d", signal.ErrConfiguration, shares)
	}
	if shares == 0 {
		shares = DefaultCloseShares
	}
	return &MarketOnClose{shares: float64(shares)}, nil
}

// Name returns the identifier for logging.
func (m *MarketOnClose) Name() string { return "MarketOnClose" }

// Shares returns the per-signal share count.
func (m *MarketOnClose) Shares() float64 { return m.shares }

// Simulate marks holdings at each close. The opening position is not charged to cash; cash
// moves with every later position change, so total[0] is capital plus the first holdings.
func (m *MarketOnClose) Simulate(symbol string, bars signal.PriceSeries, signals signal.SignalSeries, initialCapital float64) ([]State, error) {
	if err := checkInputs(bars, signals, initialCapital); err != nil {
		return nil, err
	}

	states := make([]State, len(bars))
	cash := initialCapital
	var prevPosition float64
	for i, b := range bars {
		position := float64(signals.Signals[i].Value) * m.shares
		if i > 0 {
			cash -= (position - prevPosition) * b.Close
		}
		holdings := position * b.Close
		states[i] = State{
			Time:     b.Time,
			Symbol:   symbol,
			Position: position,
			Holdings: holdings,
			Cash:     cash,
			Total:    cash + holdings,
		}
		prevPosition = position
	}
	if err := fillReturns(states); err != nil {
		return nil, err
	}
	return states, nil
}
