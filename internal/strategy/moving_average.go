package strategy

import (
	"fmt"

	"github.com/sztime001/trading-backtesting/internal/indicators"
	"github.com/sztime001/trading-backtesting/internal/signal"
)

// MovingAverageCross goes long while the short rolling mean of closes sits above the long one.
type MovingAverageCross struct {
	short int
	long  int
}

// NewMovingAverageCross validates the window pair; short must be strictly below long.
func NewMovingAverageCross(short, long int) (*MovingAverageCross, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("%w: moving average windows must be positive (short=%d long=%d)", signal.ErrConfiguration, short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("%w: short window %d must be below long window %d", signal.ErrConfiguration, short, long)
	}
	return &MovingAverageCross{short: short, long: long}, nil
}

// Name returns the identifier for logging.
func (m *MovingAverageCross) Name() string {
	return fmt.Sprintf("MovingAverageCross(%d,%d)", m.short, m.long)
}

// Generate emits 1 when the short mean exceeds the long mean and 0 otherwise. The first
// short-window periods are held flat, and so is any period whose long mean is still undefined.
func (m *MovingAverageCross) Generate(bars signal.PriceSeries) (signal.SignalSeries, error) {
	out := signal.SignalSeries{Strategy: m.Name(), Signals: make([]signal.Signal, len(bars))}
	if len(bars) == 0 {
		return out, nil
	}
	if err := bars.Validate(); err != nil {
		return signal.SignalSeries{}, err
	}

	closes := bars.Closes()
	shortAvg := indicators.RollingMean(closes, m.short)
	longAvg := indicators.RollingMean(closes, m.long)

	for i, b := range bars {
		sg := signal.Signal{Time: b.Time, ShortAvg: shortAvg[i], LongAvg: longAvg[i]}
		if i >= m.short && shortAvg[i].Valid && longAvg[i].Valid && shortAvg[i].Float64 > longAvg[i].Float64 {
			sg.Value = 1
		}
		out.Signals[i] = sg
	}
	out.FillDeltas()
	return out, nil
}
