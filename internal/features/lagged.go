// Package features derives lagged-return tables used by the forecasting strategy.
package features

import (
	"math"
	"time"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

const (
	// DefaultLags is the number of prior-period returns kept per row.
	DefaultLags = 5
	// DefaultNudge replaces near-zero returns before the sign is taken so no zero class appears.
	DefaultNudge = 0.0001
)

// Row is one period of the lagged-return table. Returns are percent changes (x100).
type Row struct {
	Time      time.Time
	Volume    float64
	Today     signal.NullFloat
	Lags      []signal.NullFloat // Lags[k] is the return k+1 periods prior
	Direction int                // sign of Today, 0 while Today is undefined
}

// Lag returns the k-th lag (1-based).
func (r Row) Lag(k int) signal.NullFloat {
	if k < 1 || k > len(r.Lags) {
		return signal.NullFloat{}
	}
	return r.Lags[k-1]
}

// Params tunes LaggedSeries.
type Params struct {
	Lags  int
	Nudge float64
}

// LaggedSeries builds the feature table from adjusted closes. Rows before start are dropped
// after the lags are computed, so history ahead of start only feeds the lag columns.
func LaggedSeries(bars signal.PriceSeries, start time.Time, params Params) []Row {
	if params.Lags <= 0 {
		params.Lags = DefaultLags
	}
	if params.Nudge <= 0 {
		params.Nudge = DefaultNudge
	}

	raw := make([]signal.NullFloat, len(bars))
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].AdjustedClose()
		if prev == 0 {
			continue
		}
		raw[i] = signal.Float((bars[i].AdjustedClose()/prev - 1) * 100)
	}

	rows := make([]Row, 0, len(bars))
	for i, b := range bars {
		if b.Time.Before(start) {
			continue
		}
		row := Row{Time: b.Time, Volume: b.Volume, Today: raw[i], Lags: make([]signal.NullFloat, params.Lags)}
		if row.Today.Valid && math.Abs(row.Today.Float64) < params.Nudge {
			row.Today.Float64 = params.Nudge
		}
		if row.Today.Valid {
			row.Direction = 1
			if row.Today.Float64 < 0 {
				row.Direction = -1
			}
		}
		for k := 1; k <= params.Lags; k++ {
			if i-k >= 0 {
				row.Lags[k-1] = raw[i-k]
			}
		}
		rows = append(rows, row)
	}
	return rows
}
