// Package report condenses an equity curve into headline performance figures.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sztime001/trading-backtesting/internal/portfolio"
)

// TradingDays annualises daily Sharpe ratios.
const TradingDays = 252

// Summary holds the figures printed at the end of a run.
type Summary struct {
	Symbol          string
	Start           time.Time
	End             time.Time
	Periods         int
	InitialTotal    float64
	FinalTotal      float64
	TotalReturn     float64
	MeanReturn      float64
	StdReturn       float64
	Sharpe          float64
	MaxDrawdown     float64 // fraction below the running peak, <= 0
	PeriodsInMarket int
	Trades          int
}

// Summarize computes the summary of states. An empty curve yields a zero Summary.
func Summarize(states []portfolio.State) Summary {
	if len(states) == 0 {
		return Summary{}
	}
	first, last := states[0], states[len(states)-1]
	s := Summary{
		Symbol:       first.Symbol,
		Start:        first.Time,
		End:          last.Time,
		Periods:      len(states),
		InitialTotal: first.Total,
		FinalTotal:   last.Total,
	}
	if first.Total != 0 {
		s.TotalReturn = (last.Total - first.Total) / first.Total
	}

	returns := make([]float64, 0, len(states))
	drawdowns := make([]float64, len(states))
	peak := math.Inf(-1)
	for i, st := range states {
		if st.Return.Valid {
			returns = append(returns, st.Return.Float64)
		}
		peak = math.Max(peak, st.Total)
		if peak > 0 {
			drawdowns[i] = st.Total/peak - 1
		}
		if st.Position != 0 {
			s.PeriodsInMarket++
		}
		if i > 0 && st.Position != states[i-1].Position {
			s.Trades++
		}
	}
	s.MaxDrawdown = floats.Min(drawdowns)

	if len(returns) > 1 {
		s.MeanReturn, s.StdReturn = stat.MeanStdDev(returns, nil)
		if s.StdReturn > 0 {
			s.Sharpe = math.Sqrt(TradingDays) * s.MeanReturn / s.StdReturn
		}
	}
	return s
}

// Tail returns the last n states, or all of them when n exceeds the curve.
func Tail(states []portfolio.State, n int) []portfolio.State {
	if n <= 0 {
		return nil
	}
	if n > len(states) {
		n = len(states)
	}
	return states[len(states)-n:]
}

// WriteTail prints the last n totals of a curve, one dated row per period.
func WriteTail(w io.Writer, symbol string, states []portfolio.State, n int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tdate\ttotal\treturn\n", symbol)
	for _, st := range Tail(states, n) {
		ret := "NaN"
		if st.Return.Valid {
			ret = strconv.FormatFloat(st.Return.Float64, 'f', 6, 64)
		}
		fmt.Fprintf(tw, "\t%s\t%.2f\t%s\n", st.Time.Format(time.DateOnly), st.Total, ret)
	}
	return tw.Flush()
}
