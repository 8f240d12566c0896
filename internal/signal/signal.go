// Package signal standardizes payloads shared between data ingestion, strategy, and portfolio layers.
package signal

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Bar models one trading period of market data consumed by strategies and simulators.
type Bar struct {
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64 // 0 when the source carries no adjusted close
	Volume   float64
}

// AdjustedClose prefers the adjusted close and falls back to the raw close.
func (b Bar) AdjustedClose() float64 {
	if b.AdjClose != 0 {
		return b.AdjClose
	}
	return b.Close
}

// PriceSeries is an ascending, duplicate-free sequence of bars.
type PriceSeries []Bar

// Closes returns the close prices in series order.
func (p PriceSeries) Closes() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Close
	}
	return out
}

// Validate rejects out-of-order or duplicate timestamps and non-finite prices.
func (p PriceSeries) Validate() error {
	for i, b := range p {
		if !finite(b.Open) || !finite(b.Close) || !finite(b.Volume) {
			return fmt.Errorf("%w: non-finite price at %s", ErrNumeric, b.Time.Format(time.DateOnly))
		}
		if i > 0 && !b.Time.After(p[i-1].Time) {
			return fmt.Errorf("%w: bar %d at %s does not follow %s", ErrAlignment, i,
				b.Time.Format(time.DateOnly), p[i-1].Time.Format(time.DateOnly))
		}
	}
	return nil
}

// Signal expresses the directional bias for one period: 1 long, 0 flat, -1 short.
type Signal struct {
	Time  time.Time
	Value int
	Delta int // change from the previous period, the first one measured from flat

	// Crossover diagnostics; left invalid by strategies that do not compute them.
	ShortAvg NullFloat
	LongAvg  NullFloat
}

// SignalSeries is the output of a strategy, aligned one-to-one with the priced bars.
type SignalSeries struct {
	Strategy string
	Signals  []Signal
}

// Len returns the number of periods covered.
func (s SignalSeries) Len() int { return len(s.Signals) }

// Values returns the raw signal values.
func (s SignalSeries) Values() []int {
	out := make([]int, len(s.Signals))
	for i, sg := range s.Signals {
		out[i] = sg.Value
	}
	return out
}

// Deltas returns the position deltas, one per signal.
func (s SignalSeries) Deltas() []int {
	out := make([]int, len(s.Signals))
	for i, sg := range s.Signals {
		out[i] = sg.Delta
	}
	return out
}

// FillDeltas recomputes Delta as the first difference of Value from an implicit zero start.
func (s SignalSeries) FillDeltas() {
	prev := 0
	for i := range s.Signals {
		s.Signals[i].Delta = s.Signals[i].Value - prev
		prev = s.Signals[i].Value
	}
}

// CheckAligned verifies that the series covers exactly the supplied bars.
func (s SignalSeries) CheckAligned(bars PriceSeries) error {
	if len(s.Signals) != len(bars) {
		return fmt.Errorf("%w: %d signals for %d bars", ErrAlignment, len(s.Signals), len(bars))
	}
	for i := range bars {
		if !s.Signals[i].Time.Equal(bars[i].Time) {
			return fmt.Errorf("%w: signal %d at %s, bar at %s", ErrAlignment, i,
				s.Signals[i].Time.Format(time.DateOnly), bars[i].Time.Format(time.DateOnly))
		}
	}
	return nil
}

// NullFloat is a float64 that may be undefined, e.g. a rolling mean during warm-up.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps a defined value.
func Float(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

// MarshalJSON writes null for undefined values.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts a number or null.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Float64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
