package portfolio

import (
	"errors"
	"testing"
	"time"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

func day(i int) time.Time {
	return time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func barsFrom(opens, closes []float64) signal.PriceSeries {
	bars := make(signal.PriceSeries, len(closes))
	for i := range closes {
		bars[i] = signal.Bar{Time: day(i), Open: opens[i], Close: closes[i], Volume: 1}
	}
	return bars
}

func signalsFrom(values ...int) signal.SignalSeries {
	series := signal.SignalSeries{Strategy: "fixed", Signals: make([]signal.Signal, len(values))}
	for i, v := range values {
		series.Signals[i] = signal.Signal{Time: day(i), Value: v}
	}
	series.FillDeltas()
	return series
}

func TestAllFlatSignalsKeepCapital(t *testing.T) {
	bars := barsFrom([]float64{10, 11, 9, 12, 10, 13, 8}, []float64{11, 9, 12, 10, 13, 8, 9})
	flat := signalsFrom(0, 0, 0, 0, 0, 0, 0)

	for _, mode := range []string{ModeClose, ModeIntraday} {
		sim, err := Build(mode, Params{})
		if err != nil {
			t.Fatalf("Build(%s) returned error: %v", mode, err)
		}
		states, err := sim.Simulate("SPY", bars, flat, 100000)
		if err != nil {
			t.Fatalf("%s: Simulate returned error: %v", mode, err)
		}
		for i, s := range states {
			if s.Total != 100000 {
				t.Fatalf("%s: total[%d] = %.2f, want 100000", mode, i, s.Total)
			}
			if i == 0 && s.Return.Valid {
				t.Fatalf("%s: first return should be undefined", mode)
			}
			if i > 0 && (!s.Return.Valid || s.Return.Float64 != 0) {
				t.Fatalf("%s: return[%d] = %+v, want 0", mode, i, s.Return)
			}
		}
	}
}

func TestSimulatorsRejectMisalignedInput(t *testing.T) {
	bars := barsFrom([]float64{1, 1, 1}, []float64{1, 1, 1})
	short := signalsFrom(0, 1)
	shifted := signalsFrom(0, 1, 1)
	shifted.Signals[2].Time = day(5)

	for _, mode := range []string{ModeClose, ModeIntraday} {
		sim, _ := Build(mode, Params{})
		if _, err := sim.Simulate("X", bars, short, 1000); !errors.Is(err, signal.ErrAlignment) {
			t.Fatalf("%s: expected alignment error for length mismatch, got %v", mode, err)
		}
		if _, err := sim.Simulate("X", bars, shifted, 1000); !errors.Is(err, signal.ErrAlignment) {
			t.Fatalf("%s: expected alignment error for timestamp mismatch, got %v", mode, err)
		}
		if _, err := sim.Simulate("X", bars, signalsFrom(0, 0, 0), 0); !errors.Is(err, signal.ErrConfiguration) {
			t.Fatalf("%s: expected configuration error for zero capital, got %v", mode, err)
		}
	}
}

func TestSimulatorsEmptyInput(t *testing.T) {
	for _, mode := range []string{ModeClose, ModeIntraday} {
		sim, _ := Build(mode, Params{})
		states, err := sim.Simulate("X", nil, signal.SignalSeries{}, 1000)
		if err != nil || len(states) != 0 {
			t.Fatalf("%s: expected empty result, got %d states, err %v", mode, len(states), err)
		}
	}
}

func TestBuildRejectsUnknownMode(t *testing.T) {
	if _, err := Build("margin", Params{}); !errors.Is(err, signal.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := Build(ModeIntraday, Params{Shares: -1}); !errors.Is(err, signal.ErrConfiguration) {
		t.Fatalf("expected configuration error for negative shares, got %v", err)
	}
}
