package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sztime001/trading-backtesting/internal/portfolio"
	"github.com/sztime001/trading-backtesting/internal/signal"
)

func curve(totals []float64, positions []float64) []portfolio.State {
	start := time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)
	states := make([]portfolio.State, len(totals))
	for i, total := range totals {
		states[i] = portfolio.State{Time: start.AddDate(0, 0, i), Symbol: "SPY", Total: total, Position: positions[i]}
		if i > 0 {
			states[i].Return = signal.Float(total/totals[i-1] - 1)
		}
	}
	return states
}

func TestSummarize(t *testing.T) {
	states := curve([]float64{100, 110, 99, 121}, []float64{0, 500, 500, -500})
	s := Summarize(states)

	if s.Periods != 4 || s.Symbol != "SPY" {
		t.Fatalf("unexpected header %+v", s)
	}
	if math.Abs(s.TotalReturn-0.21) > 1e-12 {
		t.Fatalf("total return = %v, want 0.21", s.TotalReturn)
	}
	if math.Abs(s.MaxDrawdown-(-0.1)) > 1e-12 {
		t.Fatalf("max drawdown = %v, want -0.1", s.MaxDrawdown)
	}
	if s.PeriodsInMarket != 3 || s.Trades != 2 {
		t.Fatalf("unexpected activity: in market %d, trades %d", s.PeriodsInMarket, s.Trades)
	}
	if s.StdReturn <= 0 || s.Sharpe == 0 {
		t.Fatalf("expected non-zero dispersion, got std %v sharpe %v", s.StdReturn, s.Sharpe)
	}
}

func TestSummarizeFlatCurve(t *testing.T) {
	s := Summarize(curve([]float64{100, 100, 100}, []float64{0, 0, 0}))
	if s.TotalReturn != 0 || s.MaxDrawdown != 0 || s.Sharpe != 0 {
		t.Fatalf("flat curve should have zero figures: %+v", s)
	}
	if (Summarize(nil) != Summary{}) {
		t.Fatalf("empty curve should give zero summary")
	}
}

func TestTail(t *testing.T) {
	states := curve([]float64{1, 2, 3, 4}, []float64{0, 0, 0, 0})
	if got := Tail(states, 2); len(got) != 2 || got[0].Total != 3 {
		t.Fatalf("unexpected tail %+v", got)
	}
	if got := Tail(states, 10); len(got) != 4 {
		t.Fatalf("expected whole curve, got %d", len(got))
	}
	if Tail(states, 0) != nil {
		t.Fatalf("expected nil for n=0")
	}
}

func TestWriteTail(t *testing.T) {
	states := curve([]float64{100, 110, 99, 121}, []float64{0, 500, 500, -500})
	var buf bytes.Buffer
	if err := WriteTail(&buf, "SPY", states, 2); err != nil {
		t.Fatalf("WriteTail returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %q", buf.String())
	}
	if !strings.Contains(lines[2], "2017-01-05") || !strings.Contains(lines[2], "121.00") {
		t.Fatalf("unexpected last row %q", lines[2])
	}
	buf.Reset()
	if err := WriteTail(&buf, "SPY", states[:1], 5); err != nil {
		t.Fatalf("WriteTail returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "NaN") {
		t.Fatalf("first period return should print as NaN, got %q", buf.String())
	}
}
