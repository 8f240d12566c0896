package marketdata

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

// Generator emits deterministic random-walk bars (useful for tests/offline work).
type Generator struct {
	start      time.Time
	startPrice float64
	seed       uint64
	drift      float64
	volatility float64
}

// Option configures Generator construction parameters.
type Option func(*Generator)

const (
	defaultStartPrice = 100.0
	defaultVolatility = 0.01
)

// WithStart sets the first trading day.
func WithStart(t time.Time) Option {
	return func(g *Generator) {
		if !t.IsZero() {
			g.start = t
		}
	}
}

// WithStartPrice sets the opening price of the first bar.
func WithStartPrice(px float64) Option {
	return func(g *Generator) {
		if px > 0 {
			g.startPrice = px
		}
	}
}

// WithSeed makes two generators with the same seed produce the same bars.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithDrift sets the mean daily log return.
func WithDrift(mu float64) Option {
	return func(g *Generator) { g.drift = mu }
}

// WithVolatility sets the standard deviation of the daily log return.
func WithVolatility(sigma float64) Option {
	return func(g *Generator) {
		if sigma > 0 {
			g.volatility = sigma
		}
	}
}

// NewGenerator constructs a generator with sensible defaults.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		start:      time.Date(2004, 1, 2, 0, 0, 0, 0, time.UTC),
		startPrice: defaultStartPrice,
		volatility: defaultVolatility,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Bars returns n weekday bars. Each session opens on a small gap from the prior close.
func (g *Generator) Bars(n int) signal.PriceSeries {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	bars := make(signal.PriceSeries, 0, n)
	day := g.start
	px := g.startPrice
	for len(bars) < n {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			day = day.AddDate(0, 0, 1)
			continue
		}
		open := px * math.Exp(0.25*g.volatility*rng.NormFloat64())
		closePx := open * math.Exp(g.drift+g.volatility*rng.NormFloat64())
		hi := math.Max(open, closePx) * (1 + 0.5*g.volatility*math.Abs(rng.NormFloat64()))
		lo := math.Min(open, closePx) * (1 - 0.5*g.volatility*math.Abs(rng.NormFloat64()))
		bars = append(bars, signal.Bar{
			Time:   day,
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  closePx,
			Volume: math.Round(1e6 * (1 + 0.3*rng.Float64())),
		})
		px = closePx
		day = day.AddDate(0, 0, 1)
	}
	return bars
}
