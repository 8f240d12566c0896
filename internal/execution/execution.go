// Package execution turns position deltas into order events and routes them to a blotter.
package execution

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/sztime001/trading-backtesting/internal/metrics"
	"github.com/sztime001/trading-backtesting/internal/signal"
)

// Side enumerates order directions used by the executor.
type Side string

const (
	// Buy indicates shares bought.
	Buy Side = "BUY"
	// Sell indicates shares sold.
	Sell Side = "SELL"
)

// MarketOrder is the only order type a backtest emits.
const MarketOrder = "MKT"

// Order is a placement request derived from one position change.
type Order struct {
	Time   time.Time
	Symbol string
	Type   string
	Side   Side
	Qty    float64
}

// OrdersFromSignals emits one market order per non-zero delta, sized by shares per signal unit.
func OrdersFromSignals(symbol string, series signal.SignalSeries, shares float64) []Order {
	var orders []Order
	for _, sg := range series.Signals {
		if sg.Delta == 0 {
			continue
		}
		side := Buy
		if sg.Delta < 0 {
			side = Sell
		}
		orders = append(orders, Order{
			Time:   sg.Time,
			Symbol: symbol,
			Type:   MarketOrder,
			Side:   side,
			Qty:    math.Abs(float64(sg.Delta)) * shares,
		})
	}
	return orders
}

// Executor records orders to the log; it never reaches a venue.
type Executor struct{ log zerolog.Logger }

// NewExecutor wraps a zerolog logger for order submissions.
func NewExecutor(log zerolog.Logger) *Executor { return &Executor{log: log} }

// Submit logs the order and counts it.
func (executor *Executor) Submit(order Order) error {
	metrics.OrdersTotal.WithLabelValues(order.Symbol, string(order.Side)).Inc()
	executor.log.Info().
		Time("at", order.Time).
		Str("sym", order.Symbol).
		Str("type", order.Type).
		Str("side", string(order.Side)).
		Float64("qty", order.Qty).
		Msg("submit order")
	return nil
}

// SubmitAll submits every order in sequence, stopping at the first failure.
func (executor *Executor) SubmitAll(orders []Order) error {
	for _, order := range orders {
		if err := executor.Submit(order); err != nil {
			return err
		}
	}
	return nil
}
