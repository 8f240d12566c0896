// Package metrics exposes prometheus collectors for backtest runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BacktestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtests_total", Help: "Backtest runs by outcome"},
		[]string{"strategy", "portfolio", "outcome"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signal periods generated"},
		[]string{"symbol", "strategy"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	FinalEquity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "final_equity", Help: "Last total of the most recent equity curve"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(BacktestsTotal, SignalsTotal, OrdersTotal, FinalEquity)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
