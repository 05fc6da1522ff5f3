package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	CandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_total", Help: "Candles closed per symbol and timeframe"},
		[]string{"symbol", "timeframe"},
	)
	GapCandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gap_candles_total", Help: "Synthetic flat candles inserted for silent intervals"},
		[]string{"symbol", "timeframe"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fills_total", Help: "Entry fills confirmed"},
		[]string{"symbol"},
	)
	StatusPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "status_polls_total", Help: "Order status poll attempts"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, CandlesTotal, GapCandlesTotal, OrdersTotal, FillsTotal, StatusPollsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
