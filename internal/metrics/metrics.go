// Package metrics registers Prometheus metrics for the simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the trading simulator.
type Metrics struct {
	OrdersTotal   *prometheus.CounterVec // labels: side, result
	SignalsTotal  *prometheus.CounterVec // labels: action
	LTPFetchDur   prometheus.Histogram
	LTPFetchFails prometheus.Counter
	CashBalance   prometheus.Gauge
	OpenPositions prometheus.Gauge
}

// New registers and returns all simulator metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradesim_orders_total",
			Help: "Simulated orders by side and outcome",
		}, []string{"side", "result"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradesim_signals_total",
			Help: "Strategy signals emitted by action",
		}, []string{"action"}),
		LTPFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradesim_ltp_fetch_duration_seconds",
			Help:    "Market data LTP fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		LTPFetchFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_ltp_fetch_failures_total",
			Help: "Failed LTP fetches",
		}),
		CashBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradesim_cash_balance_rupees",
			Help: "Current simulated cash balance",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradesim_open_positions",
			Help: "Number of open positions",
		}),
	}

	reg.MustRegister(
		m.OrdersTotal,
		m.SignalsTotal,
		m.LTPFetchDur,
		m.LTPFetchFails,
		m.CashBalance,
		m.OpenPositions,
	)
	return m
}

// ObserveOrder records an order outcome. Nil-safe so the engine can run
// without metrics in tests.
func (m *Metrics) ObserveOrder(side, result string) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(side, result).Inc()
}

// ObserveSignal records an emitted strategy signal.
func (m *Metrics) ObserveSignal(action string) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(action).Inc()
}

// ObserveLTPFetch records one price fetch.
func (m *Metrics) ObserveLTPFetch(seconds float64, ok bool) {
	if m == nil {
		return
	}
	m.LTPFetchDur.Observe(seconds)
	if !ok {
		m.LTPFetchFails.Inc()
	}
}

// SetLedgerState updates the balance and position gauges.
func (m *Metrics) SetLedgerState(cash float64, openPositions int) {
	if m == nil {
		return
	}
	m.CashBalance.Set(cash)
	m.OpenPositions.Set(float64(openPositions))
}
