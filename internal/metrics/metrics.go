package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	SalesCompleted  *prometheus.CounterVec
	SaleGrandTotal  *prometheus.HistogramVec
	OrdersPlaced    prometheus.Counter
	IDAllocations   *prometheus.CounterVec
	TxRetries       prometheus.Counter
	EventsPublished *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petpos_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "petpos_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		SalesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petpos_sales_completed_total",
				Help: "Completed POS sales",
			},
			[]string{"branch_id", "payment_method"},
		),
		SaleGrandTotal: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "petpos_sale_grand_total",
				Help:    "Grand total of completed sales",
				Buckets: []float64{0, 100, 250, 500, 1000, 2500, 5000, 10000, 25000},
			},
			[]string{"branch_id"},
		),
		OrdersPlaced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "petpos_online_orders_placed_total",
				Help: "Online orders placed on the storefront",
			},
		),
		IDAllocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petpos_id_allocations_total",
				Help: "ID allocation attempts per collection, including retried transactions",
			},
			[]string{"collection"},
		),
		TxRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "petpos_store_tx_retries_total",
				Help: "Document store transactions re-run after a write conflict",
			},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petpos_events_published_total",
				Help: "Domain events handed to the broker",
			},
			[]string{"event_type", "result"},
		),
	}

	reg.MustRegister(
		m.RequestCounter,
		m.RequestLatency,
		m.SalesCompleted,
		m.SaleGrandTotal,
		m.OrdersPlaced,
		m.IDAllocations,
		m.TxRetries,
		m.EventsPublished,
	)
	return m
}

// ObserveAllocation counts one id allocation for collection.
func (m *Metrics) ObserveAllocation(collection string) {
	m.IDAllocations.WithLabelValues(collection).Inc()
}

// ObserveTxRetry counts one transaction retry.
func (m *Metrics) ObserveTxRetry(int) {
	m.TxRetries.Inc()
}

// ObserveSale records a completed sale.
func (m *Metrics) ObserveSale(branchID int64, paymentMethod string, grandTotal float64) {
	branch := strconv.FormatInt(branchID, 10)
	m.SalesCompleted.WithLabelValues(branch, paymentMethod).Inc()
	m.SaleGrandTotal.WithLabelValues(branch).Observe(grandTotal)
}

// ObserveEvent records the outcome of publishing an event.
func (m *Metrics) ObserveEvent(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

// ObserveOrder counts a placed storefront order.
func (m *Metrics) ObserveOrder() {
	m.OrdersPlaced.Inc()
}
