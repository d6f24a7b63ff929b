// Package metrics exposes Prometheus collectors for the order and
// delivery workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"foodMarketplace/models"
)

// Metrics bundles every collector the services record into. A single
// instance is shared; all methods are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated       prometheus.Counter
	orderTransitions    *prometheus.CounterVec
	deliveriesCompleted prometheus.Counter
	authDenials         *prometheus.CounterVec
	orderTotals         prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.ordersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_created_total",
		Help: "Orders successfully created.",
	})
	m.orderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_order_transitions_total",
		Help: "Applied order status transitions.",
	}, []string{"from", "to"})
	m.deliveriesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_deliveries_completed_total",
		Help: "Deliveries that reached the delivered status.",
	})
	m.authDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_authorization_denials_total",
		Help: "Guard denials by action.",
	}, []string{"action"})
	m.orderTotals = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "marketplace_order_total_amount",
		Help:    "Distribution of order totals at creation.",
		Buckets: prometheus.ExponentialBuckets(5, 2, 8),
	})

	m.registry.MustRegister(m.ordersCreated, m.orderTransitions,
		m.deliveriesCompleted, m.authDenials, m.orderTotals)
	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OrderCreated(total float64) {
	m.ordersCreated.Inc()
	m.orderTotals.Observe(total)
}

func (m *Metrics) OrderTransition(from, to models.OrderStatus) {
	m.orderTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) DeliveryCompleted() {
	m.deliveriesCompleted.Inc()
}

func (m *Metrics) AuthDenied(action string) {
	m.authDenials.WithLabelValues(action).Inc()
}
