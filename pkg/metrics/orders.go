package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle and restock outcomes.
type OrderMetrics struct {
	created       prometheus.Counter
	transitions   *prometheus.CounterVec
	stockWarnings prometheus.Counter
	restockLines  *prometheus.CounterVec
	lowStockItems prometheus.Gauge
}

// NewOrderMetrics registers the order metrics on the provided registerer. A nil registerer
// yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Customer orders created.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transitions by source and target status.",
		}, []string{"from", "to"}),
		stockWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_stock_warnings_total",
			Help:      "Order lines accepted against insufficient stock.",
		}),
		restockLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restock_lines_total",
			Help:      "Provider order lines written by the restock planner.",
		}, []string{"mode"}),
		lowStockItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_items",
			Help:      "Low-stock items seen by the most recent restock scan.",
		}),
	}
	reg.MustRegister(m.created, m.transitions, m.stockWarnings, m.restockLines, m.lowStockItems)
	return m
}

// IncCreated records a committed order creation.
func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncTransition records a committed status change.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// AddStockWarnings records lines accepted against insufficient stock.
func (m *OrderMetrics) AddStockWarnings(n int) {
	if m == nil || m.stockWarnings == nil || n <= 0 {
		return
	}
	m.stockWarnings.Add(float64(n))
}

// AddRestockLines records planner output; mode is "created" or "appended".
func (m *OrderMetrics) AddRestockLines(mode string, n int) {
	if m == nil || m.restockLines == nil || n <= 0 {
		return
	}
	m.restockLines.WithLabelValues(normalizeLabel(mode)).Add(float64(n))
}

// SetLowStockItems records the size of the latest low-stock scan.
func (m *OrderMetrics) SetLowStockItems(n int) {
	if m == nil || m.lowStockItems == nil {
		return
	}
	m.lowStockItems.Set(float64(n))
}
