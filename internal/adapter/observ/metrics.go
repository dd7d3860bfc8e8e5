package observ

import (
	"github.com/duality-2/SilkRoad/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromMetrics records storefront counters. Pass prometheus.DefaultRegisterer
// to expose them on /metrics.
type PromMetrics struct {
	cartMutations   *prometheus.CounterVec
	ordersConfirmed prometheus.Counter
	orderValue      prometheus.Counter
	payments        *prometheus.CounterVec
	trackingLookups *prometheus.CounterVec
	saveFailures    prometheus.Counter
}

func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	f := promauto.With(reg)
	return &PromMetrics{
		cartMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "silkroad_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"op"}),
		ordersConfirmed: f.NewCounter(prometheus.CounterOpts{
			Name: "silkroad_orders_confirmed_total",
			Help: "Checkouts that reached the confirmed stage",
		}),
		orderValue: f.NewCounter(prometheus.CounterOpts{
			Name: "silkroad_order_value_rupees_total",
			Help: "Sum of confirmed order totals in rupees",
		}),
		payments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "silkroad_payments_total",
			Help: "Simulated payments by result",
		}, []string{"result"}),
		trackingLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "silkroad_tracking_lookups_total",
			Help: "Shipment tracking lookups by reported status",
		}, []string{"status"}),
		saveFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "silkroad_snapshot_save_failures_total",
			Help: "Snapshot writes that failed and were skipped",
		}),
	}
}

func (m *PromMetrics) CartMutated(op string) { m.cartMutations.WithLabelValues(op).Inc() }

func (m *PromMetrics) OrderConfirmed(total int64) {
	m.ordersConfirmed.Inc()
	// counters panic on negative deltas
	if total > 0 {
		m.orderValue.Add(float64(total))
	}
}

func (m *PromMetrics) PaymentProcessed(result string) { m.payments.WithLabelValues(result).Inc() }

func (m *PromMetrics) TrackingLookup(status string) {
	m.trackingLookups.WithLabelValues(status).Inc()
}

// key is not used as a label to keep cardinality bounded.
func (m *PromMetrics) SnapshotSaveFailed(string) { m.saveFailures.Inc() }

var _ usecase.Metrics = (*PromMetrics)(nil)
