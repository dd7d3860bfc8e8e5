package observ

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPromMetrics(reg)

	m.CartMutated("add")
	m.CartMutated("add")
	m.CartMutated("remove")
	m.OrderConfirmed(240)
	m.OrderConfirmed(900)
	m.PaymentProcessed("approved")
	m.PaymentProcessed("declined")
	m.TrackingLookup("in-transit")
	m.SnapshotSaveFailed("silkroad:s1:cart")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("remove")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersConfirmed))
	assert.Equal(t, 1140.0, testutil.ToFloat64(m.orderValue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues("declined")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trackingLookups.WithLabelValues("in-transit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saveFailures))

	n, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestOrderConfirmed_IgnoresNegativeValue(t *testing.T) {
	m := NewPromMetrics(prometheus.NewRegistry())

	assert.NotPanics(t, func() { m.OrderConfirmed(-446744073709551616) })
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersConfirmed))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.orderValue))
}
