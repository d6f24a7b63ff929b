package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"foodMarketplace/models"
)

func TestCounters(t *testing.T) {
	m := New()

	m.OrderCreated(36.37)
	m.OrderCreated(12.00)
	m.OrderTransition(models.OrderStatusPending, models.OrderStatusConfirmed)
	m.DeliveryCompleted()
	m.AuthDenied("order.manage")

	if got := testutil.ToFloat64(m.ordersCreated); got != 2 {
		t.Errorf("orders created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.orderTransitions.WithLabelValues("pending", "confirmed")); got != 1 {
		t.Errorf("transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.deliveriesCompleted); got != 1 {
		t.Errorf("deliveries completed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.authDenials.WithLabelValues("order.manage")); got != 1 {
		t.Errorf("auth denials = %v, want 1", got)
	}
}

func TestRegistryGathers(t *testing.T) {
	m := New()
	m.OrderCreated(20)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("no metric families registered")
	}
}
