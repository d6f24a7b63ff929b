package events

import (
	"context"
	"encoding/json"
	"testing"

	"foodMarketplace/models"
)

func TestRoutingKey(t *testing.T) {
	e := OrderEvent{ToStatus: models.OrderStatusConfirmed}
	if got, want := e.RoutingKey(), "orders.status.confirmed"; got != want {
		t.Errorf("routing key = %q, want %q", got, want)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.PublishOrderEvent(context.Background(), OrderEvent{OrderID: 1}); err != nil {
		t.Errorf("nop publish: %v", err)
	}
}

func TestOrderEventJSON(t *testing.T) {
	e := OrderEvent{
		OrderID:     7,
		OrderNumber: "ORD-AB12CD34",
		ToStatus:    models.OrderStatusPending,
		Total:       36.37,
		OccurredAt:  "2025-06-15T12:00:00Z",
	}
	body, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["to_status"] != "pending" || m["order_number"] != "ORD-AB12CD34" {
		t.Errorf("payload = %s", body)
	}
	// a creation event has no from status
	if _, present := m["from_status"]; present {
		t.Error("from_status should be omitted when empty")
	}
}
