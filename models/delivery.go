package models

// DeliveryStatus is a separate state machine from OrderStatus. A
// delivery is terminal at delivered or cancelled.
type DeliveryStatus string

const (
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

// Terminal reports whether the status has no outbound transitions.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusCancelled
}

// Delivery maps to the `deliveries` table, one-to-one with an order
// once a driver has been assigned.
type Delivery struct {
	ID           int64          `db:"id" json:"id"`
	OrderID      int64          `db:"order_id" json:"order_id"`
	DriverID     int64          `db:"driver_id" json:"driver_id"`
	Status       DeliveryStatus `db:"status" json:"status"`
	DriverFee    float64        `db:"driver_fee" json:"driver_fee"`
	PickupTime   *string        `db:"pickup_time" json:"pickup_time,omitempty"`
	DeliveryTime *string        `db:"delivery_time" json:"delivery_time,omitempty"`
	CreatedAt    string         `db:"created_at" json:"created_at"`
}
