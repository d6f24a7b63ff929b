package models

import "math"

// OrderStatus represents the current progress of an order. The allowed
// transitions between statuses live in internal/lifecycle; nothing else
// in the codebase may move an order between statuses.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Terminal reports whether the status has no outbound transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PaymentMethod and PaymentStatus are tracked fields only; there is no
// gateway reconciliation in this system.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order maps to the `orders` table. Monetary fields are frozen at
// creation time; Total is never recalculated afterwards.
type Order struct {
	ID           int64       `db:"id" json:"id"`
	OrderNumber  string      `db:"order_number" json:"order_number"`
	CustomerID   int64       `db:"customer_id" json:"customer_id"`
	RestaurantID int64       `db:"restaurant_id" json:"restaurant_id"`
	DriverID     *int64      `db:"driver_id" json:"driver_id,omitempty"`
	Items        []OrderItem `db:"-" json:"items,omitempty"`

	Subtotal    float64 `db:"subtotal" json:"subtotal"`
	DeliveryFee float64 `db:"delivery_fee" json:"delivery_fee"`
	Tax         float64 `db:"tax" json:"tax"`
	Discount    float64 `db:"discount" json:"discount"`
	Total       float64 `db:"total" json:"total"`

	Status        OrderStatus   `db:"status" json:"status"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`

	DeliveryAddress string  `db:"delivery_address" json:"delivery_address"`
	ScheduledFor    *string `db:"scheduled_for" json:"scheduled_for,omitempty"`
	Notes           string  `db:"notes" json:"notes,omitempty"`

	CreatedAt          string  `db:"created_at" json:"created_at"`
	ActualDeliveryTime *string `db:"actual_delivery_time" json:"actual_delivery_time,omitempty"`
}

// OrderItem is a line-item snapshot owned by its order. Name and
// UnitPrice are copied from the menu item at creation so later menu
// edits do not retroactively alter historical orders.
type OrderItem struct {
	ID             int64           `db:"id" json:"id"`
	OrderID        int64           `db:"order_id" json:"order_id"`
	MenuItemID     int64           `db:"menu_item_id" json:"menu_item_id"`
	Name           string          `db:"name" json:"name"`
	UnitPrice      float64         `db:"unit_price" json:"unit_price"`
	Quantity       int64           `db:"quantity" json:"quantity"`
	Subtotal       float64         `db:"subtotal" json:"subtotal"`
	Customizations []Customization `db:"-" json:"customizations,omitempty"`
}

// Customization is a frozen option selected on an order item.
type Customization struct {
	ID            int64   `db:"id" json:"id"`
	OrderItemID   int64   `db:"order_item_id" json:"order_item_id"`
	Name          string  `db:"name" json:"name"`
	PriceModifier float64 `db:"price_modifier" json:"price_modifier"`
}

// Round2 rounds a monetary amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotal derives the order total from its components. Called
// exactly once, when the order is created.
func ComputeTotal(subtotal, deliveryFee, tax, discount float64) float64 {
	return Round2(subtotal + deliveryFee + tax - discount)
}
