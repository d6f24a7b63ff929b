// Package lifecycle validates status transitions for orders and
// deliveries. It is pure: no I/O, no authorization. Callers must check
// the authorization guard before applying a transition and must persist
// the result with a conditional write keyed on the old status.
package lifecycle

import (
	"time"

	"foodMarketplace/internal/apperr"
	"foodMarketplace/models"
)

// orderEdges is the allowed edge set for Order.Status. Cancelled is
// additionally reachable from every non-terminal state.
var orderEdges = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusPending:        models.OrderStatusConfirmed,
	models.OrderStatusConfirmed:      models.OrderStatusPreparing,
	models.OrderStatusPreparing:      models.OrderStatusReadyForPickup,
	models.OrderStatusReadyForPickup: models.OrderStatusOutForDelivery,
	models.OrderStatusOutForDelivery: models.OrderStatusDelivered,
}

// ErrOnlyPending is returned by Accept and Reject for any starting
// status other than pending.
var ErrOnlyPending = &apperr.Error{
	Code:    apperr.CodeInvalidTransition,
	Message: "only pending orders can be accepted or rejected",
}

// ErrCannotCancel is returned by Cancel once the order is out for
// delivery or delivered.
var ErrCannotCancel = &apperr.Error{
	Code:    apperr.CodeInvalidTransition,
	Message: "cannot cancel an order that is out for delivery or delivered",
}

// ValidOrderStatus reports whether s is a defined order status.
func ValidOrderStatus(s models.OrderStatus) bool {
	switch s {
	case models.OrderStatusPending, models.OrderStatusConfirmed,
		models.OrderStatusPreparing, models.OrderStatusReadyForPickup,
		models.OrderStatusOutForDelivery, models.OrderStatusDelivered,
		models.OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionOrder reports whether (from, to) is an allowed edge.
func CanTransitionOrder(from, to models.OrderStatus) bool {
	if to == models.OrderStatusCancelled {
		return !from.Terminal()
	}
	return orderEdges[from] == to
}

// TransitionOrder applies the requested status to the order in memory,
// stamping ActualDeliveryTime when the order reaches delivered. It
// fails with an invalid-transition error on any disallowed pair,
// including re-entering a terminal state.
func TransitionOrder(o *models.Order, to models.OrderStatus, now time.Time) error {
	if !ValidOrderStatus(to) {
		return apperr.Validation("unknown order status %q", string(to))
	}
	if !CanTransitionOrder(o.Status, to) {
		return apperr.InvalidTransition(string(o.Status), string(to))
	}
	o.Status = to
	if to == models.OrderStatusDelivered {
		ts := now.UTC().Format(TimeFormat)
		o.ActualDeliveryTime = &ts
	}
	return nil
}

// AcceptOrder moves a pending order to confirmed.
func AcceptOrder(o *models.Order, now time.Time) error {
	if o.Status != models.OrderStatusPending {
		return ErrOnlyPending
	}
	return TransitionOrder(o, models.OrderStatusConfirmed, now)
}

// RejectOrder moves a pending order to cancelled.
func RejectOrder(o *models.Order, now time.Time) error {
	if o.Status != models.OrderStatusPending {
		return ErrOnlyPending
	}
	return TransitionOrder(o, models.OrderStatusCancelled, now)
}

// CanCancelOrder reports whether a customer-side cancellation is still
// permitted. Cancellation closes at preparing; an in-flight or
// delivered order can never be cancelled.
func CanCancelOrder(status models.OrderStatus) bool {
	return status == models.OrderStatusPending || status == models.OrderStatusConfirmed
}

// CancelOrder cancels an order that is still pending or confirmed.
func CancelOrder(o *models.Order, now time.Time) error {
	if !CanCancelOrder(o.Status) {
		return ErrCannotCancel
	}
	return TransitionOrder(o, models.OrderStatusCancelled, now)
}

// DriverMayRequest reports whether an assigned driver is permitted to
// request the (from, to) order transition. Drivers only move orders out
// the door and to the customer.
func DriverMayRequest(from, to models.OrderStatus) bool {
	switch {
	case from == models.OrderStatusReadyForPickup && to == models.OrderStatusOutForDelivery:
		return true
	case from == models.OrderStatusOutForDelivery && to == models.OrderStatusDelivered:
		return true
	}
	return false
}

// TimeFormat is the timestamp layout used across the SQLite store.
const TimeFormat = "2006-01-02 15:04:05"
