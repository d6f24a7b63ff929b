package lifecycle

import (
	"time"

	"foodMarketplace/internal/apperr"
	"foodMarketplace/models"
)

// deliveryEdges is the forward path for Delivery.Status. Cancellation
// is handled separately: a delivery may be cancelled from assigned or
// picked_up only.
var deliveryEdges = map[models.DeliveryStatus]models.DeliveryStatus{
	models.DeliveryStatusAssigned:  models.DeliveryStatusPickedUp,
	models.DeliveryStatusPickedUp:  models.DeliveryStatusInTransit,
	models.DeliveryStatusInTransit: models.DeliveryStatusDelivered,
}

// ValidDeliveryStatus reports whether s is a defined delivery status.
func ValidDeliveryStatus(s models.DeliveryStatus) bool {
	switch s {
	case models.DeliveryStatusAssigned, models.DeliveryStatusPickedUp,
		models.DeliveryStatusInTransit, models.DeliveryStatusDelivered,
		models.DeliveryStatusCancelled:
		return true
	}
	return false
}

// CanTransitionDelivery reports whether (from, to) is an allowed edge.
func CanTransitionDelivery(from, to models.DeliveryStatus) bool {
	if to == models.DeliveryStatusCancelled {
		return from == models.DeliveryStatusAssigned || from == models.DeliveryStatusPickedUp
	}
	return deliveryEdges[from] == to
}

// TransitionDelivery applies the requested status to the delivery in
// memory, stamping PickupTime on picked_up and DeliveryTime on
// delivered.
func TransitionDelivery(d *models.Delivery, to models.DeliveryStatus, now time.Time) error {
	if !ValidDeliveryStatus(to) {
		return apperr.Validation("unknown delivery status %q", string(to))
	}
	if !CanTransitionDelivery(d.Status, to) {
		return apperr.InvalidTransition(string(d.Status), string(to))
	}
	d.Status = to
	ts := now.UTC().Format(TimeFormat)
	switch to {
	case models.DeliveryStatusPickedUp:
		d.PickupTime = &ts
	case models.DeliveryStatusDelivered:
		d.DeliveryTime = &ts
	}
	return nil
}
