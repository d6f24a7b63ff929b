package auth

import (
	"foodMarketplace/internal/apperr"
	"foodMarketplace/internal/lifecycle"
	"foodMarketplace/models"
)

// Action names a guarded operation class.
type Action string

const (
	ActionViewOrder         Action = "order.view"
	ActionManageOrder       Action = "order.manage" // accept, reject, owner-side workflow
	ActionUpdateOrderStatus Action = "order.update_status"
	ActionCancelOrder       Action = "order.cancel"
	ActionAssignDriver      Action = "order.assign_driver"
	ActionManageMenu        Action = "menu.manage"
	ActionManageRestaurant  Action = "restaurant.manage"
	ActionViewStats         Action = "stats.view"
)

// Resource bundles the entities the decision needs. The caller resolves
// them from the store first; a resource that does not exist must fail
// with not-found before the guard is ever consulted.
type Resource struct {
	Restaurant *models.Restaurant // owning restaurant, required for owner checks
	Order      *models.Order      // present for order-scoped actions
	Delivery   *models.Delivery   // present when a driver has been assigned
}

// Request is the guarded action plus, for status updates, the requested
// transition so driver permissions can be checked edge by edge.
type Request struct {
	Action Action
	From   models.OrderStatus
	To     models.OrderStatus
}

// Denial reasons. Both carry the forbidden code but stay
// distinguishable from each other and from not-found.
var (
	ErrNotOwner         = apperr.Forbidden("actor does not own this resource")
	ErrRoleNotPermitted = apperr.Forbidden("role is not permitted to perform this action")
)

// CanAct is the single authorization decision function. It is pure and
// side-effect-free; every mutating operation consults it before
// touching the store. Returns nil when the action is allowed.
func CanAct(actor *Actor, res Resource, req Request) error {
	if actor == nil || actor.ID == 0 {
		return apperr.NotAuthenticated()
	}

	// Admins may do anything.
	if actor.Role == models.RoleAdmin {
		return nil
	}

	// Owners act freely on their own restaurant and its orders/menu.
	if actor.Role == models.RoleRestaurantOwner {
		if res.Restaurant != nil && res.Restaurant.OwnerID == actor.ID {
			return nil
		}
		return ErrNotOwner
	}

	if actor.Role == models.RoleDriver {
		switch req.Action {
		case ActionUpdateOrderStatus:
			if res.Delivery == nil || res.Delivery.DriverID != actor.ID {
				return ErrNotOwner
			}
			if !lifecycle.DriverMayRequest(req.From, req.To) {
				return ErrRoleNotPermitted
			}
			return nil
		case ActionViewOrder:
			if res.Delivery != nil && res.Delivery.DriverID == actor.ID {
				return nil
			}
			return ErrNotOwner
		}
		return ErrRoleNotPermitted
	}

	if actor.Role == models.RoleCustomer {
		switch req.Action {
		case ActionCancelOrder, ActionViewOrder:
			if res.Order != nil && res.Order.CustomerID == actor.ID {
				return nil
			}
			return ErrNotOwner
		}
		return ErrRoleNotPermitted
	}

	return ErrRoleNotPermitted
}
