package service

import (
	"context"
	"log/slog"
	"time"

	"foodMarketplace/internal/apperr"
	"foodMarketplace/internal/auth"
	"foodMarketplace/internal/lifecycle"
	"foodMarketplace/internal/metrics"
	"foodMarketplace/models"
	"foodMarketplace/repository"
)

// DeliveryService implements the driver-facing delivery workflow and
// the dispatcher-side driver assignment.
type DeliveryService struct {
	deliveries  *repository.DeliveryRepository
	orders      *repository.OrderRepository
	restaurants *repository.RestaurantRepository
	users       *repository.UserRepository

	metrics *metrics.Metrics
	log     *slog.Logger
	now     func() time.Time
}

// DeliveryServiceDeps wires a DeliveryService.
type DeliveryServiceDeps struct {
	Deliveries  *repository.DeliveryRepository
	Orders      *repository.OrderRepository
	Restaurants *repository.RestaurantRepository
	Users       *repository.UserRepository
	Metrics     *metrics.Metrics
	Log         *slog.Logger
	Now         func() time.Time
}

func NewDeliveryService(d DeliveryServiceDeps) *DeliveryService {
	s := &DeliveryService{
		deliveries:  d.Deliveries,
		orders:      d.Orders,
		restaurants: d.Restaurants,
		users:       d.Users,
		metrics:     d.Metrics,
		log:         d.Log,
		now:         d.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// AssignDriver creates the delivery for a confirmed (or ready) order.
// It does not itself change the order status; callers advance the two
// machines together. Only the owning restaurant's owner or an admin may
// dispatch.
func (s *DeliveryService) AssignDriver(ctx context.Context, actor *auth.Actor, orderID, driverID int64) (*models.Delivery, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, s.internal(err, "get order")
	}
	if order == nil {
		return nil, apperr.NotFound("order")
	}
	restaurant, err := s.restaurants.GetByID(ctx, order.RestaurantID)
	if err != nil {
		return nil, s.internal(err, "get restaurant")
	}
	if restaurant == nil {
		return nil, apperr.NotFound("restaurant")
	}
	res := auth.Resource{Restaurant: restaurant, Order: order}
	if err := auth.CanAct(actor, res, auth.Request{Action: auth.ActionAssignDriver}); err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusConfirmed && order.Status != models.OrderStatusReadyForPickup {
		return nil, &apperr.Error{
			Code:    apperr.CodeInvalidTransition,
			Message: "a driver can only be assigned to a confirmed or ready order",
		}
	}

	driver, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		return nil, s.internal(err, "get driver")
	}
	if driver == nil {
		return nil, apperr.NotFound("driver")
	}
	if driver.Role != models.RoleDriver {
		return nil, apperr.Validation("user %d is not a driver", driverID)
	}

	existing, err := s.deliveries.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, s.internal(err, "get delivery")
	}
	if existing != nil {
		return nil, apperr.Conflict("order already has an assigned driver")
	}

	delivery, err := s.deliveries.Create(ctx, &models.Delivery{
		OrderID:   orderID,
		DriverID:  driverID,
		Status:    models.DeliveryStatusAssigned,
		DriverFee: order.DeliveryFee,
	})
	if err != nil {
		return nil, s.internal(err, "create delivery")
	}
	if err := s.orders.SetDriver(ctx, orderID, driverID); err != nil {
		return nil, s.internal(err, "set order driver")
	}
	s.log.Info("driver assigned",
		"order_id", orderID,
		"driver_id", driverID,
		"delivery_id", delivery.ID,
		"actor_id", actor.ID)
	return delivery, nil
}

// ListMyDeliveries returns the deliveries assigned to the calling
// driver, newest first.
func (s *DeliveryService) ListMyDeliveries(ctx context.Context, actor *auth.Actor) ([]models.Delivery, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	if actor.Role != models.RoleDriver {
		return nil, auth.ErrRoleNotPermitted
	}
	list, err := s.deliveries.ListByDriver(ctx, actor.ID)
	if err != nil {
		return nil, s.internal(err, "list deliveries")
	}
	return list, nil
}

// AcceptDelivery moves an assigned delivery to picked_up, stamps the
// pickup time and marks the driver busy. Only the assigned driver may
// accept.
func (s *DeliveryService) AcceptDelivery(ctx context.Context, actor *auth.Actor, deliveryID int64) (*models.Delivery, error) {
	delivery, err := s.resolveForDriver(ctx, actor, deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery.Status != models.DeliveryStatusAssigned {
		return nil, apperr.InvalidTransition(string(delivery.Status), string(models.DeliveryStatusPickedUp))
	}

	pickup := s.now().UTC().Format(lifecycle.TimeFormat)
	ok, err := s.deliveries.Accept(ctx, delivery.ID, actor.ID, pickup)
	if err != nil {
		return nil, s.internal(err, "accept delivery")
	}
	if !ok {
		return nil, s.loseRace(ctx, delivery.ID, models.DeliveryStatusPickedUp)
	}
	s.log.Info("delivery accepted", "delivery_id", delivery.ID, "driver_id", actor.ID)
	return s.reload(ctx, delivery.ID)
}

// UpdateDeliveryStatus advances the delivery machine. Reaching
// delivered stamps the delivery time, credits the driver's lifetime
// counters and flips availability back to online — atomically with the
// status write.
func (s *DeliveryService) UpdateDeliveryStatus(ctx context.Context, actor *auth.Actor, deliveryID int64, to models.DeliveryStatus) (*models.Delivery, error) {
	delivery, err := s.resolveForDriver(ctx, actor, deliveryID)
	if err != nil {
		return nil, err
	}

	from := delivery.Status
	if err := lifecycle.TransitionDelivery(delivery, to, s.now()); err != nil {
		return nil, err
	}

	var ok bool
	if to == models.DeliveryStatusDelivered {
		ok, err = s.deliveries.Complete(ctx, delivery.ID, actor.ID,
			*delivery.DeliveryTime, delivery.DriverFee)
	} else {
		ok, err = s.deliveries.UpdateStatusIf(ctx, delivery.ID, to, from)
	}
	if err != nil {
		return nil, s.internal(err, "update delivery status")
	}
	if !ok {
		return nil, s.loseRace(ctx, delivery.ID, to)
	}

	if to == models.DeliveryStatusDelivered && s.metrics != nil {
		s.metrics.DeliveryCompleted()
	}
	s.log.Info("delivery status changed",
		"delivery_id", delivery.ID,
		"from", string(from),
		"to", string(to),
		"driver_id", actor.ID)
	return s.reload(ctx, delivery.ID)
}

// resolveForDriver loads the delivery and verifies the caller is its
// assigned driver. Nobody else, admins included, advances a delivery:
// the side effects touch the driver's own counters.
func (s *DeliveryService) resolveForDriver(ctx context.Context, actor *auth.Actor, deliveryID int64) (*models.Delivery, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	if actor.Role != models.RoleDriver {
		return nil, auth.ErrRoleNotPermitted
	}
	delivery, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, s.internal(err, "get delivery")
	}
	if delivery == nil {
		return nil, apperr.NotFound("delivery")
	}
	if delivery.DriverID != actor.ID {
		return nil, auth.ErrNotOwner
	}
	return delivery, nil
}

func (s *DeliveryService) loseRace(ctx context.Context, deliveryID int64, to models.DeliveryStatus) error {
	current, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return s.internal(err, "re-read delivery")
	}
	if current == nil {
		return apperr.NotFound("delivery")
	}
	return apperr.InvalidTransition(string(current.Status), string(to))
}

func (s *DeliveryService) reload(ctx context.Context, deliveryID int64) (*models.Delivery, error) {
	delivery, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, s.internal(err, "reload delivery")
	}
	if delivery == nil {
		return nil, apperr.NotFound("delivery")
	}
	return delivery, nil
}

func (s *DeliveryService) internal(err error, op string) error {
	s.log.Error(op, "err", err)
	return apperr.Internal(err)
}
