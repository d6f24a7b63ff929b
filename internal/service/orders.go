// Package service hosts the marketplace facades: order management,
// driver deliveries and restaurant statistics. Every operation takes an
// explicit actor — there is no ambient request identity — and follows
// the same ordering: resolve the entities, consult the authorization
// guard, validate the transition, then write conditionally.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"foodMarketplace/internal/apperr"
	"foodMarketplace/internal/auth"
	"foodMarketplace/internal/events"
	"foodMarketplace/internal/lifecycle"
	"foodMarketplace/internal/metrics"
	"foodMarketplace/models"
	"foodMarketplace/repository"
)

// OrderService implements the customer- and owner-facing order
// operations on top of the lifecycle engine and the guard.
type OrderService struct {
	orders      *repository.OrderRepository
	restaurants *repository.RestaurantRepository
	deliveries  *repository.DeliveryRepository

	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
	now       func() time.Time
	taxRate   float64
}

// OrderServiceDeps wires an OrderService.
type OrderServiceDeps struct {
	Orders      *repository.OrderRepository
	Restaurants *repository.RestaurantRepository
	Deliveries  *repository.DeliveryRepository
	Publisher   events.Publisher
	Metrics     *metrics.Metrics
	Log         *slog.Logger
	Now         func() time.Time
	TaxRate     float64
}

func NewOrderService(d OrderServiceDeps) *OrderService {
	s := &OrderService{
		orders:      d.Orders,
		restaurants: d.Restaurants,
		deliveries:  d.Deliveries,
		publisher:   d.Publisher,
		metrics:     d.Metrics,
		log:         d.Log,
		now:         d.Now,
		taxRate:     d.TaxRate,
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CartItem is one requested line of a new order. Customizations are
// frozen verbatim onto the order item.
type CartItem struct {
	MenuItemID     int64                  `json:"menu_item_id"`
	Quantity       int64                  `json:"quantity"`
	Customizations []models.Customization `json:"customizations,omitempty"`
}

// CreateOrderInput is the cart a customer submits.
type CreateOrderInput struct {
	RestaurantID    int64                `json:"restaurant_id"`
	Items           []CartItem           `json:"items"`
	DeliveryAddress string               `json:"delivery_address"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	ScheduledFor    *string              `json:"scheduled_for,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	Discount        float64              `json:"discount,omitempty"`
}

// CreateOrder validates the cart against the restaurant and its menu,
// freezes all item and price snapshots and persists the order in status
// pending. Totals are computed here, once, and never recalculated.
func (s *OrderService) CreateOrder(ctx context.Context, actor *auth.Actor, in CreateOrderInput) (*models.Order, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	if actor.Role != models.RoleCustomer && actor.Role != models.RoleAdmin {
		return nil, auth.ErrRoleNotPermitted
	}
	if in.RestaurantID == 0 {
		return nil, apperr.Validation("restaurant_id is required")
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, apperr.Validation("delivery address is required")
	}
	if in.Discount < 0 {
		return nil, apperr.Validation("discount cannot be negative")
	}

	restaurant, err := s.restaurants.GetByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, s.internal(err, "get restaurant")
	}
	if restaurant == nil {
		return nil, apperr.NotFound("restaurant")
	}
	if !restaurant.IsOpen {
		return nil, apperr.Validation("restaurant is closed")
	}

	ids := make([]int64, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive")
		}
		ids = append(ids, it.MenuItemID)
	}
	menu, err := s.restaurants.GetMenuItems(ctx, in.RestaurantID, ids)
	if err != nil {
		return nil, s.internal(err, "get menu items")
	}
	byID := make(map[int64]models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	var subtotal float64
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		m, ok := byID[it.MenuItemID]
		if !ok {
			return nil, apperr.Validation("menu item %d is not on this restaurant's menu", it.MenuItemID)
		}
		if !m.IsAvailable {
			return nil, apperr.Validation("menu item %q is not available", m.Name)
		}
		unit := m.Price
		for _, c := range it.Customizations {
			unit += c.PriceModifier
		}
		lineSubtotal := models.Round2(unit * float64(it.Quantity))
		subtotal += lineSubtotal
		items = append(items, models.OrderItem{
			MenuItemID:     m.ID,
			Name:           m.Name,
			UnitPrice:      m.Price,
			Quantity:       it.Quantity,
			Subtotal:       lineSubtotal,
			Customizations: it.Customizations,
		})
	}
	subtotal = models.Round2(subtotal)

	if subtotal < restaurant.MinOrderAmount {
		return nil, apperr.Validation("Minimum order amount is $%s", formatAmount(restaurant.MinOrderAmount))
	}
	if in.Discount > subtotal {
		return nil, apperr.Validation("discount exceeds the order subtotal")
	}

	tax := models.Round2(subtotal * s.taxRate)
	paymentMethod := in.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}

	order := &models.Order{
		OrderNumber:     newOrderNumber(),
		CustomerID:      actor.ID,
		RestaurantID:    restaurant.ID,
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     restaurant.DeliveryFee,
		Tax:             tax,
		Discount:        models.Round2(in.Discount),
		Total:           models.ComputeTotal(subtotal, restaurant.DeliveryFee, tax, in.Discount),
		Status:          models.OrderStatusPending,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		DeliveryAddress: in.DeliveryAddress,
		ScheduledFor:    in.ScheduledFor,
		Notes:           in.Notes,
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, s.internal(err, "create order")
	}

	s.publish(ctx, created, "", created.Status, actor.ID)
	if s.metrics != nil {
		s.metrics.OrderCreated(created.Total)
	}
	s.log.Info("order created",
		"order_id", created.ID,
		"order_number", created.OrderNumber,
		"restaurant_id", created.RestaurantID,
		"customer_id", created.CustomerID,
		"total", created.Total)
	return created, nil
}

// GetOrder returns the order when the actor is the order's customer,
// the owning restaurant's owner, the assigned driver or an admin.
func (s *OrderService) GetOrder(ctx context.Context, actor *auth.Actor, orderID int64) (*models.Order, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	order, restaurant, delivery, err := s.resolveOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res := auth.Resource{Restaurant: restaurant, Order: order, Delivery: delivery}
	if err := auth.CanAct(actor, res, auth.Request{Action: auth.ActionViewOrder}); err != nil {
		return nil, s.denied(err, auth.ActionViewOrder)
	}
	return order, nil
}

// ListFilter narrows ListOrders. The scope itself always comes from the
// actor's role, never from the filter.
type ListFilter struct {
	Statuses []models.OrderStatus
	Limit    int
}

// ListOrders lists orders in the actor's scope: customers see their own
// orders, owners their restaurant's, drivers the orders behind their
// deliveries, admins everything.
func (s *OrderService) ListOrders(ctx context.Context, actor *auth.Actor, f ListFilter) ([]models.Order, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	for _, st := range f.Statuses {
		if !lifecycle.ValidOrderStatus(st) {
			return nil, apperr.Validation("unknown order status %q", string(st))
		}
	}
	p := repository.ListOrdersParams{Statuses: f.Statuses, Limit: f.Limit}
	switch actor.Role {
	case models.RoleCustomer:
		p.CustomerID = &actor.ID
	case models.RoleRestaurantOwner:
		restaurant, err := s.restaurants.GetByOwner(ctx, actor.ID)
		if err != nil {
			return nil, s.internal(err, "get restaurant by owner")
		}
		if restaurant == nil {
			return nil, apperr.NotFound("restaurant")
		}
		p.RestaurantID = &restaurant.ID
	case models.RoleDriver:
		p.DriverID = &actor.ID
	case models.RoleAdmin:
		// unscoped
	default:
		return nil, auth.ErrRoleNotPermitted
	}
	list, err := s.orders.List(ctx, p)
	if err != nil {
		return nil, s.internal(err, "list orders")
	}
	return list, nil
}

// AcceptOrder confirms a pending order on behalf of the restaurant.
func (s *OrderService) AcceptOrder(ctx context.Context, actor *auth.Actor, orderID int64) (*models.Order, error) {
	return s.ownerTransition(ctx, actor, orderID, models.OrderStatusConfirmed, lifecycle.AcceptOrder)
}

// RejectOrder cancels a pending order on behalf of the restaurant.
func (s *OrderService) RejectOrder(ctx context.Context, actor *auth.Actor, orderID int64) (*models.Order, error) {
	return s.ownerTransition(ctx, actor, orderID, models.OrderStatusCancelled, lifecycle.RejectOrder)
}

func (s *OrderService) ownerTransition(ctx context.Context, actor *auth.Actor, orderID int64,
	to models.OrderStatus, apply func(*models.Order, time.Time) error) (*models.Order, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	order, restaurant, _, err := s.resolveOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res := auth.Resource{Restaurant: restaurant, Order: order}
	if err := auth.CanAct(actor, res, auth.Request{Action: auth.ActionManageOrder}); err != nil {
		return nil, s.denied(err, auth.ActionManageOrder)
	}

	from := order.Status
	if err := apply(order, s.now()); err != nil {
		return nil, err
	}
	return s.commitTransition(ctx, actor, order, from, to, nil)
}

// UpdateOrderStatus advances the order along the lifecycle edges. The
// guard decides per (from, to) pair whether the actor may request it;
// the driver edge whitelist lives there.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor *auth.Actor, orderID int64, to models.OrderStatus) (*models.Order, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	order, restaurant, delivery, err := s.resolveOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res := auth.Resource{Restaurant: restaurant, Order: order, Delivery: delivery}
	req := auth.Request{Action: auth.ActionUpdateOrderStatus, From: order.Status, To: to}
	if err := auth.CanAct(actor, res, req); err != nil {
		return nil, s.denied(err, auth.ActionUpdateOrderStatus)
	}

	from := order.Status
	if err := lifecycle.TransitionOrder(order, to, s.now()); err != nil {
		return nil, err
	}
	return s.commitTransition(ctx, actor, order, from, to, order.ActualDeliveryTime)
}

// CancelOrder cancels an order that is still pending or confirmed.
// Customers may cancel their own orders; owners and admins theirs.
func (s *OrderService) CancelOrder(ctx context.Context, actor *auth.Actor, orderID int64) (*models.Order, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	order, restaurant, _, err := s.resolveOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res := auth.Resource{Restaurant: restaurant, Order: order}
	if err := auth.CanAct(actor, res, auth.Request{Action: auth.ActionCancelOrder}); err != nil {
		return nil, s.denied(err, auth.ActionCancelOrder)
	}

	from := order.Status
	if err := lifecycle.CancelOrder(order, s.now()); err != nil {
		return nil, err
	}
	// Cancellation is conditional on the statuses that still allow it,
	// not just the one we read; a concurrent confirm does not block a
	// customer cancel that was still legal.
	ok, err := s.orders.UpdateStatusIf(ctx, order.ID, models.OrderStatusCancelled, nil,
		models.OrderStatusPending, models.OrderStatusConfirmed)
	if err != nil {
		return nil, s.internal(err, "cancel order")
	}
	if !ok {
		return nil, s.loseRace(ctx, order.ID, models.OrderStatusCancelled)
	}
	s.afterTransition(ctx, actor, order, from, models.OrderStatusCancelled)
	return s.reload(ctx, order.ID)
}

// commitTransition persists an already-validated in-memory transition
// with a conditional write keyed on the previous status.
func (s *OrderService) commitTransition(ctx context.Context, actor *auth.Actor, order *models.Order,
	from, to models.OrderStatus, deliveredAt *string) (*models.Order, error) {
	ok, err := s.orders.UpdateStatusIf(ctx, order.ID, to, deliveredAt, from)
	if err != nil {
		return nil, s.internal(err, "update order status")
	}
	if !ok {
		return nil, s.loseRace(ctx, order.ID, to)
	}
	s.afterTransition(ctx, actor, order, from, to)
	return s.reload(ctx, order.ID)
}

// loseRace reports a conditional write that matched no row: the order
// either vanished or its state already moved on under a concurrent
// request. The caller sees the conflict as an invalid transition from
// the status the row actually has now.
func (s *OrderService) loseRace(ctx context.Context, orderID int64, to models.OrderStatus) error {
	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return s.internal(err, "re-read order")
	}
	if current == nil {
		return apperr.NotFound("order")
	}
	return apperr.InvalidTransition(string(current.Status), string(to))
}

func (s *OrderService) afterTransition(ctx context.Context, actor *auth.Actor, order *models.Order, from, to models.OrderStatus) {
	if err := s.orders.AppendStatusHistory(ctx, order.ID, from, to, actor.ID); err != nil {
		s.log.Error("append status history", "order_id", order.ID, "err", err)
	}
	s.publish(ctx, order, from, to, actor.ID)
	if s.metrics != nil {
		s.metrics.OrderTransition(from, to)
	}
	s.log.Info("order status changed",
		"order_id", order.ID,
		"from", string(from),
		"to", string(to),
		"actor_id", actor.ID,
		"actor_role", string(actor.Role))
}

func (s *OrderService) publish(ctx context.Context, order *models.Order, from, to models.OrderStatus, changedBy int64) {
	e := events.OrderEvent{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		RestaurantID: order.RestaurantID,
		CustomerID:   order.CustomerID,
		FromStatus:   from,
		ToStatus:     to,
		ChangedBy:    changedBy,
		Total:        order.Total,
		OccurredAt:   s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishOrderEvent(ctx, e); err != nil {
		s.log.Error("publish order event", "order_id", order.ID, "err", err)
	}
}

// resolveOrder loads the order with its owning restaurant and any
// delivery. Existence is checked before authorization is evaluated.
func (s *OrderService) resolveOrder(ctx context.Context, orderID int64) (*models.Order, *models.Restaurant, *models.Delivery, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, nil, s.internal(err, "get order")
	}
	if order == nil {
		return nil, nil, nil, apperr.NotFound("order")
	}
	restaurant, err := s.restaurants.GetByID(ctx, order.RestaurantID)
	if err != nil {
		return nil, nil, nil, s.internal(err, "get restaurant")
	}
	if restaurant == nil {
		return nil, nil, nil, apperr.NotFound("restaurant")
	}
	delivery, err := s.deliveries.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, nil, nil, s.internal(err, "get delivery")
	}
	return order, restaurant, delivery, nil
}

func (s *OrderService) reload(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, s.internal(err, "reload order")
	}
	if order == nil {
		return nil, apperr.NotFound("order")
	}
	return order, nil
}

func (s *OrderService) internal(err error, op string) error {
	s.log.Error(op, "err", err)
	return apperr.Internal(err)
}

func (s *OrderService) denied(err error, action auth.Action) error {
	if s.metrics != nil && apperr.IsCode(err, apperr.CodeForbidden) {
		s.metrics.AuthDenied(string(action))
	}
	return err
}

func newOrderNumber() string {
	id := strings.ToUpper(uuid.NewString())
	return "ORD-" + id[:8]
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
