package repository

import (
	"context"

	"foodMarketplace/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, name, email string, role models.Role) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetAvailability(ctx context.Context, id int64, a models.Availability) error
}

// RestaurantRepositoryI defines operations on Restaurant and MenuItem
// entities.
type RestaurantRepositoryI interface {
	Create(ctx context.Context, r *models.Restaurant) (*models.Restaurant, error)
	GetByID(ctx context.Context, id int64) (*models.Restaurant, error)
	GetByOwner(ctx context.Context, ownerID int64) (*models.Restaurant, error)
	CreateMenuItem(ctx context.Context, m *models.MenuItem) (*models.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	GetMenuItems(ctx context.Context, restaurantID int64, ids []int64) ([]models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
}

// OrderRepositoryI defines operations on Order entities. Status writes
// are conditional: they only apply while the row is still in one of the
// expected statuses, so a read-modify-write race cannot double-apply a
// transition.
type OrderRepositoryI interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, p ListOrdersParams) ([]models.Order, error)
	UpdateStatusIf(ctx context.Context, id int64, to models.OrderStatus, deliveredAt *string, from ...models.OrderStatus) (bool, error)
	SetDriver(ctx context.Context, orderID, driverID int64) error
	AppendStatusHistory(ctx context.Context, orderID int64, from, to models.OrderStatus, changedBy int64) error
}

// DeliveryRepositoryI defines operations on Delivery entities.
type DeliveryRepositoryI interface {
	Create(ctx context.Context, d *models.Delivery) (*models.Delivery, error)
	GetByID(ctx context.Context, id int64) (*models.Delivery, error)
	GetByOrderID(ctx context.Context, orderID int64) (*models.Delivery, error)
	ListByDriver(ctx context.Context, driverID int64) ([]models.Delivery, error)
	UpdateStatusIf(ctx context.Context, id int64, to models.DeliveryStatus, from models.DeliveryStatus) (bool, error)
	Accept(ctx context.Context, id, driverID int64, pickupTime string) (bool, error)
	Complete(ctx context.Context, id, driverID int64, deliveryTime string, driverFee float64) (bool, error)
}

// StatsRepositoryI exposes the raw aggregate queries the statistics
// component is built on.
type StatsRepositoryI interface {
	CountOrdersByStatus(ctx context.Context, restaurantID int64) (map[models.OrderStatus]int64, error)
	CountOrdersSince(ctx context.Context, restaurantID int64, since string) (int64, error)
	RevenueSince(ctx context.Context, restaurantID int64, since string) (float64, error)
	DailyOrders(ctx context.Context, restaurantID int64, from, to string) ([]models.DailyStat, error)
	PopularItems(ctx context.Context, restaurantID int64, limit int) ([]models.PopularItem, error)
}
