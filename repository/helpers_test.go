package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"foodMarketplace/internal/testutil"
	"foodMarketplace/models"
	"foodMarketplace/repository"
)

// deliveryFixture wires the tables a delivery test needs: a driver, one
// pending order and the repositories under test.
type deliveryFixture struct {
	db         *sql.DB
	users      *repository.UserRepository
	orders     *repository.OrderRepository
	deliveries *repository.DeliveryRepository
	driver     *models.User
	order      *models.Order
}

func newDeliveryFixture(t *testing.T, dbName string) *deliveryFixture {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, dbName)

	customer := testutil.SeedUser(t, d, "alice", models.RoleCustomer)
	owner := testutil.SeedUser(t, d, "bob", models.RoleRestaurantOwner)
	driver := testutil.SeedUser(t, d, "dave", models.RoleDriver)
	restaurant := testutil.SeedRestaurant(t, d, owner.ID, 0, 3.99)

	orders := repository.NewOrderRepository(d)
	order, err := orders.Create(context.Background(), makeOrder(customer.ID, restaurant.ID, nil))
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}

	return &deliveryFixture{
		db:         d,
		users:      repository.NewUserRepository(d),
		orders:     orders,
		deliveries: repository.NewDeliveryRepository(d),
		driver:     driver,
		order:      order,
	}
}

func seedDelivery(t *testing.T, f *deliveryFixture) *models.Delivery {
	t.Helper()
	delivery, err := f.deliveries.Create(context.Background(), &models.Delivery{
		OrderID:   f.order.ID,
		DriverID:  f.driver.ID,
		Status:    models.DeliveryStatusAssigned,
		DriverFee: 3.99,
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	return delivery
}
