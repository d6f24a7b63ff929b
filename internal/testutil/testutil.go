// Package testutil provides the shared fixtures: an in-memory store
// per test, entity seeding and token minting.
package testutil

import (
	"context"
	"database/sql"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"

	"foodMarketplace/internal/db"
	"foodMarketplace/models"
	"foodMarketplace/repository"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies
// migrations. Shared cache keeps extra connections on the same DB. The
// database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SignToken returns a signed HS256 JWT asserting the given identity.
func SignToken(t *testing.T, secret string, userID int64, role models.Role) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid":  userID,
		"role": string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// SeedUser inserts a user and returns it.
func SeedUser(t *testing.T, d *sql.DB, name string, role models.Role) *models.User {
	t.Helper()
	u, err := repository.NewUserRepository(d).Create(context.Background(), name, name+"@example.com", role)
	if err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

// SeedRestaurant inserts an open restaurant owned by ownerID.
func SeedRestaurant(t *testing.T, d *sql.DB, ownerID int64, minOrder, deliveryFee float64) *models.Restaurant {
	t.Helper()
	r, err := repository.NewRestaurantRepository(d).Create(context.Background(), &models.Restaurant{
		OwnerID:        ownerID,
		Name:           "Test Kitchen",
		Address:        "1 Test Street",
		IsOpen:         true,
		MinOrderAmount: minOrder,
		DeliveryFee:    deliveryFee,
	})
	if err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return r
}

// SeedMenuItem inserts an available menu item.
func SeedMenuItem(t *testing.T, d *sql.DB, restaurantID int64, name string, price float64) *models.MenuItem {
	t.Helper()
	m, err := repository.NewRestaurantRepository(d).CreateMenuItem(context.Background(), &models.MenuItem{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		IsAvailable:  true,
	})
	if err != nil {
		t.Fatalf("seed menu item %s: %v", name, err)
	}
	return m
}

// SetOrderCreatedAt backdates an order, for window tests.
func SetOrderCreatedAt(t *testing.T, d *sql.DB, orderID int64, createdAt string) {
	t.Helper()
	if _, err := d.Exec(`UPDATE orders SET created_at = ? WHERE id = ?`, createdAt, orderID); err != nil {
		t.Fatalf("backdate order %d: %v", orderID, err)
	}
}

// ForceOrderStatus sets an order's status directly, bypassing the
// lifecycle engine, to arrange test fixtures.
func ForceOrderStatus(t *testing.T, d *sql.DB, orderID int64, status models.OrderStatus) {
	t.Helper()
	if _, err := d.Exec(`UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID); err != nil {
		t.Fatalf("force order %d status: %v", orderID, err)
	}
}

// ForceDeliveryStatus sets a delivery's status directly.
func ForceDeliveryStatus(t *testing.T, d *sql.DB, deliveryID int64, status models.DeliveryStatus) {
	t.Helper()
	if _, err := d.Exec(`UPDATE deliveries SET status = ? WHERE id = ?`, string(status), deliveryID); err != nil {
		t.Fatalf("force delivery %d status: %v", deliveryID, err)
	}
}
