package repository_test

import (
	"context"
	"testing"

	"foodMarketplace/internal/testutil"
	"foodMarketplace/models"
	"foodMarketplace/repository"
)

// seedDeliveredOrder inserts an order in status delivered with a single
// line of the given menu item, backdated to createdAt.
func seedDeliveredOrder(t *testing.T, d *deliveryFixture, customerID, restaurantID int64,
	item *models.MenuItem, qty int64, createdAt string) *models.Order {
	t.Helper()
	o := makeOrder(customerID, restaurantID, []models.OrderItem{{
		MenuItemID: item.ID,
		Name:       item.Name,
		UnitPrice:  item.Price,
		Quantity:   qty,
		Subtotal:   models.Round2(item.Price * float64(qty)),
	}})
	o.Subtotal = models.Round2(item.Price * float64(qty))
	o.Total = models.ComputeTotal(o.Subtotal, o.DeliveryFee, o.Tax, 0)
	created, err := d.orders.Create(context.Background(), o)
	if err != nil {
		t.Fatalf("seed delivered order: %v", err)
	}
	testutil.ForceOrderStatus(t, d.db, created.ID, models.OrderStatusDelivered)
	testutil.SetOrderCreatedAt(t, d.db, created.ID, createdAt)
	created.Status = models.OrderStatusDelivered
	created.CreatedAt = createdAt
	return created
}

func TestStatsCountAndRevenue(t *testing.T) {
	f := newDeliveryFixture(t, "stats_repo_counts")
	ctx := context.Background()
	stats := repository.NewStatsRepository(f.db)

	customer := testutil.SeedUser(t, f.db, "carol", models.RoleCustomer)
	item := testutil.SeedMenuItem(t, f.db, f.order.RestaurantID, "Margherita", 10)

	// the fixture order stays pending; add two delivered and one
	// cancelled order
	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, item, 1, "2025-06-10 12:00:00")
	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, item, 2, "2025-06-12 12:00:00")
	cancelled := seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, item, 1, "2025-06-11 12:00:00")
	testutil.ForceOrderStatus(t, f.db, cancelled.ID, models.OrderStatusCancelled)

	byStatus, err := stats.CountOrdersByStatus(ctx, f.order.RestaurantID)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if byStatus[models.OrderStatusDelivered] != 2 {
		t.Errorf("delivered = %d, want 2", byStatus[models.OrderStatusDelivered])
	}
	if byStatus[models.OrderStatusCancelled] != 1 {
		t.Errorf("cancelled = %d, want 1", byStatus[models.OrderStatusCancelled])
	}
	if byStatus[models.OrderStatusPending] != 1 {
		t.Errorf("pending = %d, want 1", byStatus[models.OrderStatusPending])
	}

	n, err := stats.CountOrdersSince(ctx, f.order.RestaurantID, "2025-06-11 00:00:00")
	if err != nil {
		t.Fatalf("count since: %v", err)
	}
	if n != 2 {
		t.Errorf("orders since = %d, want 2", n)
	}

	// delivered-only: 10*1 + 10*2 plus fee+tax per order
	revenue, err := stats.RevenueSince(ctx, f.order.RestaurantID, "2025-06-01 00:00:00")
	if err != nil {
		t.Fatalf("revenue since: %v", err)
	}
	want := models.Round2(models.ComputeTotal(10, 3.99, 1.60, 0) + models.ComputeTotal(20, 3.99, 1.60, 0))
	if models.Round2(revenue) != want {
		t.Errorf("revenue = %v, want %v", revenue, want)
	}

	zero, err := stats.RevenueSince(ctx, f.order.RestaurantID, "2030-01-01 00:00:00")
	if err != nil {
		t.Fatalf("empty revenue: %v", err)
	}
	if zero != 0 {
		t.Errorf("empty window revenue = %v, want 0", zero)
	}
}

func TestStatsDailyOrders(t *testing.T) {
	f := newDeliveryFixture(t, "stats_repo_daily")
	ctx := context.Background()
	stats := repository.NewStatsRepository(f.db)

	customer := testutil.SeedUser(t, f.db, "carol", models.RoleCustomer)
	item := testutil.SeedMenuItem(t, f.db, f.order.RestaurantID, "Margherita", 10)

	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, item, 1, "2025-06-10 09:00:00")
	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, item, 1, "2025-06-10 18:00:00")
	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, item, 1, "2025-06-12 12:00:00")
	// boundary: the end of the window is exclusive
	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, item, 1, "2025-06-13 00:00:00")

	daily, err := stats.DailyOrders(ctx, f.order.RestaurantID, "2025-06-10 00:00:00", "2025-06-13 00:00:00")
	if err != nil {
		t.Fatalf("daily orders: %v", err)
	}
	if len(daily) != 2 {
		t.Fatalf("days = %d, want 2 (days without orders are absent)", len(daily))
	}
	if daily[0].Date != "2025-06-10" || daily[0].Orders != 2 {
		t.Errorf("day[0] = %+v", daily[0])
	}
	if daily[1].Date != "2025-06-12" || daily[1].Orders != 1 {
		t.Errorf("day[1] = %+v", daily[1])
	}
}

func TestStatsPopularItems(t *testing.T) {
	f := newDeliveryFixture(t, "stats_repo_popular")
	ctx := context.Background()
	stats := repository.NewStatsRepository(f.db)

	customer := testutil.SeedUser(t, f.db, "carol", models.RoleCustomer)
	pizza := testutil.SeedMenuItem(t, f.db, f.order.RestaurantID, "Margherita", 12.99)
	salad := testutil.SeedMenuItem(t, f.db, f.order.RestaurantID, "Caesar", 8.50)
	soup := testutil.SeedMenuItem(t, f.db, f.order.RestaurantID, "Minestrone", 6)

	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, pizza, 3, "2025-06-10 12:00:00")
	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, salad, 2, "2025-06-11 12:00:00")
	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, soup, 2, "2025-06-12 12:00:00")

	// an order that never reached delivered does not count
	pending := makeOrder(customer.ID, f.order.RestaurantID, []models.OrderItem{{
		MenuItemID: salad.ID, Name: salad.Name, UnitPrice: salad.Price, Quantity: 10, Subtotal: 85,
	}})
	if _, err := f.orders.Create(ctx, pending); err != nil {
		t.Fatalf("seed pending order: %v", err)
	}

	popular, err := stats.PopularItems(ctx, f.order.RestaurantID, 5)
	if err != nil {
		t.Fatalf("popular items: %v", err)
	}
	if len(popular) != 3 {
		t.Fatalf("items = %d, want 3", len(popular))
	}
	if popular[0].MenuItemID != pizza.ID || popular[0].Sold != 3 {
		t.Errorf("rank 1 = %+v, want pizza x3", popular[0])
	}
	// salad and soup tie on units; the higher revenue wins
	if popular[1].MenuItemID != salad.ID {
		t.Errorf("rank 2 = %+v, want salad (revenue tiebreak)", popular[1])
	}
	if popular[2].MenuItemID != soup.ID {
		t.Errorf("rank 3 = %+v, want soup", popular[2])
	}
}

func TestStatsPopularItemsDeletedItem(t *testing.T) {
	f := newDeliveryFixture(t, "stats_repo_popular_deleted")
	ctx := context.Background()
	stats := repository.NewStatsRepository(f.db)
	restaurants := repository.NewRestaurantRepository(f.db)

	customer := testutil.SeedUser(t, f.db, "carol", models.RoleCustomer)
	item := testutil.SeedMenuItem(t, f.db, f.order.RestaurantID, "Seasonal Special", 14)
	seedDeliveredOrder(t, f, customer.ID, f.order.RestaurantID, item, 2, "2025-06-10 12:00:00")

	if err := restaurants.DeleteMenuItem(ctx, item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	popular, err := stats.PopularItems(ctx, f.order.RestaurantID, 5)
	if err != nil {
		t.Fatalf("popular items: %v", err)
	}
	if len(popular) != 1 {
		t.Fatalf("items = %d, want 1", len(popular))
	}
	got := popular[0]
	if got.Name != "Unknown" || got.Price != 0 {
		t.Errorf("deleted item placeholder = %+v", got)
	}
	if got.Sold != 2 || got.Revenue != 28 {
		t.Errorf("sold/revenue not preserved: %+v", got)
	}
}
