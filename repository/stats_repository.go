package repository

import (
	"context"
	"database/sql"
	"time"

	"foodMarketplace/models"
)

// StatsRepository holds the raw aggregate queries behind the statistics
// component. Everything is computed from order rows on demand; nothing
// derived is ever stored.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountOrdersByStatus partitions the restaurant's orders by status.
func (r *StatsRepository) CountOrdersByStatus(ctx context.Context, restaurantID int64) (map[models.OrderStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders WHERE restaurant_id = ? GROUP BY status`,
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.OrderStatus]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[models.OrderStatus(status)] = n
	}
	return out, rows.Err()
}

// CountOrdersSince counts orders created at or after the given
// timestamp (store time format, UTC).
func (r *StatsRepository) CountOrdersSince(ctx context.Context, restaurantID int64, since string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE restaurant_id = ? AND created_at >= ?`,
		restaurantID, since).Scan(&n)
	return n, err
}

// RevenueSince sums Order.Total over delivered orders created at or
// after the given timestamp. An empty window yields 0, never null.
func (r *StatsRepository) RevenueSince(ctx context.Context, restaurantID int64, since string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var v float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM orders
WHERE restaurant_id = ? AND status = ? AND created_at >= ?`,
		restaurantID, string(models.OrderStatusDelivered), since).Scan(&v)
	return v, err
}

// DailyOrders returns the per-day order count and delivered revenue in
// [from, to), ordered by date ascending. Days with no orders are absent
// from the result.
func (r *StatsRepository) DailyOrders(ctx context.Context, restaurantID int64, from, to string) ([]models.DailyStat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT date(created_at),
       COUNT(*),
       COALESCE(SUM(CASE WHEN status = ? THEN total ELSE 0 END), 0)
FROM orders
WHERE restaurant_id = ? AND created_at >= ? AND created_at < ?
GROUP BY date(created_at)
ORDER BY date(created_at) ASC`,
		string(models.OrderStatusDelivered), restaurantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailyStat
	for rows.Next() {
		var d models.DailyStat
		if err := rows.Scan(&d.Date, &d.Orders, &d.Revenue); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PopularItems ranks distinct menu items by units sold across delivered
// orders; ties break by summed subtotal descending, then menu item id
// ascending for determinism. Items deleted from the menu keep their
// sold/revenue figures and surface with the placeholder name "Unknown"
// and price 0.
func (r *StatsRepository) PopularItems(ctx context.Context, restaurantID int64, limit int) ([]models.PopularItem, error) {
	if limit <= 0 {
		limit = 5
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT oi.menu_item_id,
       COALESCE(mi.name, 'Unknown'),
       COALESCE(mi.price, 0),
       COALESCE(mi.image_url, ''),
       SUM(oi.quantity) AS sold,
       SUM(oi.subtotal) AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
LEFT JOIN menu_items mi ON mi.id = oi.menu_item_id
WHERE o.restaurant_id = ? AND o.status = ?
GROUP BY oi.menu_item_id
ORDER BY sold DESC, revenue DESC, oi.menu_item_id ASC
LIMIT ?`,
		restaurantID, string(models.OrderStatusDelivered), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PopularItem
	for rows.Next() {
		var p models.PopularItem
		if err := rows.Scan(&p.MenuItemID, &p.Name, &p.Price, &p.ImageURL, &p.Sold, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
