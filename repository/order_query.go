package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"foodMarketplace/models"
)

// ListOrdersParams represents filters for List. Exactly one of the
// scope fields is normally set, matching the caller's role: customers
// list their own orders, owners their restaurant's, drivers the orders
// their deliveries point at.
type ListOrdersParams struct {
	CustomerID   *int64
	RestaurantID *int64
	DriverID     *int64
	Statuses     []models.OrderStatus
	Limit        int
}

// List returns orders matching the filters ordered by created_at desc,
// id desc. Items are not hydrated; list views only need order rows.
func (r *OrderRepository) List(ctx context.Context, p ListOrdersParams) ([]models.Order, error) {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var where []string
	var args []any
	join := ""

	if p.CustomerID != nil {
		where = append(where, "o.customer_id = ?")
		args = append(args, *p.CustomerID)
	}
	if p.RestaurantID != nil {
		where = append(where, "o.restaurant_id = ?")
		args = append(args, *p.RestaurantID)
	}
	if p.DriverID != nil {
		join = " JOIN deliveries d ON d.order_id = o.id"
		where = append(where, "d.driver_id = ?")
		args = append(args, *p.DriverID)
	}
	if len(p.Statuses) > 0 {
		placeholders := make([]string, len(p.Statuses))
		for i, s := range p.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "o.status IN ("+strings.Join(placeholders, ",")+")")
	}

	query := `SELECT ` + prefixedOrderColumns + ` FROM orders o` + join
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at DESC, o.id DESC LIMIT ?"
	args = append(args, p.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

const prefixedOrderColumns = `o.id, o.order_number, o.customer_id, o.restaurant_id, o.driver_id,
o.subtotal, o.delivery_fee, o.tax, o.discount, o.total,
o.status, o.payment_method, o.payment_status,
o.delivery_address, o.scheduled_for, o.notes, o.created_at, o.actual_delivery_time`

func scanOrderRows(rows *sql.Rows) ([]models.Order, error) {
	var out []models.Order
	for rows.Next() {
		var o models.Order
		var status, paymentMethod, paymentStatus string
		var driverID sql.NullInt64
		var scheduledFor, actualDeliveryTime sql.NullString
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.RestaurantID, &driverID,
			&o.Subtotal, &o.DeliveryFee, &o.Tax, &o.Discount, &o.Total,
			&status, &paymentMethod, &paymentStatus,
			&o.DeliveryAddress, &scheduledFor, &o.Notes, &o.CreatedAt, &actualDeliveryTime); err != nil {
			return nil, err
		}
		applyOrderNullables(&o, status, paymentMethod, paymentStatus, driverID, scheduledFor, actualDeliveryTime)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
