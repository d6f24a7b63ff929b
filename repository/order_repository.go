package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"foodMarketplace/models"
)

// OrderRepository is the core repository for Order entities. Status
// mutations are conditional on the current status so that two racing
// transitions cannot both succeed.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, order_number, customer_id, restaurant_id, driver_id,
subtotal, delivery_fee, tax, discount, total,
status, payment_method, payment_status,
delivery_address, scheduled_for, notes, created_at, actual_delivery_time`

// Create inserts the order together with its items and customizations
// in one transaction. Item snapshots are immutable afterwards.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO orders
(order_number, customer_id, restaurant_id, subtotal, delivery_fee, tax, discount, total,
 status, payment_method, payment_status, delivery_address, scheduled_for, notes)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.OrderNumber, o.CustomerID, o.RestaurantID,
		o.Subtotal, o.DeliveryFee, o.Tax, o.Discount, o.Total,
		string(o.Status), string(o.PaymentMethod), string(o.PaymentStatus),
		o.DeliveryAddress, o.ScheduledFor, o.Notes)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for i := range o.Items {
		item := &o.Items[i]
		res, err := tx.ExecContext(ctx, `INSERT INTO order_items
(order_id, menu_item_id, name, unit_price, quantity, subtotal) VALUES (?,?,?,?,?,?)`,
			orderID, item.MenuItemID, item.Name, item.UnitPrice, item.Quantity, item.Subtotal)
		if err != nil {
			return nil, err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		for _, c := range item.Customizations {
			if _, err := tx.ExecContext(ctx, `INSERT INTO order_item_customizations
(order_item_id, name, price_modifier) VALUES (?,?,?)`,
				itemID, c.Name, c.PriceModifier); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// GetByID fetches an order with its items and customizations.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil || o == nil {
		return o, err
	}
	items, err := r.itemsForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) itemsForOrder(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, menu_item_id, name, unit_price, quantity, subtotal
FROM order_items WHERE order_id = ? ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name,
			&it.UnitPrice, &it.Quantity, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		crows, err := r.db.QueryContext(ctx,
			`SELECT id, order_item_id, name, price_modifier
FROM order_item_customizations WHERE order_item_id = ? ORDER BY id ASC`, items[i].ID)
		if err != nil {
			return nil, err
		}
		for crows.Next() {
			var c models.Customization
			if err := crows.Scan(&c.ID, &c.OrderItemID, &c.Name, &c.PriceModifier); err != nil {
				crows.Close()
				return nil, err
			}
			items[i].Customizations = append(items[i].Customizations, c)
		}
		if err := crows.Err(); err != nil {
			crows.Close()
			return nil, err
		}
		crows.Close()
	}
	return items, nil
}

// UpdateStatusIf moves the order to the requested status only while its
// current status is still in the expected set. Returns false when the
// row was not updated, i.e. the state already moved on (or the order
// does not exist); the caller distinguishes the two by re-reading.
// deliveredAt, when non-nil, stamps actual_delivery_time in the same
// write.
func (r *OrderRepository) UpdateStatusIf(ctx context.Context, id int64, to models.OrderStatus, deliveredAt *string, from ...models.OrderStatus) (bool, error) {
	if len(from) == 0 {
		return false, errors.New("expected status set is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	placeholders := make([]string, len(from))
	args := []any{string(to)}
	if deliveredAt != nil {
		args = append(args, *deliveredAt)
	}
	args = append(args, id)
	for i, s := range from {
		placeholders[i] = "?"
		args = append(args, string(s))
	}

	set := `status = ?`
	if deliveredAt != nil {
		set += `, actual_delivery_time = ?`
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET `+set+` WHERE id = ? AND status IN (`+strings.Join(placeholders, ",")+`)`,
		args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetDriver records the assigned driver on the order row.
func (r *OrderRepository) SetDriver(ctx context.Context, orderID, driverID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET driver_id = ? WHERE id = ?`, driverID, orderID)
	return err
}

// AppendStatusHistory records one applied transition for auditing.
func (r *OrderRepository) AppendStatusHistory(ctx context.Context, orderID int64, from, to models.OrderStatus, changedBy int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, from_status, to_status, changed_by) VALUES (?,?,?,?)`,
		orderID, string(from), string(to), changedBy)
	return err
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	var o models.Order
	var status, paymentMethod, paymentStatus string
	var driverID sql.NullInt64
	var scheduledFor, actualDeliveryTime sql.NullString
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.RestaurantID, &driverID,
		&o.Subtotal, &o.DeliveryFee, &o.Tax, &o.Discount, &o.Total,
		&status, &paymentMethod, &paymentStatus,
		&o.DeliveryAddress, &scheduledFor, &o.Notes, &o.CreatedAt, &actualDeliveryTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	applyOrderNullables(&o, status, paymentMethod, paymentStatus, driverID, scheduledFor, actualDeliveryTime)
	return &o, nil
}

func applyOrderNullables(o *models.Order, status, paymentMethod, paymentStatus string,
	driverID sql.NullInt64, scheduledFor, actualDeliveryTime sql.NullString) {
	o.Status = models.OrderStatus(status)
	o.PaymentMethod = models.PaymentMethod(paymentMethod)
	o.PaymentStatus = models.PaymentStatus(paymentStatus)
	if driverID.Valid {
		v := driverID.Int64
		o.DriverID = &v
	}
	if scheduledFor.Valid {
		v := scheduledFor.String
		o.ScheduledFor = &v
	}
	if actualDeliveryTime.Valid {
		v := actualDeliveryTime.String
		o.ActualDeliveryTime = &v
	}
}
