package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"foodMarketplace/models"
)

type DeliveryRepository struct {
	db *sql.DB
}

func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

const deliveryColumns = `id, order_id, driver_id, status, driver_fee, pickup_time, delivery_time, created_at`

// Create inserts a delivery row in status assigned. The unique index on
// order_id guarantees at most one delivery per order.
func (r *DeliveryRepository) Create(ctx context.Context, d *models.Delivery) (*models.Delivery, error) {
	if d == nil {
		return nil, errors.New("delivery is nil")
	}
	if d.Status == "" {
		d.Status = models.DeliveryStatusAssigned
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO deliveries (order_id, driver_id, status, driver_fee) VALUES (?,?,?,?)`,
		d.OrderID, d.DriverID, string(d.Status), d.DriverFee)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id int64) (*models.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanDelivery(r.db.QueryRowContext(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE id = ?`, id))
}

func (r *DeliveryRepository) GetByOrderID(ctx context.Context, orderID int64) (*models.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanDelivery(r.db.QueryRowContext(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = ?`, orderID))
}

// ListByDriver returns all deliveries assigned to the driver, newest
// first.
func (r *DeliveryRepository) ListByDriver(ctx context.Context, driverID int64) ([]models.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE driver_id = ? ORDER BY created_at DESC, id DESC`,
		driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Delivery
	for rows.Next() {
		var d models.Delivery
		var status string
		var pickup, delivered sql.NullString
		if err := rows.Scan(&d.ID, &d.OrderID, &d.DriverID, &status, &d.DriverFee,
			&pickup, &delivered, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Status = models.DeliveryStatus(status)
		if pickup.Valid {
			v := pickup.String
			d.PickupTime = &v
		}
		if delivered.Valid {
			v := delivered.String
			d.DeliveryTime = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateStatusIf moves the delivery to the requested status only while
// the current status still matches. Returns false when no row changed.
func (r *DeliveryRepository) UpdateStatusIf(ctx context.Context, id int64, to, from models.DeliveryStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE deliveries SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Accept moves an assigned delivery to picked_up, stamps the pickup
// time and marks the driver busy, all in one transaction. Returns false
// without side effects when the delivery is no longer in assigned.
func (r *DeliveryRepository) Accept(ctx context.Context, id, driverID int64, pickupTime string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE deliveries SET status = ?, pickup_time = ? WHERE id = ? AND driver_id = ? AND status = ?`,
		string(models.DeliveryStatusPickedUp), pickupTime, id, driverID, string(models.DeliveryStatusAssigned))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET availability = ? WHERE id = ?`,
		string(models.AvailabilityBusy), driverID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// Complete moves an in_transit delivery to delivered, stamps the
// delivery time, credits the driver's lifetime counters as SQL-side
// increments and flips availability back to online. The status stamp
// and the increments happen together or not at all.
func (r *DeliveryRepository) Complete(ctx context.Context, id, driverID int64, deliveryTime string, driverFee float64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE deliveries SET status = ?, delivery_time = ? WHERE id = ? AND driver_id = ? AND status = ?`,
		string(models.DeliveryStatusDelivered), deliveryTime, id, driverID, string(models.DeliveryStatusInTransit))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET total_deliveries = total_deliveries + 1,
total_earnings = total_earnings + ?, availability = ? WHERE id = ?`,
		driverFee, string(models.AvailabilityOnline), driverID); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func scanDelivery(row *sql.Row) (*models.Delivery, error) {
	var d models.Delivery
	var status string
	var pickup, delivered sql.NullString
	err := row.Scan(&d.ID, &d.OrderID, &d.DriverID, &status, &d.DriverFee,
		&pickup, &delivered, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	d.Status = models.DeliveryStatus(status)
	if pickup.Valid {
		v := pickup.String
		d.PickupTime = &v
	}
	if delivered.Valid {
		v := delivered.String
		d.DeliveryTime = &v
	}
	return &d, nil
}
