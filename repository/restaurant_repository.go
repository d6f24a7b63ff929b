package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"foodMarketplace/models"
)

type RestaurantRepository struct {
	db *sql.DB
}

func NewRestaurantRepository(db *sql.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

const restaurantColumns = `id, owner_id, name, address, is_open, min_order_amount, delivery_fee, rating, review_count, image_url, created_at`

func (r *RestaurantRepository) Create(ctx context.Context, rest *models.Restaurant) (*models.Restaurant, error) {
	if rest == nil {
		return nil, errors.New("restaurant is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO restaurants (owner_id, name, address, is_open, min_order_amount, delivery_fee, image_url) VALUES (?,?,?,?,?,?,?)`,
		rest.OwnerID, rest.Name, rest.Address, rest.IsOpen, rest.MinOrderAmount, rest.DeliveryFee, rest.ImageURL)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rest models.Restaurant
	err := r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id).
		Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Address, &rest.IsOpen,
			&rest.MinOrderAmount, &rest.DeliveryFee, &rest.Rating, &rest.ReviewCount,
			&rest.ImageURL, &rest.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rest, nil
}

// GetByOwner returns the restaurant owned by the given user. Each
// owner has exactly one restaurant.
func (r *RestaurantRepository) GetByOwner(ctx context.Context, ownerID int64) (*models.Restaurant, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rest models.Restaurant
	err := r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE owner_id = ? LIMIT 1`, ownerID).
		Scan(&rest.ID, &rest.OwnerID, &rest.Name, &rest.Address, &rest.IsOpen,
			&rest.MinOrderAmount, &rest.DeliveryFee, &rest.Rating, &rest.ReviewCount,
			&rest.ImageURL, &rest.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rest, nil
}

// SetOpen toggles the accepting-orders flag.
func (r *RestaurantRepository) SetOpen(ctx context.Context, id int64, open bool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `UPDATE restaurants SET is_open = ? WHERE id = ?`, open, id)
	return err
}

const menuItemColumns = `id, restaurant_id, name, description, price, category, is_available, image_url, created_at`

func (r *RestaurantRepository) CreateMenuItem(ctx context.Context, m *models.MenuItem) (*models.MenuItem, error) {
	if m == nil {
		return nil, errors.New("menu item is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (restaurant_id, name, description, price, category, is_available, image_url) VALUES (?,?,?,?,?,?,?)`,
		m.RestaurantID, m.Name, m.Description, m.Price, m.Category, m.IsAvailable, m.ImageURL)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetMenuItem(ctx, id)
}

func (r *RestaurantRepository) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m models.MenuItem
	err := r.db.QueryRowContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE id = ?`, id).
		Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price,
			&m.Category, &m.IsAvailable, &m.ImageURL, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetMenuItems fetches the given menu items, restricted to one
// restaurant. Items belonging to another restaurant are simply absent
// from the result; the caller detects the gap.
func (r *RestaurantRepository) GetMenuItems(ctx context.Context, restaurantID int64, ids []int64) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, restaurantID)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items WHERE restaurant_id = ? AND id IN (`+strings.Join(placeholders, ",")+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MenuItem
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price,
			&m.Category, &m.IsAvailable, &m.ImageURL, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMenuItem removes a menu item. Historical order items keep their
// snapshots; the stats aggregator reports such items as "Unknown".
func (r *RestaurantRepository) DeleteMenuItem(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	return err
}
