package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"foodMarketplace/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, role, availability, total_deliveries, total_earnings, created_at`

// Create inserts a new user with the given role.
func (r *UserRepository) Create(ctx context.Context, name, email string, role models.Role) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, role) VALUES (?,?,?)`, name, email, string(role))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// SetAvailability flips the driver presence flag.
func (r *UserRepository) SetAvailability(ctx context.Context, id int64, a models.Availability) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET availability = ? WHERE id = ?`, string(a), id)
	return err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var role, availability string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &availability,
		&u.TotalDeliveries, &u.TotalEarnings, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = models.Role(role)
	u.Availability = models.Availability(availability)
	return &u, nil
}
