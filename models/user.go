package models

// Role determines which authorization rules apply to an actor.
// It is fixed at account creation and is not a capability list.
type Role string

const (
	RoleCustomer        Role = "customer"
	RoleRestaurantOwner Role = "restaurant_owner"
	RoleDriver          Role = "driver"
	RoleAdmin           Role = "admin"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantOwner, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// Availability is the driver presence flag. Only meaningful for users
// with RoleDriver; other roles keep the zero value.
type Availability string

const (
	AvailabilityOnline  Availability = "online"
	AvailabilityBusy    Availability = "busy"
	AvailabilityOffline Availability = "offline"
)

// User maps to the `users` table.
type User struct {
	ID              int64        `db:"id" json:"id"`
	Name            string       `db:"name" json:"name"`
	Email           string       `db:"email" json:"email"`
	Role            Role         `db:"role" json:"role"`
	Availability    Availability `db:"availability" json:"availability,omitempty"`
	TotalDeliveries int64        `db:"total_deliveries" json:"total_deliveries,omitempty"`
	TotalEarnings   float64      `db:"total_earnings" json:"total_earnings,omitempty"`
	CreatedAt       string       `db:"created_at" json:"created_at"`
}
