package models

// Review maps to the `reviews` table. Review CRUD lives outside the
// core; the record exists here because the entity store owns its schema
// and the restaurant rating counters derive from it.
type Review struct {
	ID           int64   `db:"id" json:"id"`
	RestaurantID int64   `db:"restaurant_id" json:"restaurant_id"`
	CustomerID   int64   `db:"customer_id" json:"customer_id"`
	OrderID      int64   `db:"order_id" json:"order_id"`
	Rating       int64   `db:"rating" json:"rating"`
	Comment      string  `db:"comment" json:"comment,omitempty"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
}
