package models

// Restaurant maps to the `restaurants` table. Exactly one owning user.
// Rating and ReviewCount are maintained by the review subsystem; the
// core only ever reads them.
type Restaurant struct {
	ID             int64   `db:"id" json:"id"`
	OwnerID        int64   `db:"owner_id" json:"owner_id"`
	Name           string  `db:"name" json:"name"`
	Address        string  `db:"address" json:"address"`
	IsOpen         bool    `db:"is_open" json:"is_open"`
	MinOrderAmount float64 `db:"min_order_amount" json:"min_order_amount"`
	DeliveryFee    float64 `db:"delivery_fee" json:"delivery_fee"`
	Rating         float64 `db:"rating" json:"rating"`
	ReviewCount    int64   `db:"review_count" json:"review_count"`
	// ImageURL is supplied by the upload collaborator and stored verbatim.
	ImageURL  string `db:"image_url" json:"image_url,omitempty"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// MenuItem maps to the `menu_items` table.
type MenuItem struct {
	ID           int64   `db:"id" json:"id"`
	RestaurantID int64   `db:"restaurant_id" json:"restaurant_id"`
	Name         string  `db:"name" json:"name"`
	Description  string  `db:"description" json:"description,omitempty"`
	Price        float64 `db:"price" json:"price"`
	Category     string  `db:"category" json:"category,omitempty"`
	IsAvailable  bool    `db:"is_available" json:"is_available"`
	ImageURL     string  `db:"image_url" json:"image_url,omitempty"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
}
