package models

// RestaurantStats is the result shape of the statistics aggregator.
// It is recomputed from raw order rows on every call; nothing here is
// ever persisted.
type RestaurantStats struct {
	RestaurantID int64          `json:"restaurant_id"`
	Orders       OrderCounts    `json:"orders"`
	Revenue      RevenueSummary `json:"revenue"`
	DailyOrders  []DailyStat    `json:"daily_orders"`
	PopularItems []PopularItem  `json:"popular_items"`
}

// OrderCounts partitions the restaurant's orders by status and by
// calendar window. Completed means status == delivered.
type OrderCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Monthly   int64 `json:"monthly"`
	Yearly    int64 `json:"yearly"`
}

// RevenueSummary sums Order.Total over delivered orders. Empty windows
// yield 0, never null.
type RevenueSummary struct {
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// DailyStat is one day of the trailing daily window.
type DailyStat struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// PopularItem ranks a menu item by units sold across delivered orders.
// Name, Price and ImageURL reflect the menu item as it exists now; if
// the item was deleted since, Name is "Unknown" and Price is 0 while
// the sold/revenue figures are preserved.
type PopularItem struct {
	MenuItemID int64   `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	ImageURL   string  `json:"image_url,omitempty"`
	Sold       int64   `json:"sold"`
	Revenue    float64 `json:"revenue"`
}
