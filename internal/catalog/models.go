package catalog

import "time"

// Product is one catalog entry the assistant can talk about.
type Product struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description,omitempty" db:"description"`
	PriceMinor  int64   `json:"price_minor" db:"price_minor"`
	Currency    string  `json:"currency" db:"currency"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryItem tracks stock for a product.
type InventoryItem struct {
	ProductID string    `json:"product_id" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryReport is the answer to an inventory query. Items is always
// non-nil; Message spells out the empty case so chat surfaces can relay it
// verbatim.
type InventoryReport struct {
	Message string          `json:"message"`
	Items   []InventoryItem `json:"items"`
}
