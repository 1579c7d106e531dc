// internal/domain/catalog/entity.go
package catalog

import (
	"time"
)

type ProductStatus string

const (
	ProductDraft    ProductStatus = "draft"
	ProductActive   ProductStatus = "active"
	ProductArchived ProductStatus = "archived"
)

// Product SKUs are unique per store.
type Product struct {
	ID          string        `json:"id" db:"id"`
	StoreID     string        `json:"store_id" db:"store_id"`
	Name        string        `json:"name" db:"name"`
	SKU         string        `json:"sku" db:"sku"`
	Description string        `json:"description" db:"description"`
	Price       float64       `json:"price" db:"price"`
	Currency    string        `json:"currency" db:"currency"`
	Status      ProductStatus `json:"status" db:"status"`
	CategoryIDs []string      `json:"category_ids" db:"-"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time    `json:"-" db:"deleted_at"`
}

// Category slugs are unique per store.
type Category struct {
	ID        string    `json:"id" db:"id"`
	StoreID   string    `json:"store_id" db:"store_id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
