package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("catalog: product not found")
	ErrInvalidInput = errors.New("catalog: invalid input")
)

// Product is a storefront catalog entry. Prices are integer cents to avoid
// floating point drift.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sort keys accepted by listing.
const (
	SortByID    = "id"
	SortByName  = "name"
	SortByPrice = "price"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Filter narrows and orders a product listing. Zero values mean "no
// constraint"; nil price bounds are open-ended.
type Filter struct {
	Name     string
	MinPrice *int64
	MaxPrice *int64
	SortBy   string
	Order    string
}
