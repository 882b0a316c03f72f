package product

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound reports a product id that no longer resolves in the catalog.
var ErrNotFound = errors.New("product not found")

type Product struct {
	ID        string          `json:"id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	ImageURL  string          `json:"imageUrl" db:"image_url"`
	Category  string          `json:"category" db:"category"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// Catalog is the read-only product lookup the rest of the system consumes.
type Catalog interface {
	List(ctx context.Context) ([]Product, error)
	Fetch(ctx context.Context, id string) (Product, error)
}
