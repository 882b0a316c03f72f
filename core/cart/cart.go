package cart

// Line is one aggregated cart entry: the summed quantity of every stored
// row for a (cartId, productId) pair. Storage may hold the pair several
// times; callers only ever see it once.
type Line struct {
	CartID    string `json:"-" db:"cart_id"`
	ProductID string `json:"productId" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// LineNew is the add-to-cart payload. Adding the same product again
// accumulates quantity instead of failing.
type LineNew struct {
	CartID    string `json:"cartId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// LineUp sets the exact quantity for a pair. Values below 1 are clamped to
// 1 by the handler: a quantity can never reach zero through an update,
// only through an explicit delete.
type LineUp struct {
	CartID    string `json:"cartId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type LineDelete struct {
	CartID    string `json:"cartId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
}

type CartEmpty struct {
	CartID string `json:"cartId" validate:"required"`
}
