package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/storely/storefront/database"
)

// Store is the durable cart line storage, partitioned by cart id. It is
// injected into handlers and the checkout builder; nothing holds cart
// state in process memory between requests.
type Store interface {
	AddLine(ctx context.Context, cartID, productID string, quantity int) error
	SetQuantity(ctx context.Context, cartID, productID string, quantity int) error
	DeleteLine(ctx context.Context, cartID, productID string) error
	Empty(ctx context.Context, cartID string) error
	Lines(ctx context.Context, cartID string) ([]Line, error)
}

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AddLine appends a row. Duplicate (cartID, productID) pairs are expected
// and resolved by summation at read time.
func (s *PostgresStore) AddLine(ctx context.Context, cartID, productID string, quantity int) error {
	const q = `INSERT INTO cart (cart_id, product_id, quantity, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := s.db.ExecContext(ctx, q, cartID, productID, quantity, time.Now().UTC()); err != nil {
		return fmt.Errorf("inserting cart line: %w", err)
	}

	return nil
}

// SetQuantity replaces every row of the pair with a single row holding the
// exact quantity. Running delete and insert in one transaction gives the
// operation upsert semantics regardless of how many rows accumulated, and
// it cannot fail on a missing prior row.
func (s *PostgresStore) SetQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	err := database.Transaction(s.db, func(tx sqlx.ExtContext) error {
		const del = `DELETE FROM cart WHERE cart_id = $1 AND product_id = $2`
		if _, err := tx.ExecContext(ctx, del, cartID, productID); err != nil {
			return fmt.Errorf("clearing cart line: %w", err)
		}

		const ins = `INSERT INTO cart (cart_id, product_id, quantity, created_at) VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, ins, cartID, productID, quantity, time.Now().UTC()); err != nil {
			return fmt.Errorf("inserting cart line: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("setting quantity for cart[%s] product[%s]: %w", cartID, productID, err)
	}
	return nil
}

// DeleteLine removes every row of the pair. Deleting an absent line is
// not an error.
func (s *PostgresStore) DeleteLine(ctx context.Context, cartID, productID string) error {
	const q = `DELETE FROM cart WHERE cart_id = $1 AND product_id = $2`

	if _, err := s.db.ExecContext(ctx, q, cartID, productID); err != nil {
		return fmt.Errorf("deleting cart line: %w", err)
	}

	return nil
}

// Empty removes every row of the cart. Emptying an empty cart is not an
// error.
func (s *PostgresStore) Empty(ctx context.Context, cartID string) error {
	const q = `DELETE FROM cart WHERE cart_id = $1`

	if _, err := s.db.ExecContext(ctx, q, cartID); err != nil {
		return fmt.Errorf("emptying cart: %w", err)
	}

	return nil
}

// Lines returns one aggregated line per product. The aggregation is a
// single statement, so it always reflects one consistent snapshot of the
// committed rows.
func (s *PostgresStore) Lines(ctx context.Context, cartID string) ([]Line, error) {
	const q = `
	SELECT cart_id, product_id, SUM(quantity) AS quantity
	FROM cart
	WHERE cart_id = $1
	GROUP BY cart_id, product_id`

	lines := []Line{}
	if err := sqlx.SelectContext(ctx, s.db, &lines, q, cartID); err != nil {
		return nil, fmt.Errorf("selecting cart lines: %w", err)
	}

	return lines, nil
}
