package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type PostgresCatalog struct {
	db *sqlx.DB
}

func NewPostgresCatalog(db *sqlx.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) List(ctx context.Context) ([]Product, error) {
	const q = `SELECT * FROM products ORDER BY product_id`

	products := []Product{}
	if err := sqlx.SelectContext(ctx, c.db, &products, q); err != nil {
		return nil, fmt.Errorf("selecting products: %w", err)
	}

	return products, nil
}

func (c *PostgresCatalog) Fetch(ctx context.Context, id string) (Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1`

	var p Product
	if err := sqlx.GetContext(ctx, c.db, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("selecting product[%s]: %w", id, err)
	}

	return p, nil
}
