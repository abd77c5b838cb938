package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Money columns are unconstrained NUMERIC so sale prices round-trip with the
// exact scale the order accepted.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       NUMERIC NOT NULL CHECK (price > 0),
		status      TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id             TEXT PRIMARY KEY,
		external_id    TEXT UNIQUE,
		customer_id    TEXT NOT NULL REFERENCES customers(id),
		status         TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		version        INT NOT NULL DEFAULT 1,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_idx ON orders(customer_id)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id           TEXT PRIMARY KEY,
		order_id     TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position     INT NOT NULL,
		product_id   TEXT NOT NULL,
		product_name TEXT NOT NULL,
		unit_price   NUMERIC NOT NULL,
		qty          INT NOT NULL CHECK (qty > 0),
		sale_price   NUMERIC NOT NULL CHECK (sale_price > 0),
		UNIQUE (order_id, product_id)
	)`,
}

// Migrate creates the tables used by the order service when they are missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i, err)
		}
	}
	return nil
}
