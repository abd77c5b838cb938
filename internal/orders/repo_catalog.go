package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogRepo answers the product and customer lookups from postgres.
type CatalogRepo struct{ DB *pgxpool.Pool }

func (r *CatalogRepo) FindProduct(ctx context.Context, productID string) (Product, error) {
	var (
		p     Product
		price string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, price::text, created_at, updated_at
		FROM products WHERE id=$1 AND status='ACTIVE'`, productID).
		Scan(&p.ID, &p.Name, &price, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, NotFoundf("product %s not found", productID)
	}
	if err != nil {
		return Product{}, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return Product{}, fmt.Errorf("product %s price: %w", productID, err)
	}
	return p, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, price::text, created_at, updated_at
	                              FROM products WHERE status='ACTIVE' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var (
			p     Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("product %s price: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) FindCustomer(ctx context.Context, customerID string) (Customer, error) {
	var (
		c      Customer
		status string
	)
	err := r.DB.QueryRow(ctx, `SELECT id, name, email, status FROM customers WHERE id=$1`, customerID).
		Scan(&c.ID, &c.Name, &c.Email, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, NotFoundf("customer %s not found", customerID)
	}
	if err != nil {
		return Customer{}, err
	}
	c.Status = CustomerStatus(status)
	return c, nil
}
