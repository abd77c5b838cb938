package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repo stores order snapshots in postgres. Money columns are NUMERIC and travel as text.
type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, COALESCE(external_id, ''), customer_id, created_at, status, payment_status, version`

// Create inserts a new order with its items. A duplicate external id is reported as ErrConflict.
func (r *Repo) Create(ctx context.Context, s Snapshot) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, external_id, customer_id, created_at, status, payment_status, version)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
	`, s.ID, s.ExternalID, s.CustomerID, s.CreatedAt, string(s.Status), string(s.PaymentStatus), s.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("create order %s: %w", s.ID, ErrConflict)
		}
		return err
	}
	if err := insertItems(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update writes s if the stored version still equals s.Version and bumps the version.
func (r *Repo) Update(ctx context.Context, s Snapshot) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE orders SET status=$3, payment_status=$4, version=version+1, updated_at=now()
		WHERE id=$1 AND version=$2
	`, s.ID, s.Version, string(s.Status), string(s.PaymentStatus))
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("update order %s at version %d: %w", s.ID, s.Version, ErrConflict)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, s.ID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertItems(ctx context.Context, tx pgx.Tx, s Snapshot) error {
	for pos, it := range s.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, position, product_id, product_name, unit_price, qty, sale_price)
			VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric)`,
			it.ID, s.ID, pos, it.ProductID, it.ProductName, it.UnitPrice.String(), it.Quantity, it.SalePrice.String(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, orderID string) (Snapshot, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, orderID)
}

func (r *Repo) GetByExternalID(ctx context.Context, externalID string) (Snapshot, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE external_id=$1`, externalID)
}

func (r *Repo) getOne(ctx context.Context, query, arg string) (Snapshot, error) {
	s, err := scanOrder(r.DB.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, NotFoundf("order %s not found", arg)
	}
	if err != nil {
		return Snapshot{}, err
	}
	items, err := r.itemsFor(ctx, []string{s.ID})
	if err != nil {
		return Snapshot{}, err
	}
	s.Items = items[s.ID]
	return s, nil
}

func (r *Repo) List(ctx context.Context) ([]Snapshot, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at`)
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID string) ([]Snapshot, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id=$1 ORDER BY created_at`, customerID)
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]Snapshot, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		s, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, s := range out {
		ids = append(ids, s.ID)
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func scanOrder(row pgx.Row) (Snapshot, error) {
	var (
		s             Snapshot
		status, payst string
	)
	if err := row.Scan(&s.ID, &s.ExternalID, &s.CustomerID, &s.CreatedAt, &status, &payst, &s.Version); err != nil {
		return Snapshot{}, err
	}
	s.Status = Status(status)
	s.PaymentStatus = PaymentStatus(payst)
	return s, nil
}

func (r *Repo) itemsFor(ctx context.Context, orderIDs []string) (map[string][]ItemSnapshot, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, id, product_id, product_name, unit_price::text, qty, sale_price::text
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]ItemSnapshot, len(orderIDs))
	for rows.Next() {
		var (
			orderID         string
			it              ItemSnapshot
			unitPrice, sale string
		)
		if err := rows.Scan(&orderID, &it.ID, &it.ProductID, &it.ProductName, &unitPrice, &it.Quantity, &sale); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("order item %s unit price: %w", it.ID, err)
		}
		if it.SalePrice, err = decimal.NewFromString(sale); err != nil {
			return nil, fmt.Errorf("order item %s sale price: %w", it.ID, err)
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}
