package memstore

import (
	"time"

	"github.com/ariefcatur/go-checkout-orders/internal/orders"
	"github.com/shopspring/decimal"
)

// Seed fills c with a small demo catalog for STORAGE=memory.
func Seed(c *Catalog) {
	now := time.Now().UTC()
	for _, p := range []struct{ id, name, price string }{
		{"p-keyboard", "Mechanical Keyboard", "349.90"},
		{"p-mouse", "Wireless Mouse", "89.50"},
		{"p-monitor", "27in Monitor", "1299.00"},
	} {
		c.PutProduct(orders.Product{
			ID:        p.id,
			Name:      p.name,
			Price:     decimal.RequireFromString(p.price),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	c.PutCustomer(orders.Customer{ID: "c-active", Name: "Ana Souza", Email: "ana@example.com", Status: orders.CustomerActive})
	c.PutCustomer(orders.Customer{ID: "c-inactive", Name: "Bruno Lima", Email: "bruno@example.com", Status: orders.CustomerInactive})
}
