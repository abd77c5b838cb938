// Package memstore holds in-memory implementations of the order store, the
// product catalog and the customer directory.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ariefcatur/go-checkout-orders/internal/orders"
)

type Orders struct {
	mu     sync.RWMutex
	byID   map[string]orders.Snapshot
	byExt  map[string]string
	serial []string // creation order
}

func NewOrders() *Orders {
	return &Orders{
		byID:  make(map[string]orders.Snapshot),
		byExt: make(map[string]string),
	}
}

func (m *Orders) Create(_ context.Context, s orders.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[s.ID]; ok {
		return fmt.Errorf("create order %s: %w", s.ID, orders.ErrConflict)
	}
	if s.ExternalID != "" {
		if _, ok := m.byExt[s.ExternalID]; ok {
			return fmt.Errorf("create order %s: %w", s.ID, orders.ErrConflict)
		}
		m.byExt[s.ExternalID] = s.ID
	}
	m.byID[s.ID] = clone(s)
	m.serial = append(m.serial, s.ID)
	return nil
}

func (m *Orders) Update(_ context.Context, s orders.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[s.ID]
	if !ok {
		return orders.NotFoundf("order %s not found", s.ID)
	}
	if cur.Version != s.Version {
		return fmt.Errorf("update order %s at version %d: %w", s.ID, s.Version, orders.ErrConflict)
	}
	s = clone(s)
	s.Version++
	m.byID[s.ID] = s
	return nil
}

func (m *Orders) Get(_ context.Context, orderID string) (orders.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[orderID]
	if !ok {
		return orders.Snapshot{}, orders.NotFoundf("order %s not found", orderID)
	}
	return clone(s), nil
}

func (m *Orders) GetByExternalID(ctx context.Context, externalID string) (orders.Snapshot, error) {
	m.mu.RLock()
	id, ok := m.byExt[externalID]
	m.mu.RUnlock()
	if !ok {
		return orders.Snapshot{}, orders.NotFoundf("order %s not found", externalID)
	}
	return m.Get(ctx, id)
}

func (m *Orders) List(_ context.Context) ([]orders.Snapshot, error) {
	return m.filter(func(orders.Snapshot) bool { return true }), nil
}

func (m *Orders) ListByCustomer(_ context.Context, customerID string) ([]orders.Snapshot, error) {
	return m.filter(func(s orders.Snapshot) bool { return s.CustomerID == customerID }), nil
}

func (m *Orders) filter(keep func(orders.Snapshot) bool) []orders.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]orders.Snapshot, 0, len(m.serial))
	for _, id := range m.serial {
		if s := m.byID[id]; keep(s) {
			out = append(out, clone(s))
		}
	}
	return out
}

func clone(s orders.Snapshot) orders.Snapshot {
	s.Items = append([]orders.ItemSnapshot(nil), s.Items...)
	return s
}

// Catalog is an in-memory product catalog and customer directory.
type Catalog struct {
	mu        sync.RWMutex
	products  map[string]orders.Product
	customers map[string]orders.Customer
}

func NewCatalog() *Catalog {
	return &Catalog{
		products:  make(map[string]orders.Product),
		customers: make(map[string]orders.Customer),
	}
}

func (c *Catalog) PutProduct(p orders.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *Catalog) PutCustomer(cu orders.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers[cu.ID] = cu
}

func (c *Catalog) FindProduct(_ context.Context, productID string) (orders.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return orders.Product{}, orders.NotFoundf("product %s not found", productID)
	}
	return p, nil
}

func (c *Catalog) ListProducts(_ context.Context) ([]orders.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]orders.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) FindCustomer(_ context.Context, customerID string) (orders.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cu, ok := c.customers[customerID]
	if !ok {
		return orders.Customer{}, orders.NotFoundf("customer %s not found", customerID)
	}
	return cu, nil
}
