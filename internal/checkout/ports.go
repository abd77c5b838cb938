package checkout

import (
	"context"

	"github.com/ariefcatur/go-checkout-orders/internal/orders"
	"github.com/segmentio/kafka-go"
)

// Store persists order snapshots. Update must fail with orders.ErrConflict when
// the stored version differs from the snapshot's Version; missing records are
// reported with orders.ErrNotFound.
type Store interface {
	Create(ctx context.Context, s orders.Snapshot) error
	Update(ctx context.Context, s orders.Snapshot) error
	Get(ctx context.Context, orderID string) (orders.Snapshot, error)
	GetByExternalID(ctx context.Context, externalID string) (orders.Snapshot, error)
	List(ctx context.Context) ([]orders.Snapshot, error)
	ListByCustomer(ctx context.Context, customerID string) ([]orders.Snapshot, error)
}

type CustomerLookup interface {
	FindCustomer(ctx context.Context, customerID string) (orders.Customer, error)
}

type ProductLookup interface {
	FindProduct(ctx context.Context, productID string) (orders.Product, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafka.Header)
}

type StatusCache interface {
	Put(ctx context.Context, v orders.StatusView) error
	Get(ctx context.Context, orderID string) (orders.StatusView, bool, error)
}

// Recorder counts lifecycle transitions. from is empty for a newly created order.
type Recorder interface {
	Transition(from, to orders.Status)
}
