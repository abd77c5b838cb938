package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkax "github.com/ariefcatur/go-checkout-orders/internal/kafka"
	"github.com/ariefcatur/go-checkout-orders/internal/orders"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

// Service loads, mutates and saves orders. Mutations on one order id are
// serialised in process; the store's version check covers other processes.
//
// Cache, Created, StatusChanged and Metrics are optional.
type Service struct {
	Store     Store
	Customers CustomerLookup
	Products  ProductLookup

	Cache         StatusCache
	Created       Publisher // order.created
	StatusChanged Publisher // order.status.changed
	Metrics       Recorder

	ServiceName string
	Log         *slog.Logger

	locks keyedMutex
}

// CreateOrder opens an order for customerID. A non-empty idempotencyKey that
// was already used by the same customer returns the existing order with
// created=false; a key used by another customer is a conflict.
func (s *Service) CreateOrder(ctx context.Context, customerID, idempotencyKey string) (*orders.Order, bool, error) {
	var customer *orders.Customer
	if customerID != "" {
		c, err := s.Customers.FindCustomer(ctx, customerID)
		if err != nil {
			return nil, false, err
		}
		customer = &c
	}
	o, err := orders.New(customer)
	if err != nil {
		return nil, false, err
	}

	if idempotencyKey != "" {
		unlock := s.locks.Lock("idem:" + idempotencyKey)
		defer unlock()

		snap, err := s.Store.GetByExternalID(ctx, idempotencyKey)
		switch {
		case err == nil:
			if snap.CustomerID != customerID {
				return nil, false, orders.Conflictf("idempotency key %s was used by another customer", idempotencyKey)
			}
			existing, err := restore(snap)
			return existing, false, err
		case !errors.Is(err, orders.ErrNotFound):
			return nil, false, err
		}
	}

	snap := o.Snapshot()
	snap.ExternalID = idempotencyKey
	snap.Version = 1
	if err := s.Store.Create(ctx, snap); err != nil {
		return nil, false, fmt.Errorf("create order: %w", err)
	}

	s.log().Info("order created", "order_id", o.ID(), "customer_id", o.CustomerID())
	s.cache(ctx, snap)
	s.publish(ctx, s.Created, orders.EventOrderCreated, snap.ID, orders.OrderCreatedPayload{
		OrderID:    snap.ID,
		ExternalID: snap.ExternalID,
		CustomerID: snap.CustomerID,
	})
	if s.Metrics != nil {
		s.Metrics.Transition("", snap.Status)
	}
	return o, true, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*orders.Order, error) {
	snap, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return restore(snap)
}

func (s *Service) ListOrders(ctx context.Context) ([]*orders.Order, error) {
	snaps, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return restoreAll(snaps)
}

func (s *Service) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*orders.Order, error) {
	snaps, err := s.Store.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return restoreAll(snaps)
}

func restoreAll(snaps []orders.Snapshot) ([]*orders.Order, error) {
	out := make([]*orders.Order, 0, len(snaps))
	for _, snap := range snaps {
		o, err := restore(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// restore rebuilds a stored order. A snapshot that fails validation is a
// storage fault, so the error kind is dropped and callers see a plain error.
func restore(snap orders.Snapshot) (*orders.Order, error) {
	o, err := orders.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("corrupt stored order %s: %v", snap.ID, err)
	}
	return o, nil
}

// OrderStatus serves the status read model, falling back to the store on a cache miss.
func (s *Service) OrderStatus(ctx context.Context, orderID string) (orders.StatusView, error) {
	if s.Cache != nil {
		v, ok, err := s.Cache.Get(ctx, orderID)
		if err != nil {
			s.log().Warn("status cache read failed", "order_id", orderID, "err", err)
		} else if ok {
			return v, nil
		}
	}
	snap, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return orders.StatusView{}, err
	}
	s.cache(ctx, snap)
	return orders.ViewOf(snap), nil
}

// AddItem resolves productID in the catalog and adds it to the order. A nil
// salePrice means the current catalog price.
func (s *Service) AddItem(ctx context.Context, orderID, productID string, quantity int, salePrice *decimal.Decimal) (*orders.Order, error) {
	p, err := s.Products.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	price := p.Price
	if salePrice != nil {
		price = *salePrice
	}
	return s.mutate(ctx, orderID, func(o *orders.Order) error {
		return o.AddItem(&p, quantity, price)
	})
}

func (s *Service) RemoveItem(ctx context.Context, orderID, productID string) (*orders.Order, error) {
	return s.mutate(ctx, orderID, func(o *orders.Order) error {
		return o.RemoveItem(productID)
	})
}

func (s *Service) UpdateItemQuantity(ctx context.Context, orderID, productID string, quantity int) (*orders.Order, error) {
	return s.mutate(ctx, orderID, func(o *orders.Order) error {
		return o.UpdateItemQuantity(productID, quantity)
	})
}

func (s *Service) Finalize(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.mutate(ctx, orderID, (*orders.Order).Finalize)
}

func (s *Service) Pay(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.mutate(ctx, orderID, (*orders.Order).Pay)
}

func (s *Service) Deliver(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.mutate(ctx, orderID, (*orders.Order).Deliver)
}

func (s *Service) Cancel(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.mutate(ctx, orderID, (*orders.Order).Cancel)
}

func (s *Service) mutate(ctx context.Context, orderID string, fn func(*orders.Order) error) (*orders.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	snap, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o, err := restore(snap)
	if err != nil {
		return nil, err
	}
	prev := o.Status()
	if err := fn(o); err != nil {
		return nil, err
	}

	next := o.Snapshot()
	next.ExternalID = snap.ExternalID
	next.Version = snap.Version
	if err := s.Store.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("save order %s: %w", orderID, err)
	}
	next.Version++

	s.cache(ctx, next)
	if next.Status != prev {
		s.log().Info("order status changed", "order_id", orderID, "from", prev, "to", next.Status,
			"payment_status", next.PaymentStatus)
		s.publish(ctx, s.StatusChanged, orders.EventOrderStatusChanged, orderID, orders.StatusChanged(next, prev))
		if s.Metrics != nil {
			s.Metrics.Transition(prev, next.Status)
		}
	}
	return o, nil
}

func (s *Service) cache(ctx context.Context, snap orders.Snapshot) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Put(ctx, orders.ViewOf(snap)); err != nil {
		s.log().Warn("status cache write failed", "order_id", snap.ID, "err", err)
	}
}

func (s *Service) publish(ctx context.Context, p Publisher, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev, err := orders.NewEnvelope(eventType, s.ServiceName, orderID, middleware.GetReqID(ctx), payload)
	if err != nil {
		s.log().Warn("event encode failed", "order_id", orderID, "event_type", eventType, "err", err)
		return
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev), kafkax.Headers(eventType, ev.EventVersion)...)
}

func (s *Service) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
