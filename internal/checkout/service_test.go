package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/ariefcatur/go-checkout-orders/internal/memstore"
	"github.com/ariefcatur/go-checkout-orders/internal/orders"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafka.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, kafka.Message{Key: key, Value: value, Headers: headers})
}

func (p *fakePublisher) envelopes(t *testing.T) []orders.Envelope {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]orders.Envelope, 0, len(p.msgs))
	for _, m := range p.msgs {
		var env orders.Envelope
		require.NoError(t, json.Unmarshal(m.Value, &env))
		out = append(out, env)
	}
	return out
}

type fakeCache struct {
	mu    sync.Mutex
	views map[string]orders.StatusView
	gets  int
	fail  bool
}

func (c *fakeCache) Put(_ context.Context, v orders.StatusView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("redis down")
	}
	if c.views == nil {
		c.views = map[string]orders.StatusView{}
	}
	c.views[v.OrderID] = v
	return nil
}

func (c *fakeCache) Get(_ context.Context, id string) (orders.StatusView, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.fail {
		return orders.StatusView{}, false, errors.New("redis down")
	}
	v, ok := c.views[id]
	return v, ok, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	moves []string
}

func (r *fakeRecorder) Transition(from, to orders.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, string(from)+">"+string(to))
}

type fixture struct {
	svc     *Service
	store   *memstore.Orders
	created *fakePublisher
	changed *fakePublisher
	cache   *fakeCache
	rec     *fakeRecorder
}

func newFixture() *fixture {
	cat := memstore.NewCatalog()
	cat.PutCustomer(orders.Customer{ID: "c1", Name: "Ana", Status: orders.CustomerActive})
	cat.PutCustomer(orders.Customer{ID: "c2", Status: orders.CustomerInactive})
	cat.PutCustomer(orders.Customer{ID: "c3", Name: "Bia", Status: orders.CustomerActive})
	cat.PutProduct(orders.Product{ID: "p1", Name: "Keyboard", Price: decimal.RequireFromString("50.00")})
	cat.PutProduct(orders.Product{ID: "p2", Name: "Mouse", Price: decimal.RequireFromString("20.00")})

	f := &fixture{
		store:   memstore.NewOrders(),
		created: &fakePublisher{},
		changed: &fakePublisher{},
		cache:   &fakeCache{},
		rec:     &fakeRecorder{},
	}
	f.svc = &Service{
		Store:         f.store,
		Customers:     cat,
		Products:      cat,
		Cache:         f.cache,
		Created:       f.created,
		StatusChanged: f.changed,
		Metrics:       f.rec,
		ServiceName:   "test",
	}
	return f
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, created, err := f.svc.CreateOrder(ctx, "c1", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, orders.StatusOpen, o.Status())

	snap, err := f.store.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Version)

	envs := f.created.envelopes(t)
	require.Len(t, envs, 1)
	assert.Equal(t, orders.EventOrderCreated, envs[0].EventType)
	assert.Equal(t, o.ID(), envs[0].CorrelationID)
	assert.Equal(t, []string{">OPEN"}, f.rec.moves)
	assert.Contains(t, f.cache.views, o.ID())
}

func TestCreateOrder_Failures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, _, err := f.svc.CreateOrder(ctx, "nobody", "")
	assert.ErrorIs(t, err, orders.ErrNotFound)

	_, _, err = f.svc.CreateOrder(ctx, "c2", "")
	assert.ErrorIs(t, err, orders.ErrInvalidOrderData)

	_, _, err = f.svc.CreateOrder(ctx, "", "")
	assert.ErrorIs(t, err, orders.ErrInvalidOrderData)

	all, err := f.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.created.envelopes(t))
}

func TestCreateOrder_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, created, err := f.svc.CreateOrder(ctx, "c1", "cart-42")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.svc.CreateOrder(ctx, "c1", "cart-42")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID(), again.ID())

	all, err := f.svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateOrder_IdempotencyKeyChecksCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, _, err := f.svc.CreateOrder(ctx, "c1", "cart-7")
	require.NoError(t, err)

	_, created, err := f.svc.CreateOrder(ctx, "c3", "cart-7")
	assert.ErrorIs(t, err, orders.ErrConflict)
	assert.False(t, created)

	_, _, err = f.svc.CreateOrder(ctx, "ghost", "cart-7")
	assert.ErrorIs(t, err, orders.ErrNotFound)

	_, _, err = f.svc.CreateOrder(ctx, "", "cart-7")
	assert.ErrorIs(t, err, orders.ErrInvalidOrderData)

	again, created, err := f.svc.CreateOrder(ctx, "c1", "cart-7")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID(), again.ID())
	assert.Len(t, f.created.envelopes(t), 1)
}

func TestCorruptStoredOrderIsNotAClientError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.store.Create(ctx, orders.Snapshot{
		ID:            "broken",
		CustomerID:    "c1",
		Status:        orders.StatusPaid,
		PaymentStatus: orders.PaymentPending,
		Version:       1,
	}))

	_, err := f.svc.GetOrder(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, orders.ErrInvalidOrderData)

	_, err = f.svc.Finalize(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, orders.ErrInvalidOrderData)

	_, err = f.svc.ListOrders(ctx)
	assert.NotErrorIs(t, err, orders.ErrInvalidOrderData)
	assert.Empty(t, f.changed.envelopes(t))
}

func TestAddItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, _, err := f.svc.CreateOrder(ctx, "c1", "")
	require.NoError(t, err)

	o, err = f.svc.AddItem(ctx, o.ID(), "p1", 2, nil)
	require.NoError(t, err)
	it, ok := o.Item("p1")
	require.True(t, ok)
	assert.Equal(t, "50.00", orders.Money(it.SalePrice()), "catalog price is the default")

	o, err = f.svc.AddItem(ctx, o.ID(), "p1", 1, dec("10.00"))
	require.NoError(t, err)
	it, _ = o.Item("p1")
	assert.Equal(t, 3, it.Quantity())
	assert.Equal(t, "50.00", orders.Money(it.SalePrice()))

	_, err = f.svc.AddItem(ctx, o.ID(), "p404", 1, nil)
	assert.ErrorIs(t, err, orders.ErrNotFound)

	_, err = f.svc.AddItem(ctx, "missing-order", "p1", 1, nil)
	assert.ErrorIs(t, err, orders.ErrNotFound)

	_, err = f.svc.AddItem(ctx, o.ID(), "p2", 0, nil)
	assert.ErrorIs(t, err, orders.ErrInvalidArgument)

	stored, err := f.svc.GetOrder(ctx, o.ID())
	require.NoError(t, err)
	assert.Len(t, stored.Items(), 1)
	assert.Equal(t, "150.00", orders.Money(stored.TotalValue()))

	assert.Empty(t, f.changed.envelopes(t), "item changes are not status changes")
}

func TestLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, _, err := f.svc.CreateOrder(ctx, "c1", "")
	require.NoError(t, err)
	id := o.ID()

	_, err = f.svc.AddItem(ctx, id, "p1", 2, dec("50.00"))
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, id, "p2", 1, nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateItemQuantity(ctx, id, "p2", 0)
	require.NoError(t, err)

	o, err = f.svc.Finalize(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusWaitingPayment, o.Status())

	_, err = f.svc.Finalize(ctx, id)
	assert.ErrorIs(t, err, orders.ErrIllegalState)

	o, err = f.svc.Pay(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, orders.PaymentApproved, o.PaymentStatus())

	o, err = f.svc.Deliver(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusFinished, o.Status())

	_, err = f.svc.Cancel(ctx, id)
	assert.ErrorIs(t, err, orders.ErrIllegalState)

	envs := f.changed.envelopes(t)
	require.Len(t, envs, 3)
	last, err := decodeStatusChanged(envs[2])
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, last.PreviousStatus)
	assert.Equal(t, orders.StatusFinished, last.Status)
	assert.Equal(t, "100.00", last.TotalValue)

	assert.Equal(t, []string{">OPEN", "OPEN>WAITING_PAYMENT", "WAITING_PAYMENT>PAID", "PAID>FINISHED"}, f.rec.moves)

	snap, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Version)
}

func TestCancel_ThenAddFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, _, err := f.svc.CreateOrder(ctx, "c1", "")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, o.ID(), "p1", 1, nil)
	require.NoError(t, err)

	o, err = f.svc.Cancel(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, o.Status())
	assert.Equal(t, orders.PaymentRejected, o.PaymentStatus())

	_, err = f.svc.AddItem(ctx, o.ID(), "p2", 1, nil)
	assert.ErrorIs(t, err, orders.ErrIllegalState)
}

func TestOrderStatus_CacheFallback(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, _, err := f.svc.CreateOrder(ctx, "c1", "")
	require.NoError(t, err)

	v, err := f.svc.OrderStatus(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, orders.StatusOpen, v.Status)
	assert.Equal(t, "0.00", v.TotalValue)

	f.cache.views = nil
	v, err = f.svc.OrderStatus(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, orders.PaymentPending, v.PaymentStatus)
	assert.Contains(t, f.cache.views, o.ID(), "miss repopulates the cache")

	f.cache.fail = true
	v, err = f.svc.OrderStatus(ctx, o.ID())
	require.NoError(t, err, "cache failures fall back to the store")
	assert.Equal(t, o.ID(), v.OrderID)

	_, err = f.svc.OrderStatus(ctx, "missing")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestCacheFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, _, err := f.svc.CreateOrder(ctx, "c1", "")
	require.NoError(t, err)

	f.cache.fail = true
	_, err = f.svc.AddItem(ctx, o.ID(), "p1", 1, nil)
	assert.NoError(t, err)
}

func TestListOrdersByCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.svc.Customers.(*memstore.Catalog).PutCustomer(orders.Customer{ID: "c3", Status: orders.CustomerActive})

	for _, c := range []string{"c1", "c3", "c1"} {
		_, _, err := f.svc.CreateOrder(ctx, c, "")
		require.NoError(t, err)
	}
	got, err := f.svc.ListOrdersByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, o := range got {
		assert.Equal(t, "c1", o.CustomerID())
	}
}

func TestConcurrentAddsAreSerialised(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o, _, err := f.svc.CreateOrder(ctx, "c1", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddItem(ctx, o.ID(), "p1", 1, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.svc.GetOrder(ctx, o.ID())
	require.NoError(t, err)
	it, ok := stored.Item("p1")
	require.True(t, ok)
	assert.Equal(t, 20, it.Quantity())
}

func decodeStatusChanged(env orders.Envelope) (orders.OrderStatusChangedPayload, error) {
	var p orders.OrderStatusChangedPayload
	err := json.Unmarshal(env.Payload, &p)
	return p, err
}
