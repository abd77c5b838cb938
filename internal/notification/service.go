package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	kafkax "github.com/ariefcatur/go-checkout-orders/internal/kafka"
	"github.com/ariefcatur/go-checkout-orders/internal/orders"
	"github.com/ariefcatur/go-checkout-orders/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
)

type CustomerLookup interface {
	FindCustomer(ctx context.Context, customerID string) (orders.Customer, error)
}

// Sink hands a rendered message to whatever delivers it.
type Sink interface {
	Deliver(ctx context.Context, m Message) error
}

// LogSink only logs messages; delivery is handled elsewhere.
type LogSink struct{ Log *slog.Logger }

func (s LogSink) Deliver(_ context.Context, m Message) error {
	s.Log.Info("order notification", "to", m.To, "subject", m.Subject, "body", m.Body)
	return nil
}

// Dedup marks event ids as handled. A mark is dropped again when handling fails.
type Dedup interface {
	MarkOnce(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Service struct {
	Dedup       Dedup // nil disables it
	Customers   CustomerLookup
	Sink        Sink
	ServiceName string
	Log         *slog.Logger
}

// HandleStatusChanged is installed as the consumer handler for order.status.changed.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		// poison message: log and commit
		s.Log.Warn("bad envelope", "offset", m.Offset, "err", err)
		return nil
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		s.Log.Warn("bad payload", "event_id", env.EventID, "err", err)
		return nil
	}
	if s.Dedup == nil {
		return s.Notify(ctx, p)
	}

	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	first, err := s.Dedup.MarkOnce(ctx, key)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}
	if err := s.Notify(ctx, p); err != nil {
		// leave the offset uncommitted and let the redelivery try again
		if ferr := s.Dedup.Forget(context.WithoutCancel(ctx), key); ferr != nil {
			s.Log.Warn("dedup release failed", "event_id", env.EventID, "err", ferr)
		}
		return err
	}
	return nil
}

func (s *Service) Notify(ctx context.Context, p orders.OrderStatusChangedPayload) error {
	c := orders.Customer{ID: p.CustomerID}
	if s.Customers != nil {
		found, err := s.Customers.FindCustomer(ctx, p.CustomerID)
		switch {
		case err == nil:
			c = found
		case errors.Is(err, orders.ErrNotFound):
			s.Log.Warn("customer not found for notification", "order_id", p.OrderID, "customer_id", p.CustomerID)
		default:
			return err
		}
	}
	msg, err := Render(p, c)
	if err != nil {
		return err
	}
	return s.Sink.Deliver(ctx, msg)
}
