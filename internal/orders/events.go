package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload as a version 1 event correlated with orderID.
func NewEnvelope(eventType, producer, orderID, traceID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       b,
	}, nil
}

// ---- payloads ----

// ItemLine carries money as strings with two decimals.
type ItemLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Qty         int    `json:"qty"`
	SalePrice   string `json:"sale_price"`
	Subtotal    string `json:"subtotal"`
}

type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	ExternalID string `json:"external_id,omitempty"`
	CustomerID string `json:"customer_id"`
}

type OrderStatusChangedPayload struct {
	OrderID        string        `json:"order_id"`
	CustomerID     string        `json:"customer_id"`
	PreviousStatus Status        `json:"previous_status"`
	Status         Status        `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	Items          []ItemLine    `json:"items"`
	TotalValue     string        `json:"total_value"`
}

// StatusChanged builds the payload describing s after a move from previous.
func StatusChanged(s Snapshot, previous Status) OrderStatusChangedPayload {
	lines := make([]ItemLine, 0, len(s.Items))
	for _, it := range s.Items {
		lines = append(lines, ItemLine{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Qty:         it.Quantity,
			SalePrice:   Money(it.SalePrice),
			Subtotal:    Money(it.SalePrice.Mul(decimalInt(it.Quantity))),
		})
	}
	return OrderStatusChangedPayload{
		OrderID:        s.ID,
		CustomerID:     s.CustomerID,
		PreviousStatus: previous,
		Status:         s.Status,
		PaymentStatus:  s.PaymentStatus,
		Items:          lines,
		TotalValue:     Money(s.Total()),
	}
}

// StatusView is the cached read model served by the status endpoint.
type StatusView struct {
	OrderID       string        `json:"order_id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TotalValue    string        `json:"total_value"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func ViewOf(s Snapshot) StatusView {
	return StatusView{
		OrderID:       s.ID,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		TotalValue:    Money(s.Total()),
		UpdatedAt:     time.Now().UTC(),
	}
}
