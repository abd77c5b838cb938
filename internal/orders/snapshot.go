package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the plain persisted form of an Order. Version belongs to the
// store and is carried through untouched by the aggregate.
type Snapshot struct {
	ID            string
	ExternalID    string
	CustomerID    string
	CreatedAt     time.Time
	Status        Status
	PaymentStatus PaymentStatus
	Items         []ItemSnapshot
	Version       int
}

type ItemSnapshot struct {
	ID          string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal // catalog price when the line was added
	Quantity    int
	SalePrice   decimal.Decimal
}

// Total sums the item subtotals of a snapshot without restoring it.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.SalePrice.Mul(decimalInt(it.Quantity)))
	}
	return total
}

func (o *Order) Snapshot() Snapshot {
	items := make([]ItemSnapshot, 0, len(o.items))
	for _, it := range o.items {
		items = append(items, ItemSnapshot{
			ID:          it.id,
			ProductID:   it.product.ID,
			ProductName: it.product.Name,
			UnitPrice:   it.product.Price,
			Quantity:    it.quantity,
			SalePrice:   it.salePrice,
		})
	}
	return Snapshot{
		ID:            o.id,
		CustomerID:    o.customerID,
		CreatedAt:     o.createdAt,
		Status:        o.status,
		PaymentStatus: o.paymentStatus,
		Items:         items,
	}
}

// Restore rebuilds an Order from storage, rejecting snapshots that break the
// aggregate's invariants.
func Restore(s Snapshot) (*Order, error) {
	if s.ID == "" || s.CustomerID == "" {
		return nil, invalidOrderData("order snapshot missing id or customer")
	}
	if !ValidPair(s.Status, s.PaymentStatus) {
		return nil, invalidOrderData(sprintf("invalid status pair %s/%s", s.Status, s.PaymentStatus))
	}
	seen := make(map[string]bool, len(s.Items))
	items := make([]Item, 0, len(s.Items))
	for _, is := range s.Items {
		if seen[is.ProductID] {
			return nil, invalidOrderData(sprintf("duplicate product %s in order", is.ProductID))
		}
		seen[is.ProductID] = true
		p := Product{ID: is.ProductID, Name: is.ProductName, Price: is.UnitPrice}
		if err := validateItem(&p, is.Quantity, is.SalePrice); err != nil {
			return nil, invalidOrderData(err.Error())
		}
		items = append(items, Item{id: is.ID, product: p, quantity: is.Quantity, salePrice: is.SalePrice})
	}
	return &Order{
		id:            s.ID,
		customerID:    s.CustomerID,
		createdAt:     s.CreatedAt,
		status:        s.Status,
		paymentStatus: s.PaymentStatus,
		items:         items,
	}, nil
}
