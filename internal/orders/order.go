package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the checkout aggregate. It owns its items; callers only ever see copies.
//
// An Order is not safe for concurrent mutation. Every mutator checks all of its
// preconditions before changing any field, so a failed call leaves the order untouched.
type Order struct {
	id            string
	customerID    string
	createdAt     time.Time
	status        Status
	paymentStatus PaymentStatus
	items         []Item
}

// New opens an empty order for an active customer.
func New(customer *Customer) (*Order, error) {
	if customer == nil {
		return nil, invalidOrderData("customer required")
	}
	if !customer.Active() {
		return nil, invalidOrderData("order cannot be created for an inactive customer")
	}
	return &Order{
		id:            uuid.NewString(),
		customerID:    customer.ID,
		createdAt:     time.Now().UTC(),
		status:        StatusOpen,
		paymentStatus: PaymentPending,
		items:         []Item{},
	}, nil
}

func (o *Order) ID() string                   { return o.id }
func (o *Order) CustomerID() string           { return o.customerID }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) Status() Status               { return o.status }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }

// Items returns the lines in insertion order.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

// Item returns the line for productID, if any.
func (o *Order) Item(productID string) (Item, bool) {
	i := o.indexOf(productID)
	if i < 0 {
		return Item{}, false
	}
	return o.items[i], true
}

func (o *Order) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (o *Order) AddItem(product *Product, quantity int, salePrice decimal.Decimal) error {
	if o.status != StatusOpen {
		return illegalState("cannot add items to an order that is not OPEN")
	}
	if err := validateItem(product, quantity, salePrice); err != nil {
		return err
	}
	if i := o.indexOf(product.ID); i >= 0 {
		return o.consolidate(i, quantity)
	}
	it, err := NewItem(product, quantity, salePrice)
	if err != nil {
		return err
	}
	o.items = append(o.items, it)
	return nil
}

// consolidate merges an addition into the existing line at i. The line keeps
// the price it was first added with.
func (o *Order) consolidate(i, quantity int) error {
	return o.items[i].UpdateQuantity(o.items[i].quantity + quantity)
}

func (o *Order) RemoveItem(productID string) error {
	if o.status != StatusOpen {
		return illegalState("cannot remove items from an order that is not OPEN")
	}
	i := o.indexOf(productID)
	if i < 0 {
		return invalidArgument("product not found in order")
	}
	o.items = append(o.items[:i], o.items[i+1:]...)
	return nil
}

func (o *Order) UpdateItemQuantity(productID string, newQuantity int) error {
	if o.status != StatusOpen {
		return illegalState("cannot update item quantity in an order that is not OPEN")
	}
	if removalQuantity(newQuantity) {
		return o.RemoveItem(productID)
	}
	i := o.indexOf(productID)
	if i < 0 {
		return invalidArgument("product not found in order")
	}
	return o.items[i].UpdateQuantity(newQuantity)
}

// removalQuantity reports whether setting a line to n removes it.
func removalQuantity(n int) bool { return n <= 0 }

func (o *Order) Finalize() error {
	if !CanTransition(o.status, StatusWaitingPayment) {
		return illegalState("only OPEN orders can be finalized")
	}
	if len(o.items) == 0 {
		return illegalState("order must have at least one item to be finalized")
	}
	if !o.TotalValue().IsPositive() {
		return illegalState("order total value must be greater than zero to be finalized")
	}
	o.status = StatusWaitingPayment
	return nil
}

func (o *Order) Pay() error {
	if !CanTransition(o.status, StatusPaid) {
		return illegalState("only orders with status WAITING_PAYMENT can be paid")
	}
	o.paymentStatus = PaymentApproved
	o.status = StatusPaid
	return nil
}

func (o *Order) Deliver() error {
	if !CanTransition(o.status, StatusFinished) {
		return illegalState("only PAID orders can be delivered")
	}
	o.status = StatusFinished
	return nil
}

// Cancel checks the payment status as well as the order status; today both
// move together in Pay but a refund state could separate them.
//
// CANCELLED is terminal, so cancelling twice fails with "order is already
// CANCELLED" instead of resetting the payment status. A REFUNDED payment set
// by another flow is never overwritten with REJECTED.
func (o *Order) Cancel() error {
	if o.status == StatusFinished || o.paymentStatus == PaymentApproved {
		return illegalState("cannot cancel an order that is already FINISHED or PAID")
	}
	if !CanTransition(o.status, StatusCancelled) {
		return illegalState("order is already CANCELLED")
	}
	o.status = StatusCancelled
	o.paymentStatus = PaymentRejected
	return nil
}

func (o *Order) indexOf(productID string) int {
	for i := range o.items {
		if o.items[i].product.ID == productID {
			return i
		}
	}
	return -1
}
