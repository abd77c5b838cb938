package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgProductRequired   = "product required"
	msgQuantityPositive  = "quantity must be greater than zero"
	msgSalePricePositive = "sale price must be greater than zero"
)

// Item is one line of an order. Its sale price is fixed for its whole life;
// only the quantity changes, and only through the owning Order.
type Item struct {
	id        string
	product   Product
	quantity  int
	salePrice decimal.Decimal
}

func NewItem(product *Product, quantity int, salePrice decimal.Decimal) (Item, error) {
	if err := validateItem(product, quantity, salePrice); err != nil {
		return Item{}, err
	}
	return Item{
		id:        uuid.NewString(),
		product:   *product,
		quantity:  quantity,
		salePrice: salePrice,
	}, nil
}

func validateItem(product *Product, quantity int, salePrice decimal.Decimal) error {
	if product == nil {
		return invalidArgument(msgProductRequired)
	}
	if quantity <= 0 {
		return invalidArgument(msgQuantityPositive)
	}
	if !salePrice.IsPositive() {
		return invalidArgument(msgSalePricePositive)
	}
	return nil
}

func (it Item) ID() string                 { return it.id }
func (it Item) Product() Product           { return it.product }
func (it Item) ProductID() string          { return it.product.ID }
func (it Item) Quantity() int              { return it.quantity }
func (it Item) SalePrice() decimal.Decimal { return it.salePrice }

// Subtotal is SalePrice * Quantity, computed on every call.
func (it Item) Subtotal() decimal.Decimal {
	return it.salePrice.Mul(decimalInt(it.quantity))
}

func (it *Item) UpdateQuantity(n int) error {
	if n <= 0 {
		return invalidArgument(msgQuantityPositive)
	}
	it.quantity = n
	return nil
}
