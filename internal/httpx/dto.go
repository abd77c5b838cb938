package httpx

import (
	"time"

	"github.com/ariefcatur/go-checkout-orders/internal/orders"
	"github.com/shopspring/decimal"
)

type CreateOrderReq struct {
	CustomerID string `json:"customer_id"`
	ExternalID string `json:"external_id,omitempty"`
}

type AddItemReq struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"` // defaults to catalog price
}

type UpdateQuantityReq struct {
	Quantity int `json:"quantity"`
}

type ProductResp struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type ItemResp struct {
	ID        string      `json:"id"`
	Product   ProductResp `json:"product"`
	Quantity  int         `json:"quantity"`
	SalePrice string      `json:"sale_price"`
	Subtotal  string      `json:"subtotal"`
}

type OrderResp struct {
	ID            string               `json:"id"`
	CustomerID    string               `json:"customer_id"`
	CreatedAt     time.Time            `json:"created_at"`
	Status        orders.Status        `json:"status"`
	PaymentStatus orders.PaymentStatus `json:"payment_status"`
	Items         []ItemResp           `json:"items"`
	TotalValue    string               `json:"total_value"`
}

func toProductResp(p orders.Product) ProductResp {
	return ProductResp{ID: p.ID, Name: p.Name, Price: orders.Money(p.Price)}
}

func toOrderResp(o *orders.Order) OrderResp {
	items := o.Items()
	out := OrderResp{
		ID:            o.ID(),
		CustomerID:    o.CustomerID(),
		CreatedAt:     o.CreatedAt(),
		Status:        o.Status(),
		PaymentStatus: o.PaymentStatus(),
		Items:         make([]ItemResp, 0, len(items)),
		TotalValue:    orders.Money(o.TotalValue()),
	}
	for _, it := range items {
		out.Items = append(out.Items, ItemResp{
			ID:        it.ID(),
			Product:   toProductResp(it.Product()),
			Quantity:  it.Quantity(),
			SalePrice: orders.Money(it.SalePrice()),
			Subtotal:  orders.Money(it.Subtotal()),
		})
	}
	return out
}

func toOrderResps(list []*orders.Order) []OrderResp {
	out := make([]OrderResp, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResp(o))
	}
	return out
}
