package notification

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ariefcatur/go-checkout-orders/internal/orders"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

var bodyTmpl = template.Must(template.New("body").Parse(`Hello, {{.Name}}!

Your order #{{.OrderID}} is now {{.Status}}.

{{range .Items}}- {{.ProductName}} (x{{.Qty}}) {{.Subtotal}}
{{end}}Total: {{.TotalValue}}

{{.StatusMessage}}

Thank you for shopping with us!
`))

// StatusMessage is the customer facing line for a status. REFUNDED only
// changes the text of a cancelled order.
func StatusMessage(s orders.Status, p orders.PaymentStatus) string {
	switch s {
	case orders.StatusOpen:
		return "Your order is open. Keep adding items or finalize it to continue."
	case orders.StatusWaitingPayment:
		return "Your order is waiting for payment. Complete the payment to continue."
	case orders.StatusPaid:
		return "Payment approved! Your order is being prepared for shipping."
	case orders.StatusFinished:
		return "Your order is complete. Thank you for your purchase!"
	case orders.StatusCancelled:
		if p == orders.PaymentRefunded {
			return "Your order was cancelled. The refund has been processed."
		}
		return "Your order was cancelled."
	default:
		return fmt.Sprintf("Your order status is %s.", s)
	}
}

func Render(p orders.OrderStatusChangedPayload, c orders.Customer) (Message, error) {
	name := c.Name
	if name == "" {
		name = "customer"
	}
	var b strings.Builder
	err := bodyTmpl.Execute(&b, struct {
		orders.OrderStatusChangedPayload
		Name          string
		StatusMessage string
	}{p, name, StatusMessage(p.Status, p.PaymentStatus)})
	if err != nil {
		return Message{}, fmt.Errorf("render order %s: %w", p.OrderID, err)
	}
	return Message{
		To:      c.Email,
		Subject: fmt.Sprintf("Order %s - status updated", p.OrderID),
		Body:    b.String(),
	}, nil
}
