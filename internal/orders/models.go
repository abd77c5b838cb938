package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog view of a product. Items keep a copy of it taken at add time.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "ACTIVE"
	CustomerInactive CustomerStatus = "INACTIVE"
)

type Customer struct {
	ID     string
	Name   string
	Email  string
	Status CustomerStatus
}

func (c Customer) Active() bool { return c.Status == CustomerActive }

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
