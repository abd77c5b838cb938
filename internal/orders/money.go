package orders

import "github.com/shopspring/decimal"

// Money renders an amount with exactly two decimals.
func Money(d decimal.Decimal) string { return d.StringFixed(2) }

func decimalInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
