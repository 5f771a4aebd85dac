package domain

import "github.com/shopspring/decimal"

// FillStatus outcome of a simulated order.
type FillStatus string

const (
	FillStatusFilled FillStatus = "filled"
	FillStatusFailed FillStatus = "failed"
)

// Fill is the result of one simulated market order.
// A failed fill carries zero quantities and a reason; a filled one carries
// a positive base quantity and a non-negative fee.
type Fill struct {
	OrderID  string          `json:"order_id"`
	Status   FillStatus      `json:"status"`
	BaseQty  decimal.Decimal `json:"filled_qty"`
	AvgPrice decimal.Decimal `json:"avg_fill_price"`
	Fee      decimal.Decimal `json:"fee"`
	Reason   string          `json:"reason,omitempty"`
}

// Filled reports whether the order actually executed.
func (f *Fill) Filled() bool {
	return f != nil && f.Status == FillStatusFilled
}
