package domain

import "github.com/shopspring/decimal"

// DailyRecord is one row of replay output. Immutable once emitted; the
// ordered sequence of these is the sole input to the result reducer.
type DailyRecord struct {
	Date           string          `json:"date"`
	Price          decimal.Decimal `json:"price"`
	Sentiment      int             `json:"sentiment"`
	Action         Action          `json:"action"`
	Signal         Signal          `json:"signal"`
	Fill           *Fill           `json:"fill,omitempty"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	Cash           decimal.Decimal `json:"cash"`
	BaseHeld       decimal.Decimal `json:"base_held"`
}
