// Package pricer provides live last-price lookups for paper trading and
// one-shot signal evaluation. Backtests never use it; they replay
// historical series instead.
package pricer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/internal/domain"
)

// Pricer returns the current price of a trading pair.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}
