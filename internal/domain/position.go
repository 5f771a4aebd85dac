package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates. Fixed-width and
// zero-padded, so lexicographic comparison matches chronological order.
const DateLayout = "2006-01-02"

// PositionStatus lifecycle state of a DCA entry.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Position represents one DCA entry. BaseQty and QuoteAmount are fixed at
// creation; only the exit fields change, once, when the position closes.
type Position struct {
	EntryDate        string          `json:"entry_date"`
	EntryPrice       decimal.Decimal `json:"entry_price"`
	BaseQty          decimal.Decimal `json:"base_qty"`
	QuoteAmount      decimal.Decimal `json:"quote_amount"`
	SentimentAtEntry int             `json:"sentiment_at_entry"`
	Status           PositionStatus  `json:"status"`
	ExitDate         string          `json:"exit_date,omitempty"`
	ExitPrice        decimal.Decimal `json:"exit_price,omitempty"`
	PnLPct           float64         `json:"pnl_pct,omitempty"`
}

// NewPosition constructs a validated open position.
func NewPosition(entryDate string, entryPrice, baseQty, quoteAmount decimal.Decimal, sentiment int) (*Position, error) {
	if entryPrice.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("entry price must be positive, got %s", entryPrice.String())
	}
	if baseQty.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("base quantity must be positive, got %s", baseQty.String())
	}
	if quoteAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("quote amount must be positive, got %s", quoteAmount.String())
	}
	if _, err := time.Parse(DateLayout, entryDate); err != nil {
		return nil, errors.Wrapf(err, "invalid entry date %q", entryDate)
	}

	return &Position{
		EntryDate:        entryDate,
		EntryPrice:       entryPrice,
		BaseQty:          baseQty,
		QuoteAmount:      quoteAmount,
		SentimentAtEntry: sentiment,
		Status:           PositionOpen,
	}, nil
}

// Close marks the position closed at the given fill price, recording the
// realized P&L percentage against its own entry price.
func (p *Position) Close(exitDate string, exitPrice decimal.Decimal) {
	p.Status = PositionClosed
	p.ExitDate = exitDate
	p.ExitPrice = exitPrice
	if p.EntryPrice.IsPositive() {
		p.PnLPct, _ = exitPrice.Sub(p.EntryPrice).Div(p.EntryPrice).Mul(decimal.NewFromInt(100)).Float64()
	}
}

// IsOpen reports whether the position has not been closed yet.
func (p *Position) IsOpen() bool {
	return p != nil && p.Status == PositionOpen
}

// HeldDays returns full calendar days between entry and the given date.
// Returns an error for missing or unparsable entry dates; callers treat
// such positions as ineligible rather than failing the run.
func (p *Position) HeldDays(nowDate string) (int, error) {
	entry, err := time.Parse(DateLayout, p.EntryDate)
	if err != nil {
		return 0, errors.Wrapf(err, "parse entry date %q", p.EntryDate)
	}
	now, err := time.Parse(DateLayout, nowDate)
	if err != nil {
		return 0, errors.Wrapf(err, "parse date %q", nowDate)
	}
	return int(now.Sub(entry).Hours() / 24), nil
}

// UnrealizedPnL calculates quote-currency P&L at the current price.
func (p *Position) UnrealizedPnL(currentPrice decimal.Decimal) decimal.Decimal {
	if !p.IsOpen() {
		return decimal.Zero
	}
	return p.BaseQty.Mul(currentPrice).Sub(p.QuoteAmount)
}
