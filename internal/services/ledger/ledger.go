// Package ledger tracks the open-position book of a single run. A position
// is always either fully open or fully closed, never partially split, which
// keeps the accounting auditable at the cost of partial exits.
package ledger

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/internal/domain"
)

// Ledger owns the open and closed position lists and the running invested
// total for one run. Not safe for concurrent use; each run gets its own.
type Ledger struct {
	open     []domain.Position
	closed   []domain.Position
	invested decimal.Decimal
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{invested: decimal.Zero}
}

// Restore seeds the ledger from persisted state, e.g. after a paper
// trading restart.
func Restore(open []domain.Position, invested decimal.Decimal) *Ledger {
	l := New()
	l.open = append(l.open, open...)
	l.invested = invested
	return l
}

// Open returns a copy of the open positions in insertion order.
func (l *Ledger) Open() []domain.Position {
	if len(l.open) == 0 {
		return nil
	}
	out := make([]domain.Position, len(l.open))
	copy(out, l.open)
	return out
}

// Closed returns a copy of all positions closed so far.
func (l *Ledger) Closed() []domain.Position {
	if len(l.closed) == 0 {
		return nil
	}
	out := make([]domain.Position, len(l.closed))
	copy(out, l.closed)
	return out
}

// TotalInvested returns the quote capital currently deployed in open
// positions.
func (l *Ledger) TotalInvested() decimal.Decimal {
	return l.invested
}

// ApplyBuy records a filled buy as a new open position and adds its quote
// amount to the invested total.
func (l *Ledger) ApplyBuy(date string, fill *domain.Fill, quoteAmount decimal.Decimal, sentiment int) error {
	if !fill.Filled() {
		return errors.New("cannot open a position from an unfilled order")
	}
	pos, err := domain.NewPosition(date, fill.AvgPrice, fill.BaseQty, quoteAmount, sentiment)
	if err != nil {
		return errors.Wrap(err, "open position")
	}
	l.open = append(l.open, *pos)
	l.invested = l.invested.Add(quoteAmount)
	return nil
}

// ApplySell walks open positions in insertion order, closing them in full
// until the filled quantity is exhausted. A position larger than the
// remaining unallocated quantity stays open and the walk stops. Each
// closed position releases its original quote amount from the invested
// total. Returns the positions closed by this fill.
func (l *Ledger) ApplySell(date string, fill *domain.Fill) []domain.Position {
	if !fill.Filled() {
		return nil
	}

	unallocated := fill.BaseQty
	var justClosed []domain.Position
	remaining := l.open[:0:0]

	for i := range l.open {
		pos := l.open[i]
		if pos.BaseQty.GreaterThan(unallocated) {
			remaining = append(remaining, l.open[i:]...)
			break
		}
		pos.Close(date, fill.AvgPrice)
		justClosed = append(justClosed, pos)
		l.invested = l.invested.Sub(pos.QuoteAmount)
		unallocated = unallocated.Sub(pos.BaseQty)
	}

	l.open = remaining
	l.closed = append(l.closed, justClosed...)
	return justClosed
}
