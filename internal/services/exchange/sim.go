// Package exchange contains the deterministic market-fill simulator used by
// backtest and paper runs. Slippage always moves the fill price against the
// trader, so a replay over the same price series is reproducible.
package exchange

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fearproto/fearbot/internal/domain"
)

var one = decimal.NewFromInt(1)

// Sim is an in-memory spot market simulator. It holds a reference price
// and a quote/base balance pair, applies fee and slippage directionally,
// and rejects under-funded orders as failed fills instead of errors.
//
// One Sim instance belongs to exactly one run; concurrent runs need their
// own instances.
type Sim struct {
	mu       sync.Mutex
	logger   *zap.Logger
	price    decimal.Decimal
	feeRate  decimal.Decimal
	slippage decimal.Decimal
	quote    decimal.Decimal
	base     decimal.Decimal
}

// NewSim creates a simulator with the given starting balances and rates.
func NewSim(initialPrice, feeRate, slippageRate, quoteBalance, baseBalance decimal.Decimal, logger *zap.Logger) (*Sim, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if initialPrice.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("initial price must be positive, got %s", initialPrice.String())
	}
	if feeRate.IsNegative() {
		return nil, errors.Errorf("fee rate must be non-negative, got %s", feeRate.String())
	}
	if slippageRate.IsNegative() {
		return nil, errors.Errorf("slippage rate must be non-negative, got %s", slippageRate.String())
	}
	if quoteBalance.IsNegative() || baseBalance.IsNegative() {
		return nil, errors.New("starting balances must be non-negative")
	}

	return &Sim{
		logger:   logger,
		price:    initialPrice,
		feeRate:  feeRate,
		slippage: slippageRate,
		quote:    quoteBalance,
		base:     baseBalance,
	}, nil
}

// SetPrice updates the reference price. Side effect only, no validation.
func (s *Sim) SetPrice(price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = price
}

// Price returns the current reference price.
func (s *Sim) Price() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price
}

// Balances returns the current quote and base totals.
func (s *Sim) Balances() (quote, base decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote, s.base
}

// Buy simulates a market buy spending quoteAmount of quote currency.
// The fee is embedded in the requested amount, not added on top: the quote
// balance is debited by exactly quoteAmount and the fill quantity is what
// the post-fee remainder buys at the slipped price.
func (s *Sim) Buy(quoteAmount decimal.Decimal) *domain.Fill {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quoteAmount.GreaterThan(s.quote) {
		s.logger.Debug("buy rejected, insufficient quote balance",
			zap.String("requested", quoteAmount.String()),
			zap.String("available", s.quote.String()))
		return failedFill("insufficient quote balance")
	}

	fillPrice := s.price.Mul(one.Add(s.slippage))
	fee := quoteAmount.Mul(s.feeRate)
	netQuote := quoteAmount.Sub(fee)
	filledQty := netQuote.Div(fillPrice)

	s.quote = s.quote.Sub(quoteAmount)
	s.base = s.base.Add(filledQty)

	s.logger.Debug("simulated buy filled",
		zap.String("quote_amount", quoteAmount.String()),
		zap.String("fill_price", fillPrice.String()),
		zap.String("filled_qty", filledQty.String()),
		zap.String("fee", fee.String()))

	return &domain.Fill{
		OrderID:  uuid.NewString(),
		Status:   domain.FillStatusFilled,
		BaseQty:  filledQty,
		AvgPrice: fillPrice,
		Fee:      fee,
	}
}

// Sell simulates a market sell of baseAmount of base currency. The fee is
// taken out of the gross quote proceeds before crediting the balance.
func (s *Sim) Sell(baseAmount decimal.Decimal) *domain.Fill {
	s.mu.Lock()
	defer s.mu.Unlock()

	if baseAmount.GreaterThan(s.base) {
		s.logger.Debug("sell rejected, insufficient base balance",
			zap.String("requested", baseAmount.String()),
			zap.String("available", s.base.String()))
		return failedFill("insufficient base balance")
	}

	fillPrice := s.price.Mul(one.Sub(s.slippage))
	grossQuote := baseAmount.Mul(fillPrice)
	fee := grossQuote.Mul(s.feeRate)
	netQuote := grossQuote.Sub(fee)

	s.base = s.base.Sub(baseAmount)
	s.quote = s.quote.Add(netQuote)

	s.logger.Debug("simulated sell filled",
		zap.String("base_amount", baseAmount.String()),
		zap.String("fill_price", fillPrice.String()),
		zap.String("credited", netQuote.String()),
		zap.String("fee", fee.String()))

	return &domain.Fill{
		OrderID:  uuid.NewString(),
		Status:   domain.FillStatusFilled,
		BaseQty:  baseAmount,
		AvgPrice: fillPrice,
		Fee:      fee,
	}
}

func failedFill(reason string) *domain.Fill {
	return &domain.Fill{
		OrderID:  uuid.NewString(),
		Status:   domain.FillStatusFailed,
		BaseQty:  decimal.Zero,
		AvgPrice: decimal.Zero,
		Fee:      decimal.Zero,
		Reason:   reason,
	}
}
