package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// RunConfig describes a single backtest run. Immutable for its lifetime.
type RunConfig struct {
	// Strategy registry name, e.g. "fear-greed-dca".
	Strategy string `json:"strategy"`
	// Params sparse strategy parameter overrides.
	Params map[string]any `json:"params,omitempty"`
	// StartDate inclusive, YYYY-MM-DD.
	StartDate string `json:"start_date"`
	// EndDate inclusive, YYYY-MM-DD.
	EndDate string `json:"end_date"`
	// InitialCapital starting quote balance.
	InitialCapital decimal.Decimal `json:"initial_capital"`
	// FeeRate per-fill fee fraction, e.g. 0.001 for 0.1%.
	FeeRate decimal.Decimal `json:"fee_rate"`
	// SlippageRate adverse fill price offset fraction.
	SlippageRate decimal.Decimal `json:"slippage_rate"`
}

// Validate fails fast on configuration mistakes, before any evaluation.
func (c RunConfig) Validate() error {
	if c.Strategy == "" {
		return errors.New("strategy name is required")
	}
	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return errors.Wrapf(err, "invalid start date %q", c.StartDate)
	}
	end, err := time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return errors.Wrapf(err, "invalid end date %q", c.EndDate)
	}
	if end.Before(start) {
		return errors.Errorf("end date %s is before start date %s", c.EndDate, c.StartDate)
	}
	if c.InitialCapital.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("initial capital must be positive, got %s", c.InitialCapital.String())
	}
	if c.FeeRate.IsNegative() {
		return errors.Errorf("fee rate must be non-negative, got %s", c.FeeRate.String())
	}
	if c.SlippageRate.IsNegative() {
		return errors.Errorf("slippage rate must be non-negative, got %s", c.SlippageRate.String())
	}
	return nil
}
