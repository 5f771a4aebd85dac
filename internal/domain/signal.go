package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Signal is the output of a single strategy evaluation.
type Signal struct {
	// Action to take: buy, sell or hold.
	Action Action `json:"action"`
	// Confidence in the signal, 0.0-1.0.
	Confidence float64 `json:"confidence"`
	// Reason human-readable justification.
	Reason string `json:"reason"`
	// Amount suggested transaction size: quote currency for BUY,
	// base currency for SELL, zero for HOLD.
	Amount decimal.Decimal `json:"amount"`
	// Metadata strategy-specific diagnostics (grid level, down-day count).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HoldSignal builds a HOLD signal with zero amount.
func HoldSignal(reason string, metadata map[string]any) Signal {
	return Signal{
		Action:     ActionHold,
		Confidence: 1.0,
		Reason:     reason,
		Amount:     decimal.Zero,
		Metadata:   metadata,
	}
}

// Validate checks the action/amount invariant.
func (s Signal) Validate() error {
	switch s.Action {
	case ActionHold:
		if !s.Amount.IsZero() {
			return fmt.Errorf("hold signal must carry zero amount, got %s", s.Amount.String())
		}
	case ActionBuy, ActionSell:
		if s.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%s signal must carry a positive amount, got %s", s.Action.String(), s.Amount.String())
		}
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0,1], got %f", s.Confidence)
	}
	return nil
}
