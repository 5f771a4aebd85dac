package strategy

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/pkg/quant"
)

// ThresholdDCAConfig configures the sentiment-threshold DCA policy.
type ThresholdDCAConfig struct {
	// BuyThreshold sentiment value at or below which to buy.
	BuyThreshold int
	// SellThreshold sentiment value at or above which to consider selling.
	SellThreshold int
	// HoldDays minimum days to hold a position before it may be sold.
	HoldDays int
	// DCAAmount quote-currency amount per buy.
	DCAAmount decimal.Decimal
	// MaxCapital maximum total quote capital to deploy.
	MaxCapital decimal.Decimal
	// KellyFraction optional Kelly sizing fraction; 0 means the fixed
	// DCAAmount is used as-is.
	KellyFraction float64
}

// DefaultThresholdDCAConfig returns the stock parameters.
func DefaultThresholdDCAConfig() ThresholdDCAConfig {
	return ThresholdDCAConfig{
		BuyThreshold:  20,
		SellThreshold: 50,
		HoldDays:      120,
		DCAAmount:     decimal.NewFromInt(500),
		MaxCapital:    decimal.NewFromInt(5000),
	}
}

// Validate fails fast before any evaluation.
func (c ThresholdDCAConfig) Validate() error {
	if c.BuyThreshold < 0 || c.BuyThreshold > 100 {
		return errors.Errorf("buy threshold must be 0-100, got %d", c.BuyThreshold)
	}
	if c.SellThreshold < 0 || c.SellThreshold > 100 {
		return errors.Errorf("sell threshold must be 0-100, got %d", c.SellThreshold)
	}
	if c.BuyThreshold >= c.SellThreshold {
		return errors.Errorf("buy threshold (%d) must be below sell threshold (%d)", c.BuyThreshold, c.SellThreshold)
	}
	if c.HoldDays < 1 {
		return errors.Errorf("hold days must be >= 1, got %d", c.HoldDays)
	}
	if c.DCAAmount.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("dca amount must be positive, got %s", c.DCAAmount.String())
	}
	if c.MaxCapital.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("max capital must be positive, got %s", c.MaxCapital.String())
	}
	if c.KellyFraction < 0 || c.KellyFraction > 1 {
		return errors.Errorf("kelly fraction must be within [0,1], got %f", c.KellyFraction)
	}
	return nil
}

// ThresholdDCA buys a fixed tranche whenever sentiment sinks to the buy
// threshold and capital headroom remains, then exits eligible positions
// once sentiment recovers past the sell threshold.
type ThresholdDCA struct {
	config ThresholdDCAConfig
}

// NewThresholdDCA creates the strategy with a validated config.
func NewThresholdDCA(config ThresholdDCAConfig) (*ThresholdDCA, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid threshold DCA config")
	}
	return &ThresholdDCA{config: config}, nil
}

func newThresholdDCAFromParams(params map[string]any) (Strategy, error) {
	if err := rejectUnknownKeys(params,
		"buy_threshold", "sell_threshold", "hold_days",
		"dca_amount", "max_capital", "kelly_fraction"); err != nil {
		return nil, err
	}

	cfg := DefaultThresholdDCAConfig()
	var err error
	if cfg.BuyThreshold, err = intParam(params, "buy_threshold", cfg.BuyThreshold); err != nil {
		return nil, err
	}
	if cfg.SellThreshold, err = intParam(params, "sell_threshold", cfg.SellThreshold); err != nil {
		return nil, err
	}
	if cfg.HoldDays, err = intParam(params, "hold_days", cfg.HoldDays); err != nil {
		return nil, err
	}
	if cfg.DCAAmount, err = decimalParam(params, "dca_amount", cfg.DCAAmount); err != nil {
		return nil, err
	}
	if cfg.MaxCapital, err = decimalParam(params, "max_capital", cfg.MaxCapital); err != nil {
		return nil, err
	}
	if cfg.KellyFraction, err = floatParam(params, "kelly_fraction", cfg.KellyFraction); err != nil {
		return nil, err
	}

	return NewThresholdDCA(cfg)
}

// Name implements Strategy.
func (s *ThresholdDCA) Name() string { return "fear-greed-dca" }

// Description implements Strategy.
func (s *ThresholdDCA) Description() string {
	return "DCA on extreme fear, hold a minimum period, exit on recovery"
}

// Evaluate implements Strategy.
func (s *ThresholdDCA) Evaluate(snapshot domain.MarketSnapshot) domain.Signal {
	cfg := s.config
	sentiment := snapshot.Sentiment

	if sentiment <= cfg.BuyThreshold {
		if snapshot.TotalInvested.LessThan(cfg.MaxCapital) {
			return domain.Signal{
				Action:     domain.ActionBuy,
				Confidence: s.fearConfidence(sentiment),
				Reason:     fmt.Sprintf("sentiment %d <= buy threshold %d (%s)", sentiment, cfg.BuyThreshold, snapshot.SentimentLabel),
				Amount:     s.buyAmount(snapshot.TotalInvested),
				Metadata: map[string]any{
					"sentiment":      sentiment,
					"buy_threshold":  cfg.BuyThreshold,
					"total_invested": snapshot.TotalInvested.String(),
				},
			}
		}
		return domain.HoldSignal(
			fmt.Sprintf("sentiment %d in fear zone but max capital reached (%s deployed)", sentiment, snapshot.TotalInvested.String()),
			map[string]any{"sentiment": sentiment, "max_capital_reached": true},
		)
	}

	if sentiment >= cfg.SellThreshold {
		eligible := eligiblePositions(snapshot, cfg.HoldDays)
		if len(eligible) > 0 {
			return domain.Signal{
				Action:     domain.ActionSell,
				Confidence: 0.8,
				Reason: fmt.Sprintf("sentiment %d >= sell threshold %d, %d position(s) past %dd hold",
					sentiment, cfg.SellThreshold, len(eligible), cfg.HoldDays),
				Amount: aggregateBaseQty(eligible),
				Metadata: map[string]any{
					"sentiment":          sentiment,
					"sell_threshold":     cfg.SellThreshold,
					"eligible_positions": len(eligible),
				},
			}
		}
	}

	return domain.HoldSignal(
		fmt.Sprintf("sentiment %d in neutral zone (buy<=%d, sell>=%d)", sentiment, cfg.BuyThreshold, cfg.SellThreshold),
		map[string]any{"sentiment": sentiment},
	)
}

// buyAmount returns the fixed tranche, or a Kelly-scaled amount capped at
// the tranche when a Kelly fraction is configured.
func (s *ThresholdDCA) buyAmount(totalInvested decimal.Decimal) decimal.Decimal {
	if s.config.KellyFraction == 0 {
		return s.config.DCAAmount
	}
	headroom := s.config.MaxCapital.Sub(totalInvested)
	return quant.PositionSize(headroom, s.config.KellyFraction, s.config.DCAAmount)
}

// fearConfidence scales linearly from 0.5 at the buy threshold to 1.0 at
// sentiment zero; deeper fear is a stronger signal.
func (s *ThresholdDCA) fearConfidence(sentiment int) float64 {
	threshold := s.config.BuyThreshold
	if threshold == 0 {
		return 1.0
	}
	confidence := float64(threshold-sentiment)/float64(threshold) + 0.5
	if confidence < 0.5 {
		return 0.5
	}
	if confidence > 1.0 {
		return 1.0
	}
	return confidence
}
