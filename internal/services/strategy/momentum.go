package strategy

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/internal/domain"
)

// MomentumDCAConfig configures the momentum-confirmed DCA policy.
type MomentumDCAConfig struct {
	// FearThreshold sentiment value at or below which the momentum watch
	// is active.
	FearThreshold int
	// MinConsecutiveDown consecutive declining days required to buy.
	MinConsecutiveDown int
	// DCAAmount quote-currency amount per buy.
	DCAAmount decimal.Decimal
	// MaxCapital maximum total quote capital to deploy.
	MaxCapital decimal.Decimal
	// HoldDays minimum hold period.
	HoldDays int
	// SellThreshold sentiment value at or above which to consider selling.
	SellThreshold int
}

// DefaultMomentumDCAConfig returns the stock parameters.
func DefaultMomentumDCAConfig() MomentumDCAConfig {
	return MomentumDCAConfig{
		FearThreshold:      30,
		MinConsecutiveDown: 3,
		DCAAmount:          decimal.NewFromInt(500),
		MaxCapital:         decimal.NewFromInt(5000),
		HoldDays:           60,
		SellThreshold:      50,
	}
}

// Validate fails fast before any evaluation.
func (c MomentumDCAConfig) Validate() error {
	if c.FearThreshold < 0 || c.FearThreshold > 100 {
		return errors.Errorf("fear threshold must be 0-100, got %d", c.FearThreshold)
	}
	if c.SellThreshold < 0 || c.SellThreshold > 100 {
		return errors.Errorf("sell threshold must be 0-100, got %d", c.SellThreshold)
	}
	if c.FearThreshold >= c.SellThreshold {
		return errors.Errorf("fear threshold (%d) must be below sell threshold (%d)", c.FearThreshold, c.SellThreshold)
	}
	if c.MinConsecutiveDown < 1 {
		return errors.Errorf("min consecutive down days must be >= 1, got %d", c.MinConsecutiveDown)
	}
	if c.DCAAmount.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("dca amount must be positive, got %s", c.DCAAmount.String())
	}
	if c.MaxCapital.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("max capital must be positive, got %s", c.MaxCapital.String())
	}
	if c.HoldDays < 1 {
		return errors.Errorf("hold days must be >= 1, got %d", c.HoldDays)
	}
	return nil
}

// MomentumDCA buys only when fear is confirmed by a streak of declining
// days. It keeps a bounded trailing price window, updated once per
// evaluation in time order.
type MomentumDCA struct {
	config       MomentumDCAConfig
	priceHistory []decimal.Decimal
}

// NewMomentumDCA creates the strategy with a validated config.
func NewMomentumDCA(config MomentumDCAConfig) (*MomentumDCA, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid momentum DCA config")
	}
	return &MomentumDCA{config: config}, nil
}

func newMomentumDCAFromParams(params map[string]any) (Strategy, error) {
	if err := rejectUnknownKeys(params,
		"fear_threshold", "min_consecutive_down", "dca_amount",
		"max_capital", "hold_days", "sell_threshold"); err != nil {
		return nil, err
	}

	cfg := DefaultMomentumDCAConfig()
	var err error
	if cfg.FearThreshold, err = intParam(params, "fear_threshold", cfg.FearThreshold); err != nil {
		return nil, err
	}
	if cfg.MinConsecutiveDown, err = intParam(params, "min_consecutive_down", cfg.MinConsecutiveDown); err != nil {
		return nil, err
	}
	if cfg.DCAAmount, err = decimalParam(params, "dca_amount", cfg.DCAAmount); err != nil {
		return nil, err
	}
	if cfg.MaxCapital, err = decimalParam(params, "max_capital", cfg.MaxCapital); err != nil {
		return nil, err
	}
	if cfg.HoldDays, err = intParam(params, "hold_days", cfg.HoldDays); err != nil {
		return nil, err
	}
	if cfg.SellThreshold, err = intParam(params, "sell_threshold", cfg.SellThreshold); err != nil {
		return nil, err
	}

	return NewMomentumDCA(cfg)
}

// Name implements Strategy.
func (s *MomentumDCA) Name() string { return "momentum-dca" }

// Description implements Strategy.
func (s *MomentumDCA) Description() string {
	return "DCA after consecutive red days with fear confirmation"
}

// Evaluate implements Strategy.
func (s *MomentumDCA) Evaluate(snapshot domain.MarketSnapshot) domain.Signal {
	cfg := s.config
	sentiment := snapshot.Sentiment

	s.pushPrice(snapshot.Price)
	consecutiveDown := s.consecutiveDown()

	if sentiment <= cfg.FearThreshold &&
		consecutiveDown >= cfg.MinConsecutiveDown &&
		snapshot.TotalInvested.LessThan(cfg.MaxCapital) {
		return domain.Signal{
			Action:     domain.ActionBuy,
			Confidence: math.Min(1.0, 0.5+float64(consecutiveDown)*0.1),
			Reason: fmt.Sprintf("sentiment %d <= fear threshold %d after %d consecutive down days",
				sentiment, cfg.FearThreshold, consecutiveDown),
			Amount: cfg.DCAAmount,
			Metadata: map[string]any{
				"sentiment":        sentiment,
				"consecutive_down": consecutiveDown,
			},
		}
	}

	if sentiment >= cfg.SellThreshold {
		eligible := eligiblePositions(snapshot, cfg.HoldDays)
		if len(eligible) > 0 {
			return domain.Signal{
				Action:     domain.ActionSell,
				Confidence: 0.75,
				Reason: fmt.Sprintf("sentiment %d >= sell threshold %d, %d eligible position(s)",
					sentiment, cfg.SellThreshold, len(eligible)),
				Amount: aggregateBaseQty(eligible),
				Metadata: map[string]any{
					"sentiment":          sentiment,
					"eligible_positions": len(eligible),
				},
			}
		}
	}

	return domain.HoldSignal(
		fmt.Sprintf("sentiment %d, %d consecutive down days (need %d)",
			sentiment, consecutiveDown, cfg.MinConsecutiveDown),
		map[string]any{"sentiment": sentiment, "consecutive_down": consecutiveDown},
	)
}

// pushPrice appends to the trailing window, keeping only the samples
// needed for the streak computation.
func (s *MomentumDCA) pushPrice(price decimal.Decimal) {
	s.priceHistory = append(s.priceHistory, price)
	maxNeeded := s.config.MinConsecutiveDown + 1
	if len(s.priceHistory) > maxNeeded {
		s.priceHistory = s.priceHistory[len(s.priceHistory)-maxNeeded:]
	}
}

// consecutiveDown counts strictly decreasing days from the most recent
// sample backward until the first increase or the window end.
func (s *MomentumDCA) consecutiveDown() int {
	prices := s.priceHistory
	if len(prices) < 2 {
		return 0
	}
	count := 0
	for i := len(prices) - 1; i > 0; i-- {
		if prices[i].LessThan(prices[i-1]) {
			count++
		} else {
			break
		}
	}
	return count
}
