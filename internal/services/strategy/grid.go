package strategy

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/internal/domain"
)

// minOrderAmount suppresses dust-sized grid buys.
var minOrderAmount = decimal.NewFromInt(10)

// GridDCAConfig configures the grid-spaced DCA policy.
type GridDCAConfig struct {
	// FearThreshold sentiment value at or below which the grid activates.
	FearThreshold int
	// GridLevels number of discrete grid levels.
	GridLevels int
	// GridSpacingPct percentage price drop between adjacent levels.
	GridSpacingPct float64
	// BaseAmount quote amount bought at level zero.
	BaseAmount decimal.Decimal
	// LevelMultiplier amount multiplier applied per level below reference.
	LevelMultiplier float64
	// MaxCapital maximum total quote capital to deploy.
	MaxCapital decimal.Decimal
	// SellThreshold sentiment value at or above which to consider selling.
	SellThreshold int
	// HoldDays minimum hold period.
	HoldDays int
}

// DefaultGridDCAConfig returns the stock parameters.
func DefaultGridDCAConfig() GridDCAConfig {
	return GridDCAConfig{
		FearThreshold:   25,
		GridLevels:      5,
		GridSpacingPct:  5.0,
		BaseAmount:      decimal.NewFromInt(200),
		LevelMultiplier: 1.5,
		MaxCapital:      decimal.NewFromInt(5000),
		SellThreshold:   50,
		HoldDays:        90,
	}
}

// Validate fails fast before any evaluation.
func (c GridDCAConfig) Validate() error {
	if c.FearThreshold < 0 || c.FearThreshold > 100 {
		return errors.Errorf("fear threshold must be 0-100, got %d", c.FearThreshold)
	}
	if c.SellThreshold < 0 || c.SellThreshold > 100 {
		return errors.Errorf("sell threshold must be 0-100, got %d", c.SellThreshold)
	}
	if c.FearThreshold >= c.SellThreshold {
		return errors.Errorf("fear threshold (%d) must be below sell threshold (%d)", c.FearThreshold, c.SellThreshold)
	}
	if c.GridLevels < 1 {
		return errors.Errorf("grid levels must be >= 1, got %d", c.GridLevels)
	}
	if c.GridSpacingPct <= 0 {
		return errors.Errorf("grid spacing must be positive, got %f", c.GridSpacingPct)
	}
	if c.BaseAmount.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("base amount must be positive, got %s", c.BaseAmount.String())
	}
	if c.LevelMultiplier <= 0 {
		return errors.Errorf("level multiplier must be positive, got %f", c.LevelMultiplier)
	}
	if c.MaxCapital.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("max capital must be positive, got %s", c.MaxCapital.String())
	}
	if c.HoldDays < 1 {
		return errors.Errorf("hold days must be >= 1, got %d", c.HoldDays)
	}
	return nil
}

// GridDCA latches a reference price on first entering the fear zone and
// buys progressively larger tranches at stepped price levels below it.
// The reference resets after a sell, forcing re-latching on the next
// fear-zone entry.
type GridDCA struct {
	config         GridDCAConfig
	referencePrice *decimal.Decimal
}

// NewGridDCA creates the strategy with a validated config.
func NewGridDCA(config GridDCAConfig) (*GridDCA, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid grid DCA config")
	}
	return &GridDCA{config: config}, nil
}

func newGridDCAFromParams(params map[string]any) (Strategy, error) {
	if err := rejectUnknownKeys(params,
		"fear_threshold", "grid_levels", "grid_spacing_pct", "base_amount",
		"level_multiplier", "max_capital", "sell_threshold", "hold_days"); err != nil {
		return nil, err
	}

	cfg := DefaultGridDCAConfig()
	var err error
	if cfg.FearThreshold, err = intParam(params, "fear_threshold", cfg.FearThreshold); err != nil {
		return nil, err
	}
	if cfg.GridLevels, err = intParam(params, "grid_levels", cfg.GridLevels); err != nil {
		return nil, err
	}
	if cfg.GridSpacingPct, err = floatParam(params, "grid_spacing_pct", cfg.GridSpacingPct); err != nil {
		return nil, err
	}
	if cfg.BaseAmount, err = decimalParam(params, "base_amount", cfg.BaseAmount); err != nil {
		return nil, err
	}
	if cfg.LevelMultiplier, err = floatParam(params, "level_multiplier", cfg.LevelMultiplier); err != nil {
		return nil, err
	}
	if cfg.MaxCapital, err = decimalParam(params, "max_capital", cfg.MaxCapital); err != nil {
		return nil, err
	}
	if cfg.SellThreshold, err = intParam(params, "sell_threshold", cfg.SellThreshold); err != nil {
		return nil, err
	}
	if cfg.HoldDays, err = intParam(params, "hold_days", cfg.HoldDays); err != nil {
		return nil, err
	}

	return NewGridDCA(cfg)
}

// Name implements Strategy.
func (s *GridDCA) Name() string { return "grid-fear" }

// Description implements Strategy.
func (s *GridDCA) Description() string {
	return "grid DCA with increasing size at lower price levels during fear"
}

// Evaluate implements Strategy.
func (s *GridDCA) Evaluate(snapshot domain.MarketSnapshot) domain.Signal {
	cfg := s.config
	sentiment := snapshot.Sentiment

	if sentiment <= cfg.FearThreshold && snapshot.TotalInvested.LessThan(cfg.MaxCapital) {
		s.latchReference(snapshot)
		level := s.gridLevel(snapshot.Price)
		amount := s.levelAmount(level)

		if remaining := cfg.MaxCapital.Sub(snapshot.TotalInvested); amount.GreaterThan(remaining) {
			amount = remaining
		}

		if amount.GreaterThan(minOrderAmount) {
			return domain.Signal{
				Action:     domain.ActionBuy,
				Confidence: math.Min(1.0, 0.5+float64(cfg.FearThreshold-sentiment)/50),
				Reason:     fmt.Sprintf("sentiment %d <= fear threshold %d at grid level %d", sentiment, cfg.FearThreshold, level),
				Amount:     amount,
				Metadata: map[string]any{
					"sentiment":       sentiment,
					"grid_level":      level,
					"reference_price": s.reference(snapshot.Price).String(),
				},
			}
		}
	}

	if sentiment >= cfg.SellThreshold {
		eligible := eligiblePositions(snapshot, cfg.HoldDays)
		if len(eligible) > 0 {
			// force re-latching on the next fear-zone entry
			s.referencePrice = nil
			return domain.Signal{
				Action:     domain.ActionSell,
				Confidence: 0.8,
				Reason:     fmt.Sprintf("sentiment %d >= sell threshold %d, grid exit", sentiment, cfg.SellThreshold),
				Amount:     aggregateBaseQty(eligible),
				Metadata: map[string]any{
					"sentiment":          sentiment,
					"eligible_positions": len(eligible),
				},
			}
		}
	}

	return domain.HoldSignal(
		fmt.Sprintf("sentiment %d outside grid zone", sentiment),
		map[string]any{"sentiment": sentiment},
	)
}

// latchReference pins the reference price on first fear-zone entry.
func (s *GridDCA) latchReference(snapshot domain.MarketSnapshot) {
	if s.referencePrice == nil {
		price := snapshot.Price
		s.referencePrice = &price
	}
}

func (s *GridDCA) reference(fallback decimal.Decimal) decimal.Decimal {
	if s.referencePrice == nil {
		return fallback
	}
	return *s.referencePrice
}

// gridLevel maps the percentage drop below the reference price to a
// discrete level in [0, GridLevels-1]. Prices at or above the reference
// stay at level zero.
func (s *GridDCA) gridLevel(currentPrice decimal.Decimal) int {
	if s.referencePrice == nil || s.referencePrice.IsZero() {
		return 0
	}
	dropPct, _ := s.referencePrice.Sub(currentPrice).Div(*s.referencePrice).Mul(decimal.NewFromInt(100)).Float64()
	level := int(dropPct / s.config.GridSpacingPct)
	if level < 0 {
		return 0
	}
	if level > s.config.GridLevels-1 {
		return s.config.GridLevels - 1
	}
	return level
}

// levelAmount scales the base amount by the multiplier per level.
func (s *GridDCA) levelAmount(level int) decimal.Decimal {
	multiplier := math.Pow(s.config.LevelMultiplier, float64(level))
	return s.config.BaseAmount.Mul(decimal.NewFromFloat(multiplier))
}
