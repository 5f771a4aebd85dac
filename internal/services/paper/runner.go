// Package paper runs a strategy against live prices and sentiment with
// simulated fills. The book survives restarts through the positions store,
// and every evaluated tick is journaled.
package paper

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/internal/services/exchange"
	"github.com/fearproto/fearbot/internal/services/ledger"
	"github.com/fearproto/fearbot/internal/services/pricer"
	"github.com/fearproto/fearbot/internal/services/strategy"
	"github.com/fearproto/fearbot/internal/storage/journal"
	"github.com/fearproto/fearbot/internal/storage/positions"
	"github.com/fearproto/fearbot/pkg/retrier"
)

// dustFloor mirror of the backtest sell floor.
var dustFloor = decimal.NewFromFloat(0.00001)

// SentimentSource supplies the current fear & greed value.
type SentimentSource interface {
	Latest(ctx context.Context) (int, error)
}

// Config wires a paper session.
type Config struct {
	Pair           domain.Pair
	Strategy       strategy.Strategy
	Pricer         pricer.Pricer
	Sentiment      SentimentSource
	Store          *positions.Store
	Journal        *journal.Journal
	InitialCapital decimal.Decimal
	FeeRate        decimal.Decimal
	SlippageRate   decimal.Decimal
	PollInterval   time.Duration
	Logger         *zap.Logger
}

// Runner polls the market on an interval and applies the strategy's
// decisions to a simulated book.
type Runner struct {
	cfg     Config
	retrier *retrier.Retrier
	logger  *zap.Logger

	sim  *exchange.Sim
	book *ledger.Ledger
}

// NewRunner validates the wiring. State restore happens in Run, once the
// first live price is known.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Strategy == nil {
		return nil, errors.New("strategy is required")
	}
	if cfg.Pricer == nil {
		return nil, errors.New("pricer is required")
	}
	if cfg.Sentiment == nil {
		return nil, errors.New("sentiment source is required")
	}
	if cfg.InitialCapital.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("initial capital must be positive, got %s", cfg.InitialCapital.String())
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		retrier: retrier.New(),
		logger:  logger,
	}, nil
}

// Run polls until the context is cancelled. The first tick happens
// immediately. Individual tick failures are logged and retried on the
// next interval, never fatal.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.init(ctx); err != nil {
		return err
	}

	r.logger.Info("paper session started",
		zap.String("pair", r.cfg.Pair.String()),
		zap.String("strategy", r.cfg.Strategy.Name()),
		zap.Duration("interval", r.cfg.PollInterval))

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := r.tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("tick failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// init builds the simulator, restoring balances and open positions from a
// previous session when present.
func (r *Runner) init(ctx context.Context) error {
	price, err := retrier.DoWithData(r.retrier, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return r.cfg.Pricer.GetPrice(ctx, r.cfg.Pair)
	})
	if err != nil {
		return errors.Wrap(err, "fetch initial price")
	}

	quote := r.cfg.InitialCapital
	base := decimal.Zero
	r.book = ledger.New()

	if r.cfg.Store != nil {
		state, err := r.cfg.Store.Load()
		if err != nil {
			return errors.Wrap(err, "restore paper state")
		}
		if state != nil {
			quote = state.Quote
			base = state.Base
			r.book = ledger.Restore(state.OpenPositions, state.TotalInvested)
			r.logger.Info("restored paper state",
				zap.String("quote", quote.String()),
				zap.String("base", base.String()),
				zap.Int("open_positions", len(state.OpenPositions)))
		}
	}

	sim, err := exchange.NewSim(price, r.cfg.FeeRate, r.cfg.SlippageRate, quote, base, r.logger)
	if err != nil {
		return errors.Wrap(err, "init fill simulator")
	}
	r.sim = sim
	return nil
}

func (r *Runner) tick(ctx context.Context) error {
	price, err := retrier.DoWithData(r.retrier, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return r.cfg.Pricer.GetPrice(ctx, r.cfg.Pair)
	})
	if err != nil {
		return errors.Wrap(err, "fetch price")
	}

	sentiment, err := retrier.DoWithData(r.retrier, ctx, func(ctx context.Context) (int, error) {
		return r.cfg.Sentiment.Latest(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "fetch sentiment")
	}

	date := time.Now().UTC().Format(domain.DateLayout)
	r.sim.SetPrice(price)

	quote, base := r.sim.Balances()
	snap := domain.MarketSnapshot{
		Date:           date,
		Sentiment:      sentiment,
		SentimentLabel: domain.SentimentLabel(sentiment),
		Price:          price,
		PortfolioValue: quote.Add(base.Mul(price)),
		TotalInvested:  r.book.TotalInvested(),
		OpenPositions:  r.book.Open(),
	}

	signal := r.cfg.Strategy.Evaluate(snap)

	var fill *domain.Fill
	switch {
	case signal.Action == domain.ActionBuy && signal.Amount.IsPositive():
		fill = r.sim.Buy(signal.Amount)
		if fill.Filled() {
			if err := r.book.ApplyBuy(date, fill, signal.Amount, sentiment); err != nil {
				r.logger.Error("dropping position for filled buy", zap.Error(err))
			}
		}

	case signal.Action == domain.ActionSell && signal.Amount.IsPositive():
		qty := signal.Amount
		if qty.GreaterThan(base) {
			qty = base
		}
		if qty.LessThan(dustFloor) {
			break
		}
		fill = r.sim.Sell(qty)
		if closed := r.book.ApplySell(date, fill); len(closed) > 0 {
			for _, pos := range closed {
				r.logger.Info("position closed",
					zap.String("entry_date", pos.EntryDate),
					zap.Float64("pnl_pct", pos.PnLPct))
			}
		}
	}

	quote, base = r.sim.Balances()
	record := domain.DailyRecord{
		Date:           date,
		Price:          price,
		Sentiment:      sentiment,
		Action:         signal.Action,
		Signal:         signal,
		Fill:           fill,
		PortfolioValue: quote.Add(base.Mul(price)),
		Cash:           quote,
		BaseHeld:       base,
	}

	r.logger.Info("tick",
		zap.String("price", price.String()),
		zap.Int("sentiment", sentiment),
		zap.String("action", signal.Action.String()),
		zap.String("reason", signal.Reason))

	if r.cfg.Journal != nil {
		if err := r.cfg.Journal.Append(record); err != nil {
			r.logger.Warn("journal append failed", zap.Error(err))
		}
	}
	if r.cfg.Store != nil {
		if err := r.cfg.Store.Save(positions.State{
			Pair:          r.cfg.Pair.String(),
			Quote:         quote,
			Base:          base,
			TotalInvested: r.book.TotalInvested(),
			OpenPositions: r.book.Open(),
		}); err != nil {
			r.logger.Warn("state save failed", zap.Error(err))
		}
	}
	return nil
}
