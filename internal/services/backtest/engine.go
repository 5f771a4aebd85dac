// Package backtest replays a strategy over historical daily sentiment and
// price series through a deterministic fill simulator, then reduces the
// run into performance metrics. One Engine run is fully sequential; each
// run owns its own simulator and ledger, so independent runs may execute
// concurrently.
package backtest

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/internal/services/exchange"
	"github.com/fearproto/fearbot/internal/services/ledger"
	"github.com/fearproto/fearbot/internal/services/strategy"
)

// dustFloor is the smallest base quantity worth selling. Requests below
// it are dropped without touching the simulator.
var dustFloor = decimal.NewFromFloat(0.00001)

// Engine replays strategies over date-indexed series.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a replay engine. A nil logger is replaced with a nop.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Run replays the configured strategy over the intersection of the two
// series, restricted to the config's date range. An empty intersection is
// not an error: it yields a result with no records and zero metrics.
func (e *Engine) Run(
	config domain.RunConfig,
	sentiments map[string]int,
	prices map[string]decimal.Decimal,
) (*domain.RunResult, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid run config")
	}

	strat, err := strategy.New(config.Strategy, config.Params)
	if err != nil {
		return nil, err
	}

	dates := mergeDates(sentiments, prices, config.StartDate, config.EndDate)
	if len(dates) == 0 {
		e.logger.Warn("no overlapping dates between sentiment and price series",
			zap.String("start", config.StartDate),
			zap.String("end", config.EndDate))
		result := reduce(config, nil, nil)
		return &result, nil
	}

	sim, err := exchange.NewSim(
		prices[dates[0]],
		config.FeeRate,
		config.SlippageRate,
		config.InitialCapital,
		decimal.Zero,
		e.logger,
	)
	if err != nil {
		return nil, errors.Wrap(err, "init fill simulator")
	}

	e.logger.Info("starting replay",
		zap.String("strategy", strat.Name()),
		zap.String("first", dates[0]),
		zap.String("last", dates[len(dates)-1]),
		zap.Int("days", len(dates)))

	records := make([]domain.DailyRecord, 0, len(dates))
	book := ledger.New()

	for _, date := range dates {
		price := prices[date]
		sentiment := sentiments[date]
		sim.SetPrice(price)

		quote, base := sim.Balances()
		snap := domain.MarketSnapshot{
			Date:           date,
			Sentiment:      sentiment,
			SentimentLabel: domain.SentimentLabel(sentiment),
			Price:          price,
			PortfolioValue: quote.Add(base.Mul(price)),
			TotalInvested:  book.TotalInvested(),
			OpenPositions:  book.Open(),
		}

		signal := strat.Evaluate(snap)

		var fill *domain.Fill
		switch {
		case signal.Action == domain.ActionBuy && signal.Amount.IsPositive():
			fill = sim.Buy(signal.Amount)
			if fill.Filled() {
				if err := book.ApplyBuy(date, fill, signal.Amount, sentiment); err != nil {
					e.logger.Error("dropping position for filled buy", zap.String("date", date), zap.Error(err))
				}
			}

		case signal.Action == domain.ActionSell && signal.Amount.IsPositive():
			qty := signal.Amount
			if qty.GreaterThan(base) {
				qty = base
			}
			if qty.LessThan(dustFloor) {
				e.logger.Debug("skipping dust sell",
					zap.String("date", date),
					zap.String("qty", qty.String()))
				break
			}
			fill = sim.Sell(qty)
			book.ApplySell(date, fill)
		}

		quote, base = sim.Balances()
		records = append(records, domain.DailyRecord{
			Date:           date,
			Price:          price,
			Sentiment:      sentiment,
			Action:         signal.Action,
			Signal:         signal,
			Fill:           fill,
			PortfolioValue: quote.Add(base.Mul(price)),
			Cash:           quote,
			BaseHeld:       base,
		})
	}

	result := reduce(config, records, book.Closed())
	e.logger.Info("replay finished",
		zap.Int("days", len(records)),
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Float64("total_return_pct", result.Metrics.TotalReturnPct))
	return &result, nil
}

// mergeDates returns the ascending intersection of the two series' keys,
// restricted to [start, end]. The fixed-width date format makes plain
// string comparison safe.
func mergeDates(sentiments map[string]int, prices map[string]decimal.Decimal, start, end string) []string {
	dates := make([]string, 0, len(sentiments))
	for date := range sentiments {
		if _, ok := prices[date]; !ok {
			continue
		}
		if date < start || date > end {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
