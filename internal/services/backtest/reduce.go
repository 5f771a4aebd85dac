package backtest

import (
	"time"

	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/pkg/quant"
)

// reduce folds the emitted record sequence and the closed-position ledger
// into a RunResult. An empty record sequence reduces to all-zero metrics
// and an empty trade list, never an error.
func reduce(config domain.RunConfig, records []domain.DailyRecord, closed []domain.Position) domain.RunResult {
	result := domain.RunResult{
		Config:  config,
		Records: records,
		Trades:  []domain.Trade{},
	}
	if len(records) == 0 {
		return result
	}

	initial, _ := config.InitialCapital.Float64()
	final, _ := records[len(records)-1].PortfolioValue.Float64()
	totalReturn := (final - initial) / initial * 100

	equity := make([]float64, len(records))
	for i, record := range records {
		equity[i], _ = record.PortfolioValue.Float64()
	}
	maxDrawdown := quant.MaxDrawdown(equity)

	trades := tradesFromPositions(closed)
	returns := make([]float64, len(trades))
	var wins, losses []float64
	var holdDaysSum float64
	for i, trade := range trades {
		returns[i] = trade.PnLPct
		holdDaysSum += float64(trade.HoldDays)
		switch {
		case trade.PnLPct > 0:
			wins = append(wins, trade.PnLPct)
		case trade.PnLPct < 0:
			losses = append(losses, trade.PnLPct)
		}
	}

	days := calendarSpanDays(records[0].Date, records[len(records)-1].Date)
	annualized := quant.AnnualizedReturn(totalReturn, days)

	firstPrice, _ := records[0].Price.Float64()
	lastPrice, _ := records[len(records)-1].Price.Float64()
	benchmark := 0.0
	if firstPrice > 0 {
		benchmark = (lastPrice - firstPrice) / firstPrice * 100
	}

	metrics := domain.Metrics{
		TotalReturnPct:      totalReturn,
		AnnualizedReturnPct: annualized,
		Sharpe:              quant.Sharpe(returns, 0),
		Sortino:             quant.Sortino(returns, 0),
		MaxDrawdownPct:      maxDrawdown,
		Calmar:              quant.Calmar(annualized, maxDrawdown),
		ProfitFactor:        quant.ProfitFactor(wins, losses),
		TotalTrades:         countBuyFills(records),
		BenchmarkReturnPct:  benchmark,
		Alpha:               totalReturn - benchmark,
	}
	if len(trades) > 0 {
		metrics.WinRatePct = float64(len(wins)) / float64(len(trades)) * 100
		metrics.AvgHoldDays = holdDaysSum / float64(len(trades))
	}
	if len(wins) > 0 {
		metrics.AvgWinPct = meanOf(wins)
	}
	if len(losses) > 0 {
		metrics.AvgLossPct = meanOf(losses)
	}

	result.Trades = trades
	result.Metrics = metrics
	return result
}

// tradesFromPositions converts closed positions to trade records,
// deduplicated by entry and exit date. Position pairs whose dates fail to
// parse are skipped rather than aborting the reduction.
func tradesFromPositions(closed []domain.Position) []domain.Trade {
	trades := make([]domain.Trade, 0, len(closed))
	seen := make(map[string]struct{}, len(closed))

	for _, pos := range closed {
		key := pos.EntryDate + "|" + pos.ExitDate
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		entry, err := time.Parse(domain.DateLayout, pos.EntryDate)
		if err != nil {
			continue
		}
		exit, err := time.Parse(domain.DateLayout, pos.ExitDate)
		if err != nil {
			continue
		}

		entryPrice, _ := pos.EntryPrice.Float64()
		exitPrice, _ := pos.ExitPrice.Float64()
		baseQty, _ := pos.BaseQty.Float64()
		quoteAmount, _ := pos.QuoteAmount.Float64()
		trades = append(trades, domain.Trade{
			EntryDate:        pos.EntryDate,
			ExitDate:         pos.ExitDate,
			EntryPrice:       entryPrice,
			ExitPrice:        exitPrice,
			BaseQty:          baseQty,
			QuoteAmount:      quoteAmount,
			SentimentAtEntry: pos.SentimentAtEntry,
			PnLPct:           pos.PnLPct,
			HoldDays:         int(exit.Sub(entry).Hours() / 24),
		})
	}
	return trades
}

// countBuyFills counts successfully filled buy orders across the run.
func countBuyFills(records []domain.DailyRecord) int {
	count := 0
	for _, record := range records {
		if record.Action == domain.ActionBuy && record.Fill != nil && record.Fill.Filled() {
			count++
		}
	}
	return count
}

// calendarSpanDays is the whole-day span between two dates, floored at 1
// so single-day runs still annualize.
func calendarSpanDays(first, last string) int {
	start, err := time.Parse(domain.DateLayout, first)
	if err != nil {
		return 1
	}
	end, err := time.Parse(domain.DateLayout, last)
	if err != nil {
		return 1
	}
	days := int(end.Sub(start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
