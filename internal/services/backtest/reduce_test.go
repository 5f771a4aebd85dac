package backtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fearproto/fearbot/internal/domain"
)

func closedPosition(entryDate, exitDate string, entryPrice, exitPrice int64) domain.Position {
	pos := domain.Position{
		EntryDate:        entryDate,
		EntryPrice:       decimal.NewFromInt(entryPrice),
		BaseQty:          decimal.NewFromInt(1),
		QuoteAmount:      decimal.NewFromInt(entryPrice),
		SentimentAtEntry: 15,
		Status:           domain.PositionOpen,
	}
	pos.Close(exitDate, decimal.NewFromInt(exitPrice))
	return pos
}

func TestTradesFromPositions_DeduplicatesByEntryExitKey(t *testing.T) {
	closed := []domain.Position{
		closedPosition("2024-01-01", "2024-03-01", 40000, 50000),
		closedPosition("2024-01-01", "2024-03-01", 40000, 50000),
		closedPosition("2024-01-02", "2024-03-01", 41000, 50000),
	}

	trades := tradesFromPositions(closed)
	assert.Len(t, trades, 2)
}

func TestTradesFromPositions_SkipsUnparsableDates(t *testing.T) {
	closed := []domain.Position{
		closedPosition("2024-01-01", "2024-03-01", 40000, 50000),
		closedPosition("not-a-date", "2024-03-01", 40000, 50000),
		closedPosition("2024-01-03", "garbage", 40000, 50000),
	}

	trades := tradesFromPositions(closed)
	assert.Len(t, trades, 1)
	assert.Equal(t, "2024-01-01", trades[0].EntryDate)
	assert.Equal(t, 60, trades[0].HoldDays)
}

func TestCalendarSpanDays(t *testing.T) {
	assert.Equal(t, 9, calendarSpanDays("2024-01-01", "2024-01-10"))
	assert.Equal(t, 1, calendarSpanDays("2024-01-01", "2024-01-01"), "single-day runs floor at one")
	assert.Equal(t, 1, calendarSpanDays("bogus", "2024-01-10"))
}

func TestReduce_MetricsFromTrades(t *testing.T) {
	records := []domain.DailyRecord{
		{Date: "2024-01-01", Price: decimal.NewFromInt(40000), PortfolioValue: decimal.NewFromInt(10000)},
		{Date: "2024-12-31", Price: decimal.NewFromInt(48000), PortfolioValue: decimal.NewFromInt(11000)},
	}
	closed := []domain.Position{
		closedPosition("2024-01-01", "2024-06-01", 40000, 50000), // +25%
		closedPosition("2024-01-02", "2024-06-01", 40000, 38000), // -5%
	}

	result := reduce(domain.RunConfig{
		Strategy:       "fear-greed-dca",
		StartDate:      "2024-01-01",
		EndDate:        "2024-12-31",
		InitialCapital: decimal.NewFromInt(10000),
	}, records, closed)

	m := result.Metrics
	assert.InDelta(t, 10.0, m.TotalReturnPct, 1e-9)
	assert.InDelta(t, 20.0, m.BenchmarkReturnPct, 1e-9)
	assert.InDelta(t, -10.0, m.Alpha, 1e-9)
	assert.InDelta(t, 50.0, m.WinRatePct, 1e-9)
	assert.InDelta(t, 25.0, m.AvgWinPct, 1e-9)
	assert.InDelta(t, -5.0, m.AvgLossPct, 1e-9)
	assert.InDelta(t, 5.0, m.ProfitFactor, 1e-9)
	assert.Len(t, result.Trades, 2)
}
