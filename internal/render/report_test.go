package render

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fearproto/fearbot/internal/domain"
)

func sampleResult() *domain.RunResult {
	return &domain.RunResult{
		Config: domain.RunConfig{
			Strategy:       "fear-greed-dca",
			StartDate:      "2024-01-01",
			EndDate:        "2024-12-31",
			InitialCapital: decimal.NewFromInt(10000),
		},
		Trades: []domain.Trade{
			{EntryDate: "2024-01-10", ExitDate: "2024-06-01", PnLPct: 24.871, HoldDays: 143, SentimentAtEntry: 14},
			{EntryDate: "2024-02-02", ExitDate: "2024-06-01", PnLPct: -3.215, HoldDays: 120, SentimentAtEntry: 22},
		},
		Metrics: domain.Metrics{
			TotalReturnPct:      12.345,
			AnnualizedReturnPct: 12.5,
			Sharpe:              1.23,
			MaxDrawdownPct:      -8.7,
			WinRatePct:          50.0,
			TotalTrades:         2,
			AvgHoldDays:         131.5,
			BenchmarkReturnPct:  20.0,
			Alpha:               -7.655,
		},
	}
}

func TestJSON_ContainsExactKeys(t *testing.T) {
	out, err := JSON(sampleResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "fear-greed-dca", decoded["strategy"])
	assert.Equal(t, 12.35, decoded["total_return_pct"])
	assert.Contains(t, decoded, "btc_hold_return_pct")
	assert.Contains(t, decoded, "trades")
}

func TestTerminal_ShowsMetricsAndTrades(t *testing.T) {
	out := Terminal(sampleResult())

	assert.Contains(t, out, "FEAR-GREED-DCA")
	assert.Contains(t, out, "+12.35%")
	assert.Contains(t, out, "2024-01-10")
	assert.Contains(t, out, "143 days")
}

func TestMarkdown_RendersTables(t *testing.T) {
	out := Markdown(sampleResult())

	assert.Contains(t, out, "# Backtest: fear-greed-dca")
	assert.Contains(t, out, "| Total return | 12.35% |")
	assert.Contains(t, out, "## Trades")
	assert.Contains(t, out, "| 2024-01-10 | 2024-06-01 | +24.87% |")
}

func TestTerminal_EmptyRunOmitsTradeSection(t *testing.T) {
	result := sampleResult()
	result.Trades = nil

	out := Terminal(result)
	assert.NotContains(t, out, "CLOSED POSITIONS")
}
