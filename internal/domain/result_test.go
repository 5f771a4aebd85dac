package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *RunResult {
	return &RunResult{
		Config: RunConfig{
			Strategy:       "fear-greed-dca",
			StartDate:      "2023-01-01",
			EndDate:        "2023-12-31",
			InitialCapital: decimal.NewFromInt(10000),
			FeeRate:        decimal.NewFromFloat(0.001),
			SlippageRate:   decimal.NewFromFloat(0.0005),
		},
		Trades: []Trade{
			{EntryDate: "2023-02-01", ExitDate: "2023-08-01", EntryPrice: 20000, ExitPrice: 29000, PnLPct: 45.0, HoldDays: 181},
		},
		Metrics: Metrics{
			TotalReturnPct:      12.3456,
			AnnualizedReturnPct: 12.3456,
			Sharpe:              1.987654,
			Sortino:             2.123456,
			MaxDrawdownPct:      -8.7654,
			Calmar:              1.408,
			WinRatePct:          66.66,
			AvgWinPct:           45.0,
			AvgLossPct:          0,
			ProfitFactor:        3.456,
			TotalTrades:         3,
			AvgHoldDays:         181.0,
			BenchmarkReturnPct:  10.0,
			Alpha:               2.3456,
		},
	}
}

func TestRunResult_Report_RoundTrip(t *testing.T) {
	report := sampleResult().Report()

	payload, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, report, decoded)
	assert.Equal(t, "fear-greed-dca", decoded.Strategy)
	assert.Equal(t, "2023-01-01", decoded.StartDate)
	assert.Equal(t, "2023-12-31", decoded.EndDate)
}

func TestRunResult_Report_Rounding(t *testing.T) {
	report := sampleResult().Report()

	assert.Equal(t, 12.35, report.TotalReturnPct)
	assert.Equal(t, 1.99, report.SharpeRatio)
	assert.Equal(t, -8.77, report.MaxDrawdownPct)
	assert.Equal(t, 66.7, report.WinRatePct)
	assert.Equal(t, 181.0, report.AvgHoldDays)
	assert.Equal(t, 2.35, report.Alpha)
}

func TestRunResult_Report_ExactKeys(t *testing.T) {
	payload, err := json.Marshal(sampleResult().Report())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))

	for _, key := range []string{
		"strategy", "start_date", "end_date", "total_return_pct",
		"annualized_return_pct", "sharpe_ratio", "sortino_ratio",
		"max_drawdown_pct", "calmar_ratio", "win_rate_pct", "avg_win_pct",
		"avg_loss_pct", "profit_factor", "total_trades", "avg_hold_days",
		"btc_hold_return_pct", "alpha", "trades",
	} {
		assert.Contains(t, raw, key)
	}
	assert.Len(t, raw, 18)
}

func TestRunResult_Report_InfinityCapped(t *testing.T) {
	res := sampleResult()
	res.Metrics.ProfitFactor = math.Inf(1)
	res.Metrics.Sortino = math.Inf(1)

	report := res.Report()

	assert.Equal(t, 9999.99, report.ProfitFactor)
	assert.Equal(t, 9999.99, report.SortinoRatio)

	_, err := json.Marshal(report)
	assert.NoError(t, err)
}

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		value int
		label string
	}{
		{0, "Extreme Fear"},
		{20, "Extreme Fear"},
		{21, "Fear"},
		{40, "Fear"},
		{55, "Neutral"},
		{70, "Greed"},
		{81, "Extreme Greed"},
		{100, "Extreme Greed"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.label, SentimentLabel(tt.value), "value %d", tt.value)
	}
}

func TestSignal_Validate(t *testing.T) {
	hold := HoldSignal("nothing to do", nil)
	assert.NoError(t, hold.Validate())

	buy := Signal{Action: ActionBuy, Confidence: 0.8, Amount: decimal.NewFromInt(500)}
	assert.NoError(t, buy.Validate())

	badBuy := Signal{Action: ActionBuy, Confidence: 0.8, Amount: decimal.Zero}
	assert.Error(t, badBuy.Validate())

	badHold := Signal{Action: ActionHold, Confidence: 1, Amount: decimal.NewFromInt(1)}
	assert.Error(t, badHold.Validate())

	badConfidence := Signal{Action: ActionSell, Confidence: 1.5, Amount: decimal.NewFromInt(1)}
	assert.Error(t, badConfidence.Validate())
}

func TestRunConfig_Validate(t *testing.T) {
	valid := RunConfig{
		Strategy:       "fear-greed-dca",
		StartDate:      "2023-01-01",
		EndDate:        "2023-12-31",
		InitialCapital: decimal.NewFromInt(10000),
	}
	assert.NoError(t, valid.Validate())

	swapped := valid
	swapped.StartDate, swapped.EndDate = swapped.EndDate, swapped.StartDate
	assert.Error(t, swapped.Validate())

	broke := valid
	broke.InitialCapital = decimal.Zero
	assert.Error(t, broke.Validate())

	negFee := valid
	negFee.FeeRate = decimal.NewFromFloat(-0.001)
	assert.Error(t, negFee.Validate())
}
