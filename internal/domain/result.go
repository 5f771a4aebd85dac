package domain

import "math"

// Metrics is the performance bundle computed by the result reducer.
// Values stay at full precision here; rounding happens only in Report.
type Metrics struct {
	TotalReturnPct      float64
	AnnualizedReturnPct float64
	Sharpe              float64
	Sortino             float64
	MaxDrawdownPct      float64
	Calmar              float64
	WinRatePct          float64
	AvgWinPct           float64
	AvgLossPct          float64
	ProfitFactor        float64
	TotalTrades         int
	AvgHoldDays         float64
	BenchmarkReturnPct  float64
	Alpha               float64
}

// Trade is one realized trade reconstructed from a closed position.
type Trade struct {
	EntryDate        string  `json:"entry_date"`
	ExitDate         string  `json:"exit_date"`
	EntryPrice       float64 `json:"entry_price"`
	ExitPrice        float64 `json:"exit_price"`
	BaseQty          float64 `json:"base_qty"`
	QuoteAmount      float64 `json:"quote_amount"`
	SentimentAtEntry int     `json:"sentiment_at_entry"`
	PnLPct           float64 `json:"pnl_pct"`
	HoldDays         int     `json:"hold_days"`
}

// RunResult bundles everything a finished run produced. Created once at
// the end of a run and never mutated afterwards.
type RunResult struct {
	Config  RunConfig
	Records []DailyRecord
	Trades  []Trade
	Metrics Metrics
}

// Report is the flat JSON-serializable view of a RunResult. Numeric
// fields are rounded here and nowhere else.
type Report struct {
	Strategy            string  `json:"strategy"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	SortinoRatio        float64 `json:"sortino_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	CalmarRatio         float64 `json:"calmar_ratio"`
	WinRatePct          float64 `json:"win_rate_pct"`
	AvgWinPct           float64 `json:"avg_win_pct"`
	AvgLossPct          float64 `json:"avg_loss_pct"`
	ProfitFactor        float64 `json:"profit_factor"`
	TotalTrades         int     `json:"total_trades"`
	AvgHoldDays         float64 `json:"avg_hold_days"`
	BTCHoldReturnPct    float64 `json:"btc_hold_return_pct"`
	Alpha               float64 `json:"alpha"`
	Trades              []Trade `json:"trades"`
}

// maxReportedRatio caps unbounded ratios (no losing trades) for JSON,
// which cannot encode IEEE infinities.
const maxReportedRatio = 9999.99

// Report flattens the result into its serializable form.
func (r *RunResult) Report() Report {
	m := r.Metrics
	trades := r.Trades
	if trades == nil {
		trades = []Trade{}
	}
	return Report{
		Strategy:            r.Config.Strategy,
		StartDate:           r.Config.StartDate,
		EndDate:             r.Config.EndDate,
		TotalReturnPct:      round2(m.TotalReturnPct),
		AnnualizedReturnPct: round2(m.AnnualizedReturnPct),
		SharpeRatio:         round2(m.Sharpe),
		SortinoRatio:        round2(m.Sortino),
		MaxDrawdownPct:      round2(m.MaxDrawdownPct),
		CalmarRatio:         round2(m.Calmar),
		WinRatePct:          round1(m.WinRatePct),
		AvgWinPct:           round2(m.AvgWinPct),
		AvgLossPct:          round2(m.AvgLossPct),
		ProfitFactor:        round2(m.ProfitFactor),
		TotalTrades:         m.TotalTrades,
		AvgHoldDays:         round1(m.AvgHoldDays),
		BTCHoldReturnPct:    round2(m.BenchmarkReturnPct),
		Alpha:               round2(m.Alpha),
		Trades:              trades,
	}
}

func round1(v float64) float64 {
	return roundTo(v, 10)
}

func round2(v float64) float64 {
	return roundTo(v, 100)
}

func roundTo(v, scale float64) float64 {
	if math.IsInf(v, 1) || v > maxReportedRatio {
		return maxReportedRatio
	}
	if math.IsInf(v, -1) {
		return -maxReportedRatio
	}
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*scale) / scale
}
