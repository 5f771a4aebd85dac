// Package quant provides the financial math used to reduce a backtest run
// into performance statistics: Sharpe, Sortino, drawdown, Calmar, Kelly
// sizing and profit factor. All functions are pure and hold no state.
package quant

import (
	"math"

	"github.com/shopspring/decimal"
)

// Sharpe returns mean excess return over the population standard deviation
// of excess returns. Fewer than two samples, or zero variance, yields 0.
func Sharpe(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFree
	}
	meanExcess := mean(excess)
	std := stddev(excess, meanExcess)
	if std == 0 {
		return 0
	}
	return meanExcess / std
}

// Sortino returns mean excess return over the root-mean-square of negative
// excess returns only. With no downside samples it is +Inf for a positive
// mean excess and 0 otherwise.
func Sortino(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFree
	}
	meanExcess := mean(excess)

	var sumSq float64
	var downside int
	for _, r := range excess {
		if r < 0 {
			sumSq += r * r
			downside++
		}
	}
	if downside == 0 {
		if meanExcess > 0 {
			return math.Inf(1)
		}
		return 0
	}
	downsideDev := math.Sqrt(sumSq / float64(downside))
	if downsideDev == 0 {
		return 0
	}
	return meanExcess / downsideDev
}

// MaxDrawdown returns the deepest running-peak-relative decline of an
// equity curve as a non-positive percentage. Fewer than two points yields 0.
func MaxDrawdown(equityCurve []float64) float64 {
	if len(equityCurve) < 2 {
		return 0
	}
	peak := equityCurve[0]
	maxDD := 0.0
	for _, value := range equityCurve {
		if value > peak {
			peak = value
		}
		dd := (value - peak) / peak * 100
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Calmar returns annualized return over the absolute max drawdown,
// or 0 when the drawdown is exactly zero.
func Calmar(annualizedReturn, maxDrawdown float64) float64 {
	absDD := math.Abs(maxDrawdown)
	if absDD == 0 {
		return 0
	}
	return annualizedReturn / absDD
}

// AnnualizedReturn compounds a total percentage return over the given
// number of days to a 365-day year. Non-positive day counts yield 0; a
// non-positive compounded factor (total wipeout or worse) yields -100.
func AnnualizedReturn(totalReturnPct float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	factor := 1 + totalReturnPct/100
	if factor <= 0 {
		return -100
	}
	years := float64(days) / 365.0
	return (math.Pow(factor, 1/years) - 1) * 100
}

// KellyFraction returns the standard Kelly criterion p - (1-p)/odds,
// clamped to [0,1]. A zero average loss yields 0.
func KellyFraction(winRate, avgWin, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 0
	}
	odds := avgWin / avgLoss
	k := winRate - (1-winRate)/odds
	return math.Max(0, math.Min(1, k))
}

// ProfitFactor returns gross profit over gross loss. With wins and no
// losses it is +Inf; with no wins it is 0.
func ProfitFactor(wins, losses []float64) float64 {
	var grossProfit, grossLoss float64
	for _, w := range wins {
		if w > 0 {
			grossProfit += w
		}
	}
	for _, l := range losses {
		if l < 0 {
			grossLoss += math.Abs(l)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// PositionSize returns capital scaled by the Kelly fraction, capped at
// maxAmount.
func PositionSize(capital decimal.Decimal, kellyFraction float64, maxAmount decimal.Decimal) decimal.Decimal {
	kellyAmount := capital.Mul(decimal.NewFromFloat(kellyFraction))
	if kellyAmount.GreaterThan(maxAmount) {
		return maxAmount
	}
	return kellyAmount
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the population standard deviation around the given mean.
func stddev(values []float64, mean float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
