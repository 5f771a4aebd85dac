// Package indicators computes the technical context shown alongside a
// live signal: trend and momentum readings derived from recent daily
// closes. Strategies do not consume these; they are advisory output only.
package indicators

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	emaPeriod = 20
	rsiPeriod = 14
)

// Context is a point-in-time technical reading of the market.
type Context struct {
	// Price latest close.
	Price decimal.Decimal
	// EMA20 latest 20-day exponential moving average.
	EMA20 decimal.Decimal
	// RSI14 latest 14-day relative strength index, 0-100.
	RSI14 float64
	// Trend "up" when price is above the EMA, otherwise "down".
	Trend string
}

// EMA returns the exponential moving average series for the period.
func EMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(closes) < period {
		return nil, errors.Errorf("not enough closes for EMA: need %d, got %d", period, len(closes))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	values := helper.ChanToSlice(ema.Compute(helper.SliceToChan(toFloats(closes))))
	return toDecimals(values), nil
}

// RSI returns the relative strength index series for the period.
func RSI(closes []decimal.Decimal, period int) ([]float64, error) {
	if len(closes) < period+1 {
		return nil, errors.Errorf("not enough closes for RSI: need %d, got %d", period+1, len(closes))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	return helper.ChanToSlice(rsi.Compute(helper.SliceToChan(toFloats(closes)))), nil
}

// Compute derives the latest technical context from a daily close series,
// oldest first. Needs at least 21 closes for the EMA warmup.
func Compute(closes []decimal.Decimal) (Context, error) {
	emaSeries, err := EMA(closes, emaPeriod)
	if err != nil {
		return Context{}, err
	}
	rsiSeries, err := RSI(closes, rsiPeriod)
	if err != nil {
		return Context{}, err
	}
	if len(emaSeries) == 0 || len(rsiSeries) == 0 {
		return Context{}, errors.New("indicator warmup consumed the whole series")
	}

	price := closes[len(closes)-1]
	ema := emaSeries[len(emaSeries)-1]

	direction := "down"
	if price.GreaterThanOrEqual(ema) {
		direction = "up"
	}

	return Context{
		Price: price,
		EMA20: ema,
		RSI14: rsiSeries[len(rsiSeries)-1],
		Trend: direction,
	}, nil
}

func toFloats(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i], _ = v.Float64()
	}
	return out
}

func toDecimals(values []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}
