package indicators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantCloses(value int64, n int) []decimal.Decimal {
	closes := make([]decimal.Decimal, n)
	for i := range closes {
		closes[i] = decimal.NewFromInt(value)
	}
	return closes
}

func TestEMA_ConstantSeriesStaysFlat(t *testing.T) {
	series, err := EMA(constantCloses(50000, 30), 20)
	require.NoError(t, err)
	require.NotEmpty(t, series)

	last, _ := series[len(series)-1].Float64()
	assert.InDelta(t, 50000, last, 1e-6)
}

func TestEMA_RejectsShortSeries(t *testing.T) {
	_, err := EMA(constantCloses(50000, 5), 20)
	assert.Error(t, err)
}

func TestRSI_StaysInRange(t *testing.T) {
	closes := make([]decimal.Decimal, 40)
	price := int64(40000)
	for i := range closes {
		if i%3 == 0 {
			price -= 500
		} else {
			price += 300
		}
		closes[i] = decimal.NewFromInt(price)
	}

	series, err := RSI(closes, 14)
	require.NoError(t, err)
	require.NotEmpty(t, series)
	for _, v := range series {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestCompute_TrendFollowsPriceVsEMA(t *testing.T) {
	// steadily rising closes keep price above its moving average
	closes := make([]decimal.Decimal, 40)
	for i := range closes {
		closes[i] = decimal.NewFromInt(40000 + int64(i)*100)
	}

	ctx, err := Compute(closes)
	require.NoError(t, err)
	assert.Equal(t, "up", ctx.Trend)
	assert.True(t, ctx.Price.GreaterThan(ctx.EMA20))
	assert.Greater(t, ctx.RSI14, 50.0)
}

func TestCompute_RejectsShortSeries(t *testing.T) {
	_, err := Compute(constantCloses(50000, 10))
	assert.Error(t, err)
}
