package marketdata

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/pkg/retrier"
)

// klinePageLimit is Binance's maximum klines per request.
const klinePageLimit = 1000

// BinanceHistory fetches daily close prices from Binance klines.
type BinanceHistory struct {
	client  *binance.Client
	retrier *retrier.Retrier
}

// NewBinanceHistory creates a Binance-backed daily price source. No API
// credentials are needed for public kline data.
func NewBinanceHistory(client *binance.Client) *BinanceHistory {
	return &BinanceHistory{
		client:  client,
		retrier: retrier.New(),
	}
}

// DailyCloses returns a date-indexed map of daily close prices for the
// pair over [startDate, endDate] inclusive. Pages through Binance's kline
// limit for multi-year ranges.
func (b *BinanceHistory) DailyCloses(ctx context.Context, pair domain.Pair, startDate, endDate string) (map[string]decimal.Decimal, error) {
	start, err := time.Parse(domain.DateLayout, startDate)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid start date %q", startDate)
	}
	end, err := time.Parse(domain.DateLayout, endDate)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid end date %q", endDate)
	}
	// include the end date's full day
	endMillis := end.Add(24 * time.Hour).UnixMilli()

	closes := make(map[string]decimal.Decimal)
	cursor := start.UnixMilli()

	for cursor < endMillis {
		klines, err := retrier.DoWithData(b.retrier, ctx, func(ctx context.Context) ([]*binance.Kline, error) {
			return b.client.NewKlinesService().
				Symbol(pair.Symbol()).
				Interval("1d").
				StartTime(cursor).
				EndTime(endMillis).
				Limit(klinePageLimit).
				Do(ctx)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "fetch daily klines for %s", pair.String())
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			date := time.UnixMilli(k.OpenTime).UTC().Format(domain.DateLayout)
			price, err := decimal.NewFromString(k.Close)
			if err != nil {
				return nil, errors.Wrapf(err, "parse close price %q for %s", k.Close, date)
			}
			closes[date] = price
		}

		cursor = klines[len(klines)-1].CloseTime + 1
	}

	return closes, nil
}
