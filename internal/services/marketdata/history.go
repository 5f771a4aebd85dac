// Package marketdata retrieves and caches the two historical series a
// backtest needs: daily close prices and the daily Fear & Greed index.
// The replay engine itself never touches the network; it consumes the
// plain maps this package returns.
package marketdata

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fearproto/fearbot/internal/domain"
)

// PriceSource supplies daily close prices for a date range.
type PriceSource interface {
	DailyCloses(ctx context.Context, pair domain.Pair, startDate, endDate string) (map[string]decimal.Decimal, error)
}

// SentimentSource supplies daily sentiment values for a date range.
type SentimentSource interface {
	DailySentiment(ctx context.Context, startDate, endDate string) (map[string]int, error)
}

// HistoryService fetches both series, with an optional file cache in
// front of the network sources.
type HistoryService struct {
	prices     PriceSource
	sentiments SentimentSource
	cache      *FileCache
	logger     *zap.Logger
}

// NewHistoryService wires the sources. cache may be nil to disable
// caching; a nil logger is replaced with a nop.
func NewHistoryService(prices PriceSource, sentiments SentimentSource, cache *FileCache, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		prices:     prices,
		sentiments: sentiments,
		cache:      cache,
		logger:     logger,
	}
}

// History returns the sentiment and price series for the pair and range,
// serving from cache when a fresh entry exists.
func (s *HistoryService) History(ctx context.Context, pair domain.Pair, startDate, endDate string) (map[string]int, map[string]decimal.Decimal, error) {
	sentiments := make(map[string]int)
	sentimentKey := fmt.Sprintf("fng_%s_%s", startDate, endDate)
	if !s.loadCached(sentimentKey, &sentiments) {
		var err error
		sentiments, err = s.sentiments.DailySentiment(ctx, startDate, endDate)
		if err != nil {
			return nil, nil, errors.Wrap(err, "fetch sentiment history")
		}
		s.storeCached(sentimentKey, sentiments)
	}

	prices := make(map[string]decimal.Decimal)
	priceKey := fmt.Sprintf("prices_%s_%s_%s", pair.Symbol(), startDate, endDate)
	if !s.loadCached(priceKey, &prices) {
		var err error
		prices, err = s.prices.DailyCloses(ctx, pair, startDate, endDate)
		if err != nil {
			return nil, nil, errors.Wrap(err, "fetch price history")
		}
		s.storeCached(priceKey, prices)
	}

	s.logger.Debug("history resolved",
		zap.String("pair", pair.String()),
		zap.Int("sentiment_days", len(sentiments)),
		zap.Int("price_days", len(prices)))
	return sentiments, prices, nil
}

func (s *HistoryService) loadCached(key string, v any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Load(key, v)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *HistoryService) storeCached(key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Store(key, v); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
