package paper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/internal/services/strategy"
	"github.com/fearproto/fearbot/internal/storage/journal"
	"github.com/fearproto/fearbot/internal/storage/positions"
)

type stubPricer struct {
	price decimal.Decimal
	calls atomic.Int32
	done  context.CancelFunc
	after int32
}

func (p *stubPricer) GetPrice(context.Context, domain.Pair) (decimal.Decimal, error) {
	if p.calls.Add(1) >= p.after && p.done != nil {
		p.done()
	}
	return p.price, nil
}

type stubSentiment struct{ value int }

func (s *stubSentiment) Latest(context.Context) (int, error) {
	return s.value, nil
}

func testConfig(t *testing.T, p *stubPricer, sentiment int) Config {
	t.Helper()
	strat, err := strategy.New("fear-greed-dca", nil)
	require.NoError(t, err)

	store, err := positions.NewStore(t.TempDir(), domain.Pair{From: "BTC", To: "USDT"})
	require.NoError(t, err)

	j, err := journal.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	return Config{
		Pair:           domain.Pair{From: "BTC", To: "USDT"},
		Strategy:       strat,
		Pricer:         p,
		Sentiment:      &stubSentiment{value: sentiment},
		Store:          store,
		Journal:        j,
		InitialCapital: decimal.NewFromInt(10000),
		FeeRate:        decimal.NewFromFloat(0.001),
		SlippageRate:   decimal.NewFromFloat(0.0005),
		PollInterval:   5 * time.Millisecond,
	}
}

func TestRunner_BuysOnFearAndPersists(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// init fetch plus a couple of ticks, then stop
	p := &stubPricer{price: decimal.NewFromInt(42000), done: cancel, after: 4}
	cfg := testConfig(t, p, 12)

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	require.NoError(t, runner.Run(ctx))

	state, err := cfg.Store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.NotEmpty(t, state.OpenPositions, "fear sentiment should have opened a position")
	assert.True(t, state.TotalInvested.IsPositive())
	assert.True(t, state.Quote.LessThan(decimal.NewFromInt(10000)))

	records, err := cfg.Journal.Records()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, domain.ActionBuy, records[0].Action)
	assert.Equal(t, 12, records[0].Sentiment)
}

func TestRunner_HoldsOnNeutralSentiment(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := &stubPricer{price: decimal.NewFromInt(42000), done: cancel, after: 3}
	cfg := testConfig(t, p, 45)

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	require.NoError(t, runner.Run(ctx))

	state, err := cfg.Store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Empty(t, state.OpenPositions)
	assert.True(t, state.Quote.Equal(decimal.NewFromInt(10000)))
}

func TestRunner_RestoresPreviousState(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := &stubPricer{price: decimal.NewFromInt(42000), done: cancel, after: 3}
	cfg := testConfig(t, p, 45)

	pos, err := domain.NewPosition("2024-01-01",
		decimal.NewFromInt(40000), decimal.NewFromFloat(0.0125), decimal.NewFromInt(500), 15)
	require.NoError(t, err)
	require.NoError(t, cfg.Store.Save(positions.State{
		Pair:          "BTC_USDT",
		Quote:         decimal.NewFromInt(9500),
		Base:          decimal.NewFromFloat(0.0125),
		TotalInvested: decimal.NewFromInt(500),
		OpenPositions: []domain.Position{*pos},
	}))

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	require.NoError(t, runner.Run(ctx))

	state, err := cfg.Store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	// neutral sentiment holds, so the restored book stays intact
	require.Len(t, state.OpenPositions, 1)
	assert.Equal(t, "2024-01-01", state.OpenPositions[0].EntryDate)
	assert.True(t, state.TotalInvested.Equal(decimal.NewFromInt(500)))
}

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(Config{})
	assert.Error(t, err)

	cfg := testConfig(t, &stubPricer{price: decimal.NewFromInt(42000)}, 45)
	cfg.PollInterval = 0
	_, err = NewRunner(cfg)
	assert.Error(t, err)
}
