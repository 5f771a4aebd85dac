package positions

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fearproto/fearbot/internal/domain"
)

func TestStore_RoundTrip(t *testing.T) {
	pair := domain.Pair{From: "BTC", To: "USDT"}
	store, err := NewStore(t.TempDir(), pair)
	require.NoError(t, err)

	pos, err := domain.NewPosition("2024-01-05",
		decimal.NewFromInt(42000), decimal.NewFromFloat(0.0119), decimal.NewFromInt(500), 18)
	require.NoError(t, err)

	require.NoError(t, store.Save(State{
		Pair:          pair.String(),
		Quote:         decimal.NewFromInt(9500),
		Base:          decimal.NewFromFloat(0.0119),
		TotalInvested: decimal.NewFromInt(500),
		OpenPositions: []domain.Position{*pos},
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "BTC_USDT", loaded.Pair)
	assert.True(t, loaded.Quote.Equal(decimal.NewFromInt(9500)))
	assert.True(t, loaded.TotalInvested.Equal(decimal.NewFromInt(500)))
	require.Len(t, loaded.OpenPositions, 1)
	assert.Equal(t, "2024-01-05", loaded.OpenPositions[0].EntryDate)
	assert.Equal(t, domain.PositionOpen, loaded.OpenPositions[0].Status)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestStore_LoadMissingFile(t *testing.T) {
	store, err := NewStore(t.TempDir(), domain.Pair{From: "ETH", To: "USDT"})
	require.NoError(t, err)

	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestStore_RequiresDir(t *testing.T) {
	_, err := NewStore("", domain.Pair{From: "BTC", To: "USDT"})
	assert.Error(t, err)
}
