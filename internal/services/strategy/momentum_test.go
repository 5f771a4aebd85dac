package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fearproto/fearbot/internal/domain"
)

func TestMomentumDCA_BuysAfterConsecutiveDownDays(t *testing.T) {
	s, err := NewMomentumDCA(DefaultMomentumDCAConfig())
	require.NoError(t, err)

	prices := []int64{45000, 44000, 43000}
	for i, p := range prices {
		sig := s.Evaluate(snapshot("2024-01-0"+string(rune('1'+i)), 20, p))
		assert.Equal(t, domain.ActionHold, sig.Action, "day %d", i)
	}

	sig := s.Evaluate(snapshot("2024-01-04", 20, 42000))
	require.Equal(t, domain.ActionBuy, sig.Action)
	assert.Equal(t, 3, sig.Metadata["consecutive_down"])
	assert.True(t, sig.Amount.Equal(decimal.NewFromInt(500)))
	assert.InDelta(t, 0.8, sig.Confidence, 1e-9)
}

func TestMomentumDCA_UpDayResetsStreak(t *testing.T) {
	s, err := NewMomentumDCA(DefaultMomentumDCAConfig())
	require.NoError(t, err)

	s.Evaluate(snapshot("2024-01-01", 20, 45000))
	s.Evaluate(snapshot("2024-01-02", 20, 44000))
	s.Evaluate(snapshot("2024-01-03", 20, 43000))
	// the bounce resets the count even though sentiment stays fearful
	sig := s.Evaluate(snapshot("2024-01-04", 20, 43500))
	assert.Equal(t, domain.ActionHold, sig.Action)
	assert.Equal(t, 0, sig.Metadata["consecutive_down"])
}

func TestMomentumDCA_FlatDayDoesNotCount(t *testing.T) {
	s, err := NewMomentumDCA(DefaultMomentumDCAConfig())
	require.NoError(t, err)

	s.Evaluate(snapshot("2024-01-01", 20, 44000))
	sig := s.Evaluate(snapshot("2024-01-02", 20, 44000))
	assert.Equal(t, 0, sig.Metadata["consecutive_down"])
}

func TestMomentumDCA_NoBuyWithoutFear(t *testing.T) {
	s, err := NewMomentumDCA(DefaultMomentumDCAConfig())
	require.NoError(t, err)

	prices := []int64{45000, 44000, 43000, 42000}
	var sig domain.Signal
	for i, p := range prices {
		sig = s.Evaluate(snapshot("2024-01-0"+string(rune('1'+i)), 45, p))
	}
	assert.Equal(t, domain.ActionHold, sig.Action)
	assert.Equal(t, 3, sig.Metadata["consecutive_down"])
}

func TestMomentumDCA_NoBuyAtMaxCapital(t *testing.T) {
	s, err := NewMomentumDCA(DefaultMomentumDCAConfig())
	require.NoError(t, err)

	prices := []int64{45000, 44000, 43000}
	for i, p := range prices {
		s.Evaluate(snapshot("2024-01-0"+string(rune('1'+i)), 20, p))
	}
	snap := snapshot("2024-01-04", 20, 42000)
	snap.TotalInvested = decimal.NewFromInt(5000)
	sig := s.Evaluate(snap)
	assert.Equal(t, domain.ActionHold, sig.Action)
}

func TestMomentumDCA_SellsEligiblePositionsOnGreed(t *testing.T) {
	s, err := NewMomentumDCA(DefaultMomentumDCAConfig())
	require.NoError(t, err)

	snap := snapshot("2024-06-01", 70, 60000)
	snap.OpenPositions = []domain.Position{
		openPosition(t, "2024-01-10", 45000, 1, 500),
		openPosition(t, "2024-05-20", 55000, 2, 500), // held 12 days, too young
	}
	sig := s.Evaluate(snap)
	require.Equal(t, domain.ActionSell, sig.Action)
	assert.True(t, sig.Amount.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 1, sig.Metadata["eligible_positions"])
	assert.InDelta(t, 0.75, sig.Confidence, 1e-9)
}

func TestMomentumDCA_ConfidenceCappedAtOne(t *testing.T) {
	cfg := DefaultMomentumDCAConfig()
	cfg.MinConsecutiveDown = 6
	s, err := NewMomentumDCA(cfg)
	require.NoError(t, err)

	price := int64(50000)
	var sig domain.Signal
	for i := 0; i < 7; i++ {
		sig = s.Evaluate(snapshot("2024-01-0"+string(rune('1'+i)), 20, price))
		price -= 1000
	}
	require.Equal(t, domain.ActionBuy, sig.Action)
	assert.Equal(t, 1.0, sig.Confidence)
}
