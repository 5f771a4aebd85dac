package journal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fearproto/fearbot/internal/domain"
)

func TestJournal_AppendAndReplay(t *testing.T) {
	dir := t.TempDir()

	j, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, j.Append(domain.DailyRecord{
		Date:      "2024-01-01",
		Price:     decimal.NewFromInt(42000),
		Sentiment: 15,
		Action:    domain.ActionBuy,
	}))
	require.NoError(t, j.Append(domain.DailyRecord{
		Date:      "2024-01-02",
		Price:     decimal.NewFromInt(43000),
		Sentiment: 45,
		Action:    domain.ActionHold,
	}))
	require.NoError(t, j.Close())

	// reopen and replay
	j, err = New(dir)
	require.NoError(t, err)
	defer j.Close()

	records, err := j.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-01-01", records[0].Date)
	assert.Equal(t, domain.ActionBuy, records[0].Action)
	assert.True(t, records[1].Price.Equal(decimal.NewFromInt(43000)))
}

func TestJournal_AppendRequiresDate(t *testing.T) {
	j, err := New(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	assert.Error(t, j.Append(domain.DailyRecord{}))
}

func TestJournal_RequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
