package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "BTC_USDT", cfg.Pair.String())
	assert.Equal(t, "fear-greed-dca", cfg.Strategy)
	assert.True(t, cfg.InitialCapital.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, "table", cfg.Output)
}

func TestLoad_OverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pair: ETH_USDT
strategy: grid-fear
params:
  fear_threshold: 22
  grid_levels: 4
start_date: "2023-01-01"
end_date: "2023-12-31"
initial_capital: "25000"
fee_rate: "0.00075"
venue: bybit
poll_interval: 30m
output: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETH_USDT", cfg.Pair.String())
	assert.Equal(t, "grid-fear", cfg.Strategy)
	assert.Equal(t, 22, cfg.Params["fear_threshold"])
	assert.Equal(t, "2023-01-01", cfg.StartDate)
	assert.True(t, cfg.InitialCapital.Equal(decimal.NewFromInt(25000)))
	assert.True(t, cfg.FeeRate.Equal(decimal.NewFromFloat(0.00075)))
	// untouched fields keep their defaults
	assert.True(t, cfg.SlippageRate.Equal(decimal.NewFromFloat(0.0005)))
	assert.Equal(t, "bybit", cfg.Venue)
	assert.Equal(t, 30*time.Minute, cfg.PollInterval)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoad_RejectsBadDecimal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("initial_capital: \"lots\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := Default()
	original.Strategy = "momentum-dca"
	original.Params = map[string]any{"min_consecutive_down": 4}
	original.FeeRate = decimal.NewFromFloat(0.002)
	require.NoError(t, Save(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "momentum-dca", loaded.Strategy)
	assert.Equal(t, 4, loaded.Params["min_consecutive_down"])
	assert.True(t, loaded.FeeRate.Equal(decimal.NewFromFloat(0.002)))
}

func TestPairFromString(t *testing.T) {
	pair, err := PairFromString("SOL_USDC")
	require.NoError(t, err)
	assert.Equal(t, "SOL", pair.From)
	assert.Equal(t, "USDC", pair.To)

	for _, bad := range []string{"", "BTC", "BTC-USDT", "_USDT", "BTC_"} {
		_, err := PairFromString(bad)
		assert.Error(t, err, bad)
	}
}

func TestRunConfigConversion(t *testing.T) {
	cfg := Default()
	run := cfg.RunConfig()

	assert.Equal(t, cfg.Strategy, run.Strategy)
	assert.Equal(t, cfg.StartDate, run.StartDate)
	assert.True(t, run.InitialCapital.Equal(cfg.InitialCapital))
	assert.NoError(t, run.Validate())
}
