// Package config loads the bot configuration from a YAML file, falling
// back to defaults suitable for a BTC_USDT backtest of the past year.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/fearproto/fearbot/internal/domain"
)

// Config is the resolved runtime configuration.
type Config struct {
	Pair           domain.Pair
	Strategy       string
	Params         map[string]any
	StartDate      string
	EndDate        string
	InitialCapital decimal.Decimal
	FeeRate        decimal.Decimal
	SlippageRate   decimal.Decimal

	// Venue price source for paper and signal modes.
	Venue        string
	PollInterval time.Duration

	CacheDir   string
	CacheTTL   time.Duration
	StateDir   string
	JournalDir string

	// Output one of table, json, markdown.
	Output string
}

// configTmp mirrors the YAML layout. Decimal fields travel as strings so
// precision survives parsing.
type configTmp struct {
	Pair           string         `yaml:"pair"`
	Strategy       string         `yaml:"strategy"`
	Params         map[string]any `yaml:"params"`
	StartDate      string         `yaml:"start_date"`
	EndDate        string         `yaml:"end_date"`
	InitialCapital string         `yaml:"initial_capital"`
	FeeRate        string         `yaml:"fee_rate"`
	SlippageRate   string         `yaml:"slippage_rate"`
	Venue          string         `yaml:"venue"`
	PollInterval   time.Duration  `yaml:"poll_interval"`
	CacheDir       string         `yaml:"cache_dir"`
	CacheTTL       time.Duration  `yaml:"cache_ttl"`
	StateDir       string         `yaml:"state_dir"`
	JournalDir     string         `yaml:"journal_dir"`
	Output         string         `yaml:"output"`
}

// Default returns the stock configuration: a one-year BTC_USDT backtest
// with the threshold DCA strategy.
func Default() Config {
	now := time.Now().UTC()
	return Config{
		Pair:           domain.Pair{From: "BTC", To: "USDT"},
		Strategy:       "fear-greed-dca",
		StartDate:      now.AddDate(-1, 0, 0).Format(domain.DateLayout),
		EndDate:        now.Format(domain.DateLayout),
		InitialCapital: decimal.NewFromInt(10000),
		FeeRate:        decimal.NewFromFloat(0.001),
		SlippageRate:   decimal.NewFromFloat(0.0005),
		Venue:          "binance",
		PollInterval:   time.Hour,
		CacheDir:       "./cache",
		CacheTTL:       12 * time.Hour,
		StateDir:       "./state",
		JournalDir:     "./journal",
		Output:         "table",
	}
}

// Load reads a YAML config file and overlays it on the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}

	var tmp configTmp
	if err := yaml.Unmarshal(payload, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "parse config file")
	}

	if tmp.Pair != "" {
		pair, err := PairFromString(tmp.Pair)
		if err != nil {
			return Config{}, err
		}
		cfg.Pair = pair
	}
	if tmp.Strategy != "" {
		cfg.Strategy = tmp.Strategy
	}
	if tmp.Params != nil {
		cfg.Params = tmp.Params
	}
	if tmp.StartDate != "" {
		cfg.StartDate = tmp.StartDate
	}
	if tmp.EndDate != "" {
		cfg.EndDate = tmp.EndDate
	}
	if err := overlayDecimal(&cfg.InitialCapital, tmp.InitialCapital, "initial_capital"); err != nil {
		return Config{}, err
	}
	if err := overlayDecimal(&cfg.FeeRate, tmp.FeeRate, "fee_rate"); err != nil {
		return Config{}, err
	}
	if err := overlayDecimal(&cfg.SlippageRate, tmp.SlippageRate, "slippage_rate"); err != nil {
		return Config{}, err
	}
	if tmp.Venue != "" {
		cfg.Venue = tmp.Venue
	}
	if tmp.PollInterval > 0 {
		cfg.PollInterval = tmp.PollInterval
	}
	if tmp.CacheDir != "" {
		cfg.CacheDir = tmp.CacheDir
	}
	if tmp.CacheTTL > 0 {
		cfg.CacheTTL = tmp.CacheTTL
	}
	if tmp.StateDir != "" {
		cfg.StateDir = tmp.StateDir
	}
	if tmp.JournalDir != "" {
		cfg.JournalDir = tmp.JournalDir
	}
	if tmp.Output != "" {
		cfg.Output = tmp.Output
	}

	return cfg, nil
}

// Save writes the configuration as YAML, preserving decimal precision.
func Save(path string, cfg Config) error {
	tmp := configTmp{
		Pair:           cfg.Pair.String(),
		Strategy:       cfg.Strategy,
		Params:         cfg.Params,
		StartDate:      cfg.StartDate,
		EndDate:        cfg.EndDate,
		InitialCapital: cfg.InitialCapital.String(),
		FeeRate:        cfg.FeeRate.String(),
		SlippageRate:   cfg.SlippageRate.String(),
		Venue:          cfg.Venue,
		PollInterval:   cfg.PollInterval,
		CacheDir:       cfg.CacheDir,
		CacheTTL:       cfg.CacheTTL,
		StateDir:       cfg.StateDir,
		JournalDir:     cfg.JournalDir,
		Output:         cfg.Output,
	}

	payload, err := yaml.Marshal(tmp)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// RunConfig converts the configuration into a backtest run description.
func (c Config) RunConfig() domain.RunConfig {
	return domain.RunConfig{
		Strategy:       c.Strategy,
		Params:         c.Params,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		InitialCapital: c.InitialCapital,
		FeeRate:        c.FeeRate,
		SlippageRate:   c.SlippageRate,
	}
}

// PairFromString parses "BTC_USDT" style pair notation.
func PairFromString(s string) (domain.Pair, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.Pair{}, errors.Errorf("invalid pair %q, expected format like BTC_USDT", s)
	}
	return domain.Pair{From: parts[0], To: parts[1]}, nil
}

func overlayDecimal(dst *decimal.Decimal, raw, field string) error {
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid %s %q", field, raw)
	}
	*dst = value
	return nil
}
