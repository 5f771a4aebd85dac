// Package strategy contains the trading policies evaluated by the backtest
// engine and the paper runner. A strategy is a deterministic function from a
// market snapshot to a signal; any internal state (grid reference price,
// momentum price window) is updated only in time order, so one strategy
// instance must be dedicated to exactly one run and never shared across
// concurrent runs.
package strategy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/internal/domain"
)

// Strategy evaluates one market snapshot per day and decides what to do.
type Strategy interface {
	// Name is the registry identifier, e.g. "fear-greed-dca".
	Name() string
	// Description is a one-line summary of the policy.
	Description() string
	// Evaluate inspects the snapshot and returns a signal. It never
	// touches the exchange or the positions ledger directly.
	Evaluate(snapshot domain.MarketSnapshot) domain.Signal
}

// Constructor builds a strategy from a sparse parameter override map.
type Constructor func(params map[string]any) (Strategy, error)

var registry = map[string]Constructor{
	"fear-greed-dca": newThresholdDCAFromParams,
	"grid-fear":      newGridDCAFromParams,
	"momentum-dca":   newMomentumDCAFromParams,
}

// New looks up a strategy by name and constructs it with the given
// parameters. Unknown names are rejected with the list of valid choices.
func New(name string, params map[string]any) (Strategy, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q, available: %s", name, strings.Join(Names(), ", "))
	}
	return constructor(params)
}

// Names returns the sorted list of registered strategy names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// eligiblePositions filters the snapshot's open positions down to those
// held at least holdDays, measured against the snapshot date so that
// replays stay deterministic. Positions with unparsable entry dates are
// silently excluded; one corrupt record must not abort a multi-year run.
func eligiblePositions(snapshot domain.MarketSnapshot, holdDays int) []domain.Position {
	var eligible []domain.Position
	for _, pos := range snapshot.OpenPositions {
		if !pos.IsOpen() {
			continue
		}
		held, err := pos.HeldDays(snapshot.Date)
		if err != nil {
			continue
		}
		if held >= holdDays {
			eligible = append(eligible, pos)
		}
	}
	return eligible
}

// aggregateBaseQty sums the base quantity across positions.
func aggregateBaseQty(positions []domain.Position) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range positions {
		total = total.Add(pos.BaseQty)
	}
	return total
}

// Parameter map helpers. Override maps typically come from YAML or JSON,
// so values arrive as int, float64 or string depending on the decoder.

func intParam(params map[string]any, key string, def int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("parameter %q: %w", key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("parameter %q has unsupported type %T", key, raw)
	}
}

func floatParam(params map[string]any, key string, def float64) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("parameter %q: %w", key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("parameter %q has unsupported type %T", key, raw)
	}
}

func decimalParam(params map[string]any, key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("parameter %q: %w", key, err)
		}
		return parsed, nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("parameter %q has unsupported type %T", key, raw)
	}
}

// rejectUnknownKeys fails fast on parameters no strategy field matches,
// so typos surface at construction instead of silently using defaults.
func rejectUnknownKeys(params map[string]any, allowed ...string) error {
	for key := range params {
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown parameter %q, allowed: %s", key, strings.Join(allowed, ", "))
		}
	}
	return nil
}
