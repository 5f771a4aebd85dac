// Package positions persists the paper trading book so restarts keep
// balances and open positions. One JSON file per pair under an explicitly
// configured directory.
package positions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/internal/domain"
)

// State is everything a paper session needs to resume.
type State struct {
	Pair          string            `json:"pair"`
	Quote         decimal.Decimal   `json:"quote"`
	Base          decimal.Decimal   `json:"base"`
	TotalInvested decimal.Decimal   `json:"total_invested"`
	OpenPositions []domain.Position `json:"open_positions"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Store reads and writes paper session state.
type Store struct {
	path string
}

// NewStore creates the state directory if needed. The file name is
// derived from the pair.
func NewStore(dir string, pair domain.Pair) (*Store, error) {
	if dir == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create state dir")
	}
	name := strings.ToLower(pair.String()) + ".json"
	return &Store{path: filepath.Join(dir, name)}, nil
}

// Load reads persisted state. A missing file returns (nil, nil) so a
// fresh session starts cleanly.
func (s *Store) Load() (*State, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read paper state")
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errors.Wrap(err, "decode paper state")
	}
	return &state, nil
}

// Save writes the state atomically via a temp file rename.
func (s *Store) Save(state State) error {
	state.UpdatedAt = time.Now().UTC()

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode paper state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write paper state")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace paper state")
	}
	return nil
}
