package domain

// Action represents the trading action a strategy asks for.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
)

const (
	actionStringBuy  = "BUY"
	actionStringSell = "SELL"
	actionStringHold = "HOLD"
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionBuy:
		return actionStringBuy
	case ActionSell:
		return actionStringSell
	case ActionHold:
		return actionStringHold
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so actions serialize as
// their string form in JSON records.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	switch string(text) {
	case actionStringBuy:
		*a = ActionBuy
	case actionStringSell:
		*a = ActionSell
	default:
		*a = ActionHold
	}
	return nil
}
