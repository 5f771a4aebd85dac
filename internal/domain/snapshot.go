package domain

import "github.com/shopspring/decimal"

// MarketSnapshot is the input handed to a strategy for a single decision
// cycle. Constructed fresh each day and passed by value; strategies must
// not mutate it. OpenPositions holds copies of the engine's ledger.
type MarketSnapshot struct {
	// Date calendar date of the snapshot, YYYY-MM-DD.
	Date string
	// Sentiment fear & greed index value, 0-100.
	Sentiment int
	// SentimentLabel human-readable band for Sentiment.
	SentimentLabel string
	// Price current price of the base asset.
	Price decimal.Decimal
	// PortfolioValue quote balance plus base holdings at Price.
	PortfolioValue decimal.Decimal
	// TotalInvested cumulative quote capital currently deployed.
	TotalInvested decimal.Decimal
	// OpenPositions currently open DCA entries.
	OpenPositions []Position
}
