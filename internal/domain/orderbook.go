package domain

import "github.com/shopspring/decimal"

// OrderBookSnapshot holds the best bid and ask rates of a market,
// fetched once per run.
type OrderBookSnapshot struct {
	Bid decimal.Decimal
	Ask decimal.Decimal
}

// Spread returns ask minus bid.
func (s OrderBookSnapshot) Spread() decimal.Decimal {
	return s.Ask.Sub(s.Bid)
}
