package domain

import "github.com/shopspring/decimal"

// MarketInfo describes a tradable pair as listed by the exchange.
// Looked up once per run, immutable after fetch.
type MarketInfo struct {
	MarketCurrency string
	BaseCurrency   string
	MinTradeSize   decimal.Decimal
}

// Balance of a single currency on the exchange account.
type Balance struct {
	Currency string
	Amount   decimal.Decimal
}
