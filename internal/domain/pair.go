package domain

import "fmt"

// Pair cryptocurrency trading pair.
type Pair struct {
	// Market crypto being bought or sold (e.g. XLM).
	Market string
	// Base currency spent or received (e.g. BTC).
	Base string
}

// MarketName returns the exchange market identifier.
// Bittrex lists the base currency first (e.g. "BTC-XLM").
func (p Pair) MarketName() string {
	return fmt.Sprintf("%s-%s", p.Base, p.Market)
}

// String returns the string representation.
func (p Pair) String() string {
	return p.MarketName()
}
