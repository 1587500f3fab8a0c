// Package domain defines core data structures used throughout the trading bot.
package domain

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidSide is returned for order sides other than buy or sell.
var ErrInvalidSide = errors.New("invalid order side, must be BUY or SELL")

// Side of an order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

const (
	sideStringBuy  = "buy"
	sideStringSell = "sell"
)

// ParseSide parses a case-insensitive order side.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case sideStringBuy:
		return SideBuy, nil
	case sideStringSell:
		return SideSell, nil
	}
	return 0, errors.Wrapf(ErrInvalidSide, "%q", s)
}

// String returns the string representation of the side.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return sideStringBuy
	case SideSell:
		return sideStringSell
	default:
		return "unknown"
	}
}
