// Package notifier formats trade reports and dispatches them via the
// notification service.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
)

const ratePrecision = 8

// Publisher dispatches a notification with a subject and a message.
type Publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

// TradeSummary carries everything needed to report a completed trade.
type TradeSummary struct {
	Side    domain.Side
	Pair    domain.Pair
	Amount  decimal.Decimal
	Bid     decimal.Decimal
	Ask     decimal.Decimal
	Rate    decimal.Decimal
	FeeRate decimal.Decimal
}

// Proceeds returns the net proceeds after the exchange fee,
// rate * amount * (1 - fee), computed exactly in decimal arithmetic.
func (s TradeSummary) Proceeds() decimal.Decimal {
	return s.Rate.Mul(s.Amount).Mul(decimal.NewFromInt(1).Sub(s.FeeRate))
}

// Subject returns the success notification subject line.
func (s TradeSummary) Subject() string {
	verb := "Sold"
	if s.Side == domain.SideBuy {
		verb = "Bought"
	}
	return fmt.Sprintf("%s %s %s @ %s %s",
		verb, s.Amount.String(), s.Pair.Market, s.Rate.StringFixed(ratePrecision), s.Pair.Base)
}

// TimeoutSubject returns the subject line for an open/unfilled order alert.
func (s TradeSummary) TimeoutSubject() string {
	return fmt.Sprintf("%s %s %s OPEN/UNFILLED @ %s %s",
		s.Side.String(), s.Amount.String(), s.Pair.Market, s.Rate.StringFixed(ratePrecision), s.Pair.Base)
}

// Report builds the human-readable trade report, including a balances block
// for the two involved currencies.
func (s TradeSummary) Report(balances []domain.Balance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "order_side: %s\n", s.Side.String())
	fmt.Fprintf(&b, "amount: %s %s\n", s.Amount.String(), s.Pair.Market)
	fmt.Fprintf(&b, "bid_rate: %s %s\n", s.Bid.StringFixed(ratePrecision), s.Pair.Base)
	fmt.Fprintf(&b, "ask_rate: %s %s\n", s.Ask.StringFixed(ratePrecision), s.Pair.Base)
	fmt.Fprintf(&b, "market_rate: %s %s\n", s.Rate.StringFixed(ratePrecision), s.Pair.Base)
	fmt.Fprintf(&b, "TOTAL PROCEEDS: %s %s\n", s.Proceeds().StringFixed(ratePrecision), s.Pair.Base)

	b.WriteString("\nBalances:\n")
	for _, bal := range balances {
		if bal.Currency != s.Pair.Market && bal.Currency != s.Pair.Base {
			continue
		}
		fmt.Fprintf(&b, "\t%s: %s\n", bal.Currency, bal.Amount.String())
	}
	return b.String()
}
