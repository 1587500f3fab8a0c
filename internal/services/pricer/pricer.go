// Package pricer derives a limit price from the current order book.
package pricer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"go.uber.org/zap"
)

var (
	// ErrBuyNotImplemented is returned for buy requests: the buy side has
	// no pricing policy yet and must fail before any order is placed.
	ErrBuyNotImplemented = errors.New("the buy side is not implemented yet")
	// ErrOrderTooSmall is returned when the order value is below the
	// exchange minimum notional.
	ErrOrderTooSmall = errors.New("order value is below the exchange minimum")
)

// priceTick is one unit of the minimum price increment (8 decimal places).
var priceTick = decimal.New(1, -8)

const ratePrecision = 8

// BookProvider fetches the order book of a pair.
type BookProvider interface {
	GetOrderBook(ctx context.Context, pair domain.Pair) (domain.OrderBookSnapshot, error)
}

// Quote is a derived execution price together with the order book it came from.
type Quote struct {
	Book domain.OrderBookSnapshot
	Rate decimal.Decimal
}

// Pricer computes a fair market rate for a trade.
type Pricer struct {
	books       BookProvider
	minNotional decimal.Decimal
	l           *zap.Logger
}

// New creates a new Pricer instance.
func New(books BookProvider, minNotional decimal.Decimal, l *zap.Logger) *Pricer {
	return &Pricer{books: books, minNotional: minNotional, l: l}
}

// Quote fetches the order book once and derives the limit price.
//
// The rate is the midpoint of the best bid and ask, rounded half-to-even
// to 8 decimal places. When the spread is at or below one price tick there is no room to
// improve on the best bid, so the bid is taken directly. The minimum-notional
// check runs after that adjustment, on the final rate.
func (p *Pricer) Quote(ctx context.Context, side domain.Side, pair domain.Pair, amount decimal.Decimal) (Quote, error) {
	if side != domain.SideSell {
		return Quote{}, errors.Wrapf(ErrBuyNotImplemented, "cannot price a %s order", side.String())
	}

	book, err := p.books.GetOrderBook(ctx, pair)
	if err != nil {
		return Quote{}, errors.Wrapf(err, "failed to fetch order book for %s", pair.MarketName())
	}

	rate := book.Bid.Add(book.Ask).Div(decimal.NewFromInt(2)).RoundBank(ratePrecision)
	if book.Spread().LessThanOrEqual(priceTick) {
		p.l.Info("spread is negligible, taking the best bid",
			zap.String("market", pair.MarketName()),
			zap.String("bid", book.Bid.StringFixed(ratePrecision)))
		rate = book.Bid
	}

	notional := rate.Mul(amount)
	if notional.LessThan(p.minNotional) {
		return Quote{}, errors.Wrapf(ErrOrderTooSmall,
			"order value %s %s is below the minimum of %s %s",
			notional.String(), pair.Base, p.minNotional.String(), pair.Base)
	}

	p.l.Info("derived market rate",
		zap.String("market", pair.MarketName()),
		zap.String("bid", book.Bid.StringFixed(ratePrecision)),
		zap.String("ask", book.Ask.StringFixed(ratePrecision)),
		zap.String("rate", rate.StringFixed(ratePrecision)))

	return Quote{Book: book, Rate: rate}, nil
}
