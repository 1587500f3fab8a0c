// Package trader submits limit orders to the exchange.
package trader

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"go.uber.org/zap"
)

var (
	// ErrOrderRejected is returned when the exchange acknowledged the
	// placement request with success=false.
	ErrOrderRejected = errors.New("order rejected by the exchange")
	// ErrMalformedResponse is returned when a successful acknowledgement
	// carries no order identifier.
	ErrMalformedResponse = errors.New("exchange acknowledgement is missing the order id")
)

// OrderPlacer places limit orders on the exchange.
type OrderPlacer interface {
	SellLimit(ctx context.Context, pair domain.Pair, quantity, rate decimal.Decimal) (domain.OrderAck, error)
	BuyLimit(ctx context.Context, pair domain.Pair, quantity, rate decimal.Decimal) (domain.OrderAck, error)
}

// Trader places limit orders and validates exchange acknowledgements.
type Trader struct {
	orders OrderPlacer
	l      *zap.Logger
}

// New creates a new Trader instance.
func New(orders OrderPlacer, l *zap.Logger) *Trader {
	return &Trader{orders: orders, l: l}
}

// PlaceLimitOrder submits a limit order and returns the exchange order id.
// The exchange failure message is wrapped verbatim into ErrOrderRejected.
func (t *Trader) PlaceLimitOrder(ctx context.Context, side domain.Side, pair domain.Pair, quantity, rate decimal.Decimal) (string, error) {
	var (
		ack domain.OrderAck
		err error
	)
	switch side {
	case domain.SideSell:
		ack, err = t.orders.SellLimit(ctx, pair, quantity, rate)
	case domain.SideBuy:
		ack, err = t.orders.BuyLimit(ctx, pair, quantity, rate)
	default:
		return "", errors.Wrapf(domain.ErrInvalidSide, "%d", side)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to place %s limit order for %s", side.String(), pair.MarketName())
	}

	if !ack.Success {
		return "", errors.Wrapf(ErrOrderRejected, "%s", ack.Message)
	}
	if ack.ID == "" {
		return "", errors.Wrapf(ErrMalformedResponse, "%s limit order for %s", side.String(), pair.MarketName())
	}

	t.l.Info("limit order placed",
		zap.String("order", ack.ID),
		zap.String("market", pair.MarketName()),
		zap.String("side", side.String()),
		zap.String("quantity", quantity.String()),
		zap.String("rate", rate.String()))

	return ack.ID, nil
}
