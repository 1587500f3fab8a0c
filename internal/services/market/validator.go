// Package market validates trade requests against the exchange market list.
package market

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"go.uber.org/zap"
)

var (
	// ErrMarketNotFound is returned when no market matches the requested pair.
	ErrMarketNotFound = errors.New("market not found")
	// ErrAmountBelowMinimum is returned when the amount is below the
	// market's minimum trade size.
	ErrAmountBelowMinimum = errors.New("amount is below the minimum trade size")
)

// Lister provides the exchange market list.
type Lister interface {
	GetMarkets(ctx context.Context) ([]domain.MarketInfo, error)
}

// Validator checks that a pair is tradable and the amount is large enough.
type Validator struct {
	markets Lister
	l       *zap.Logger
}

// NewValidator creates a new Validator instance.
func NewValidator(markets Lister, l *zap.Logger) *Validator {
	return &Validator{markets: markets, l: l}
}

// Validate fetches the market list once and finds the entry whose market and
// base currencies both match exactly (currency identifiers are case-sensitive).
// Transport errors propagate, no retry.
func (v *Validator) Validate(ctx context.Context, pair domain.Pair, amount decimal.Decimal) (domain.MarketInfo, error) {
	markets, err := v.markets.GetMarkets(ctx)
	if err != nil {
		return domain.MarketInfo{}, errors.Wrap(err, "failed to fetch market list")
	}

	for _, m := range markets {
		if m.MarketCurrency != pair.Market || m.BaseCurrency != pair.Base {
			continue
		}
		if amount.LessThan(m.MinTradeSize) {
			return domain.MarketInfo{}, errors.Wrapf(ErrAmountBelowMinimum,
				"amount %s < min trade size %s for %s", amount.String(), m.MinTradeSize.String(), pair.MarketName())
		}
		v.l.Info("market validated",
			zap.String("market", pair.MarketName()),
			zap.String("min_trade_size", m.MinTradeSize.String()))
		return m, nil
	}

	return domain.MarketInfo{}, errors.Wrapf(ErrMarketNotFound, "%s", pair.MarketName())
}
