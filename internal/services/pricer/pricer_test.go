package pricer

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"go.uber.org/zap"
)

type fakeBooks struct {
	book  domain.OrderBookSnapshot
	err   error
	calls int
}

func (f *fakeBooks) GetOrderBook(ctx context.Context, pair domain.Pair) (domain.OrderBookSnapshot, error) {
	f.calls++
	return f.book, f.err
}

var pair = domain.Pair{Market: "XLM", Base: "BTC"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuoteRate(t *testing.T) {
	tests := []struct {
		name     string
		bid, ask string
		amount   string
		wantRate string
	}{
		{
			name: "wide spread yields rounded midpoint",
			bid: "0.00012000", ask: "0.00012990",
			amount:   "1000",
			wantRate: "0.00012495",
		},
		{
			name: "midpoint rounds to 8 decimal places",
			bid: "0.00000010", ask: "0.00000013",
			amount:   "10000000",
			wantRate: "0.00000012",
		},
		{
			name: "half-tick midpoint rounds to the even digit",
			bid: "0.00012001", ask: "0.00012004",
			amount:   "1000",
			wantRate: "0.00012002",
		},
		{
			name: "half-tick midpoint with odd retained digit rounds up",
			bid: "0.00012002", ask: "0.00012005",
			amount:   "1000",
			wantRate: "0.00012004",
		},
		{
			name: "spread above one tick keeps the midpoint",
			bid: "0.00000010", ask: "0.00000012",
			amount:   "10000000",
			wantRate: "0.00000011",
		},
		{
			name: "spread of exactly one tick takes the bid",
			bid: "0.00012000", ask: "0.00012001",
			amount:   "1000",
			wantRate: "0.00012",
		},
		{
			name: "zero spread takes the bid",
			bid: "0.00012000", ask: "0.00012000",
			amount:   "1000",
			wantRate: "0.00012",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books := &fakeBooks{book: domain.OrderBookSnapshot{Bid: dec(tt.bid), Ask: dec(tt.ask)}}
			p := New(books, dec("0.0005"), zap.NewNop())

			quote, err := p.Quote(context.Background(), domain.SideSell, pair, dec(tt.amount))
			require.NoError(t, err)
			require.True(t, dec(tt.wantRate).Equal(quote.Rate),
				"want %s, got %s", tt.wantRate, quote.Rate.String())
			require.Equal(t, 1, books.calls)
		})
	}
}

func TestQuoteBuySideNotImplemented(t *testing.T) {
	books := &fakeBooks{book: domain.OrderBookSnapshot{Bid: dec("1"), Ask: dec("2")}}
	p := New(books, dec("0.0005"), zap.NewNop())

	_, err := p.Quote(context.Background(), domain.SideBuy, pair, dec("30"))
	require.True(t, errors.Is(err, ErrBuyNotImplemented))
	require.Zero(t, books.calls, "buy side must fail before any network call")
}

func TestQuoteMinNotional(t *testing.T) {
	// zero spread, so the final rate is the bid: 0.00000500
	book := domain.OrderBookSnapshot{Bid: dec("0.00000500"), Ask: dec("0.00000500")}

	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "notional above minimum", amount: "200", wantErr: false},
		{name: "notional exactly at minimum passes", amount: "100", wantErr: false},
		{name: "notional below minimum", amount: "99", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&fakeBooks{book: book}, dec("0.0005"), zap.NewNop())
			_, err := p.Quote(context.Background(), domain.SideSell, pair, dec(tt.amount))
			if tt.wantErr {
				require.True(t, errors.Is(err, ErrOrderTooSmall), "got: %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestQuoteMinNotionalUsesAdjustedRate(t *testing.T) {
	// Midpoint would pass the check, the adjusted (bid) rate must not.
	book := domain.OrderBookSnapshot{Bid: dec("0.00000499"), Ask: dec("0.00000500")}
	p := New(&fakeBooks{book: book}, dec("0.0005"), zap.NewNop())

	_, err := p.Quote(context.Background(), domain.SideSell, pair, dec("100"))
	require.True(t, errors.Is(err, ErrOrderTooSmall))
}

func TestQuoteTransportErrorIsFatal(t *testing.T) {
	transportErr := errors.New("connection reset")
	p := New(&fakeBooks{err: transportErr}, dec("0.0005"), zap.NewNop())

	_, err := p.Quote(context.Background(), domain.SideSell, pair, dec("1000"))
	require.True(t, errors.Is(err, transportErr))
}
