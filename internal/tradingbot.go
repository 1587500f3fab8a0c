// Package internal wires the trade pipeline together.
package internal

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/bittrex-dca-bot/config"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/services/journal"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/services/market"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/services/notifier"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/services/poller"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/services/pricer"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/services/trader"
	"go.uber.org/zap"
)

// Exchange is the full exchange surface the bot consumes.
type Exchange interface {
	GetMarkets(ctx context.Context) ([]domain.MarketInfo, error)
	GetBalances(ctx context.Context) ([]domain.Balance, error)
	GetOrderBook(ctx context.Context, pair domain.Pair) (domain.OrderBookSnapshot, error)
	SellLimit(ctx context.Context, pair domain.Pair, quantity, rate decimal.Decimal) (domain.OrderAck, error)
	BuyLimit(ctx context.Context, pair domain.Pair, quantity, rate decimal.Decimal) (domain.OrderAck, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}

// Journal records order intents and their lifecycle.
type Journal interface {
	Prepare(side domain.Side, pair domain.Pair, amount, rate decimal.Decimal, now time.Time) (*journal.Record, error)
	MarkPlaced(rec *journal.Record, orderID string) error
	MarkFilled(rec *journal.Record) error
	MarkUnfilled(rec *journal.Record) error
	MarkFailed(rec *journal.Record, cause error) error
}

// Outcome of a completed bot run.
type Outcome int

const (
	// OutcomeFilled means the order filled and the report was dispatched.
	OutcomeFilled Outcome = iota
	// OutcomeTimedOut means the order stayed open past the warn threshold
	// and the alert was dispatched. Still a clean exit.
	OutcomeTimedOut
)

// RunResult is what a finished run hands back to the CLI.
type RunResult struct {
	Outcome Outcome
	Subject string
	Report  string
}

// TradingBot executes one trade: validate, price, place, wait, notify.
type TradingBot struct {
	request   config.Request
	exchange  Exchange
	validator *market.Validator
	pricer    *pricer.Pricer
	trader    *trader.Trader
	poller    *poller.Poller
	publisher notifier.Publisher
	journal   Journal
	feeRate   decimal.Decimal
	clock     clock.Clock
	l         *zap.Logger
}

// NewTradingBot creates a new trading bot instance.
func NewTradingBot(cfg *config.Config, exchange Exchange, publisher notifier.Publisher, jrnl Journal, clk clock.Clock, l *zap.Logger) *TradingBot {
	params := cfg.Settings.Exchange
	return &TradingBot{
		request:   cfg.Request,
		exchange:  exchange,
		validator: market.NewValidator(exchange, l),
		pricer:    pricer.New(exchange, params.MinNotional, l),
		trader:    trader.New(exchange, l),
		poller:    poller.New(exchange, params.PollInterval, cfg.Request.WarnAfter, clk, l),
		publisher: publisher,
		journal:   jrnl,
		feeRate:   params.FeeRate,
		clock:     clk,
		l:         l,
	}
}

// Run executes the pipeline. Every error is fatal to the run; the only
// non-error "failure" is the warn-threshold timeout, which dispatches an
// alert and returns OutcomeTimedOut.
func (b *TradingBot) Run(ctx context.Context) (*RunResult, error) {
	req := b.request

	if _, err := b.validator.Validate(ctx, req.Pair, req.Amount); err != nil {
		return nil, err
	}

	// Balances are fetched once, before the order mutates them, so the
	// report shows the pre-trade state like the exchange dashboard would
	// at order time.
	balances, err := b.exchange.GetBalances(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch balances")
	}

	quote, err := b.pricer.Quote(ctx, req.Side, req.Pair, req.Amount)
	if err != nil {
		return nil, err
	}

	summary := notifier.TradeSummary{
		Side:    req.Side,
		Pair:    req.Pair,
		Amount:  req.Amount,
		Bid:     quote.Book.Bid,
		Ask:     quote.Book.Ask,
		Rate:    quote.Rate,
		FeeRate: b.feeRate,
	}

	rec, err := b.journal.Prepare(req.Side, req.Pair, req.Amount, quote.Rate, b.clock.Now())
	if err != nil {
		return nil, err
	}

	orderID, err := b.trader.PlaceLimitOrder(ctx, req.Side, req.Pair, req.Amount, quote.Rate)
	if err != nil {
		b.markJournal(b.journal.MarkFailed(rec, err))
		return nil, err
	}
	b.markJournal(b.journal.MarkPlaced(rec, orderID))

	result, lastOrder, err := b.poller.Wait(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if result == poller.TimedOut {
		b.markJournal(b.journal.MarkUnfilled(rec))
		subject := summary.TimeoutSubject()
		if err := b.publisher.Publish(ctx, subject, lastOrder.Raw); err != nil {
			return nil, errors.Wrap(err, "failed to dispatch timeout alert")
		}
		return &RunResult{Outcome: OutcomeTimedOut, Subject: subject, Report: lastOrder.Raw}, nil
	}

	b.markJournal(b.journal.MarkFilled(rec))

	report := summary.Report(balances)
	subject := summary.Subject()
	if err := b.publisher.Publish(ctx, subject, report); err != nil {
		return nil, errors.Wrap(err, "failed to dispatch trade report")
	}

	return &RunResult{Outcome: OutcomeFilled, Subject: subject, Report: report}, nil
}

// markJournal logs journal write failures without aborting the trade:
// the order is already live on the exchange, bookkeeping must not kill it.
func (b *TradingBot) markJournal(err error) {
	if err != nil {
		b.l.Warn("failed to update order journal", zap.Error(err))
	}
}
