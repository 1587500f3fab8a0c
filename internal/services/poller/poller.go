// Package poller waits for a placed order to fill.
package poller

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"go.uber.org/zap"
)

// Result is the terminal state of a poll run.
type Result int

const (
	// Filled means the exchange reported the order closed.
	Filled Result = iota
	// TimedOut means the warn threshold elapsed while the order was
	// still open. This is a deliberate give-up, not a failure.
	TimedOut
)

// StatusGetter re-fetches order status from the exchange.
type StatusGetter interface {
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
}

// Poller re-checks order status at a fixed interval until the order closes
// or the accumulated wait time exceeds the warn threshold. No backoff, no
// retry on transport errors: a failed status fetch aborts the run.
type Poller struct {
	orders    StatusGetter
	interval  time.Duration
	warnAfter time.Duration
	clock     clock.Clock
	l         *zap.Logger
}

// New creates a new Poller instance.
func New(orders StatusGetter, interval, warnAfter time.Duration, clk clock.Clock, l *zap.Logger) *Poller {
	return &Poller{
		orders:    orders,
		interval:  interval,
		warnAfter: warnAfter,
		clock:     clk,
		l:         l,
	}
}

// Wait blocks until the order closes or the warn threshold is exceeded.
// The returned order is the last-known exchange status. Elapsed time is
// accumulated from completed sleep intervals.
func (p *Poller) Wait(ctx context.Context, orderID string) (Result, domain.Order, error) {
	order, err := p.orders.GetOrder(ctx, orderID)
	if err != nil {
		return 0, domain.Order{}, errors.Wrapf(err, "failed to fetch status of order %s", orderID)
	}

	var waited time.Duration
	for !order.Closed {
		if waited > p.warnAfter {
			p.l.Warn("order still open after warn threshold, giving up",
				zap.String("order", orderID),
				zap.Duration("waited", waited),
				zap.Duration("warn_after", p.warnAfter))
			return TimedOut, order, nil
		}

		p.l.Info("order still pending",
			zap.String("order", orderID),
			zap.Duration("sleep", p.interval),
			zap.Duration("waited", waited))

		select {
		case <-ctx.Done():
			return 0, order, ctx.Err()
		case <-p.clock.After(p.interval):
		}
		waited += p.interval

		order, err = p.orders.GetOrder(ctx, orderID)
		if err != nil {
			return 0, order, errors.Wrapf(err, "failed to fetch status of order %s", orderID)
		}
	}

	p.l.Info("order filled", zap.String("order", orderID), zap.Duration("waited", waited))
	return Filled, order, nil
}
