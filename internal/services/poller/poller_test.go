package poller

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
	"go.uber.org/zap"
)

// fakeOrders reports the order open for the first openChecks calls,
// closed afterwards.
type fakeOrders struct {
	openChecks int
	failOn     int
	calls      int
}

func (f *fakeOrders) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	f.calls++
	if f.failOn > 0 && f.calls >= f.failOn {
		return domain.Order{}, errors.New("connection reset")
	}
	if f.calls > f.openChecks {
		return domain.Order{ID: orderID, Closed: true, Raw: `{"success":true,"message":"","result":{"IsOpen":false}}`}, nil
	}
	return domain.Order{ID: orderID, Closed: false, Raw: `{"success":true,"message":"","result":{"IsOpen":true}}`}, nil
}

type waitResult struct {
	result Result
	order  domain.Order
	err    error
}

// runWait drives the poller on a mock clock until it finishes.
func runWait(t *testing.T, p *Poller, mock *clock.Mock) waitResult {
	t.Helper()
	done := make(chan waitResult, 1)
	go func() {
		result, order, err := p.Wait(context.Background(), "abc")
		done <- waitResult{result, order, err}
	}()

	deadline := time.After(10 * time.Second)
	for {
		select {
		case r := <-done:
			return r
		case <-deadline:
			t.Fatal("poller did not finish")
		default:
			mock.Add(time.Minute)
		}
	}
}

func TestWaitFilledOnFirstCheck(t *testing.T) {
	mock := clock.NewMock()
	orders := &fakeOrders{openChecks: 0}
	p := New(orders, time.Minute, time.Hour, mock, zap.NewNop())

	result, order, err := p.Wait(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, Filled, result)
	require.True(t, order.Closed)
	require.Equal(t, 1, orders.calls, "no sleep needed when the order is already closed")
}

func TestWaitFilledAfterPolls(t *testing.T) {
	mock := clock.NewMock()
	orders := &fakeOrders{openChecks: 3}
	p := New(orders, time.Minute, time.Hour, mock, zap.NewNop())

	r := runWait(t, p, mock)
	require.NoError(t, r.err)
	require.Equal(t, Filled, r.result)
	require.Equal(t, 4, orders.calls)
}

func TestWaitTimedOut(t *testing.T) {
	mock := clock.NewMock()
	orders := &fakeOrders{openChecks: 1 << 30}
	p := New(orders, time.Minute, 3*time.Minute, mock, zap.NewNop())

	r := runWait(t, p, mock)
	require.NoError(t, r.err, "timeout is a polite give-up, not an error")
	require.Equal(t, TimedOut, r.result)
	require.False(t, r.order.Closed)
	require.Equal(t, `{"success":true,"message":"","result":{"IsOpen":true}}`, r.order.Raw)
	// checks at 0m, 1m, 2m, 3m; the 4m mark exceeds the threshold before a 5th
	require.Equal(t, 5, orders.calls)
}

func TestWaitTransportErrorAborts(t *testing.T) {
	mock := clock.NewMock()
	orders := &fakeOrders{openChecks: 1 << 30, failOn: 2}
	p := New(orders, time.Minute, time.Hour, mock, zap.NewNop())

	r := runWait(t, p, mock)
	require.Error(t, r.err)
}

func TestWaitContextCancelled(t *testing.T) {
	mock := clock.NewMock()
	orders := &fakeOrders{openChecks: 1 << 30}
	p := New(orders, time.Minute, time.Hour, mock, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := p.Wait(ctx, "abc")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		require.True(t, errors.Is(err, context.Canceled))
	case <-time.After(10 * time.Second):
		t.Fatal("poller ignored cancellation")
	}
}
