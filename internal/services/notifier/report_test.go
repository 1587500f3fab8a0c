package notifier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/bittrex-dca-bot/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var summary = TradeSummary{
	Side:    domain.SideSell,
	Pair:    domain.Pair{Market: "XLM", Base: "BTC"},
	Amount:  dec("1000"),
	Bid:     dec("0.00012000"),
	Ask:     dec("0.00012990"),
	Rate:    dec("0.00012495"),
	FeeRate: dec("0.0025"),
}

func TestProceeds(t *testing.T) {
	// 0.00012495 * 1000 * 0.9975, exact decimal arithmetic
	require.True(t, dec("0.124637625").Equal(summary.Proceeds()),
		"got %s", summary.Proceeds().String())
}

func TestProceedsIsDeterministic(t *testing.T) {
	first := summary.Proceeds()
	for i := 0; i < 100; i++ {
		require.True(t, first.Equal(summary.Proceeds()))
	}
}

func TestSubject(t *testing.T) {
	require.Equal(t, "Sold 1000 XLM @ 0.00012495 BTC", summary.Subject())
}

func TestTimeoutSubject(t *testing.T) {
	require.Equal(t, "sell 1000 XLM OPEN/UNFILLED @ 0.00012495 BTC", summary.TimeoutSubject())
}

func TestReport(t *testing.T) {
	balances := []domain.Balance{
		{Currency: "BTC", Amount: dec("0.5")},
		{Currency: "ETH", Amount: dec("3")},
		{Currency: "XLM", Amount: dec("1000.5")},
	}

	report := summary.Report(balances)

	require.Contains(t, report, "order_side: sell\n")
	require.Contains(t, report, "amount: 1000 XLM\n")
	require.Contains(t, report, "bid_rate: 0.00012000 BTC\n")
	require.Contains(t, report, "ask_rate: 0.00012990 BTC\n")
	require.Contains(t, report, "market_rate: 0.00012495 BTC\n")
	require.Contains(t, report, "TOTAL PROCEEDS: 0.12463763 BTC\n")

	// balances block carries only the two involved currencies
	require.Contains(t, report, "\tBTC: 0.5\n")
	require.Contains(t, report, "\tXLM: 1000.5\n")
	require.NotContains(t, report, "ETH")
}

func TestReportCustomFeeRate(t *testing.T) {
	s := summary
	s.FeeRate = dec("0.001")

	// 0.00012495 * 1000 * 0.999
	require.True(t, dec("0.12482505").Equal(s.Proceeds()))
}
