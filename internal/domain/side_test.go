package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	tests := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{in: "buy", want: SideBuy},
		{in: "BUY", want: SideBuy},
		{in: "sell", want: SideSell},
		{in: "Sell", want: SideSell},
		{in: "hold", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			side, err := ParseSide(tt.in)
			if tt.wantErr {
				require.True(t, errors.Is(err, ErrInvalidSide))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, side)
		})
	}
}

func TestPairMarketName(t *testing.T) {
	p := Pair{Market: "XLM", Base: "BTC"}
	require.Equal(t, "BTC-XLM", p.MarketName())
}
