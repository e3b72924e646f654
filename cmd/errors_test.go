package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/valutatrade/valutatrade"
)

func TestHint(t *testing.T) {
	tests := []struct {
		err  error
		want string // fragment of the hint, empty for none
	}{
		{&valutatrade.CurrencyNotFoundError{Code: "XYZ"}, "list-currencies"},
		{fmt.Errorf("%w: too old", valutatrade.ErrStaleRates), "update-rates"},
		{&valutatrade.APIError{Source: "CoinGecko", Reason: "HTTP 429"}, "update-rates"},
		{valutatrade.ErrRateNotFound, "update-rates"},
		{fmt.Errorf("%w: no BTC wallet", valutatrade.ErrWalletNotFound), "first buy"},
		{valutatrade.ErrNotLoggedIn, "trade login"},
		{&valutatrade.InsufficientFundsError{Code: "USD"}, ""},
		{errors.New("disk full"), ""},
	}
	for _, tt := range tests {
		got := hint(tt.err)
		if tt.want == "" {
			if got != "" {
				t.Errorf("hint(%v) = %q, want none", tt.err, got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("hint(%v) = %q, want it to mention %q", tt.err, got, tt.want)
		}
	}
}
