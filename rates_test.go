package valutatrade

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSplitPairKey(t *testing.T) {
	tests := []struct {
		key      string
		from, to string
		wantErr  bool
	}{
		{key: "BTC_USD", from: "BTC", to: "USD"},
		{key: "eur_usd", from: "EUR", to: "USD"},
		{key: "BTCUSD", wantErr: true},
		{key: "_USD", wantErr: true},
		{key: "A_B_C", wantErr: true},
	}
	for _, tt := range tests {
		from, to, err := SplitPairKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitPairKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		if from != tt.from || to != tt.to {
			t.Errorf("SplitPairKey(%q) = %q, %q, want %q, %q", tt.key, from, to, tt.from, tt.to)
		}
	}
}

func TestRateStoreReplaceAll(t *testing.T) {
	s := NewRateStore([]RatePair{{From: "btc", To: "usd", Rate: D(1)}}, testNow)
	if _, ok := s.Get("BTC", "USD"); !ok {
		t.Error("Get(BTC, USD) missing, codes should be canonicalized")
	}
	later := testNow.Add(time.Minute)
	s.ReplaceAll([]RatePair{{From: "ETH", To: "USD", Rate: D(2)}}, later)
	if _, ok := s.Get("BTC", "USD"); ok {
		t.Error("Get(BTC, USD) survived ReplaceAll")
	}
	if s.Len() != 1 || !s.LastRefresh().Equal(later) {
		t.Errorf("after ReplaceAll: %d pairs at %v, want 1 at %v", s.Len(), s.LastRefresh(), later)
	}
}

func TestRateStoreSelect(t *testing.T) {
	s := NewRateStore([]RatePair{
		{From: "BTC", To: "USD", Rate: D(60000)},
		{From: "ETH", To: "USD", Rate: D(3700)},
		{From: "EUR", To: "USD", Rate: decimal.RequireFromString("1.08")},
		{From: "BTC", To: "EUR", Rate: D(55000)},
	}, testNow)

	keys := func(pairs []RatePair) []string {
		var out []string
		for _, p := range pairs {
			out = append(out, p.Key())
		}
		return out
	}
	tests := []struct {
		name   string
		filter RateFilter
		want   []string
	}{
		{"all", RateFilter{}, []string{"BTC_EUR", "BTC_USD", "ETH_USD", "EUR_USD"}},
		{"base", RateFilter{Base: "usd"}, []string{"BTC_USD", "ETH_USD", "EUR_USD"}},
		{"currency", RateFilter{Currency: "BTC"}, []string{"BTC_EUR", "BTC_USD"}},
		{"top", RateFilter{Base: "USD", Top: 2}, []string{"BTC_USD", "ETH_USD"}},
		{"top larger than list", RateFilter{Currency: "ETH", Top: 5}, []string{"ETH_USD"}},
		{"none", RateFilter{Currency: "SOL"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(s.Select(tt.filter))
			if len(got) != len(tt.want) {
				t.Fatalf("Select(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Select(%+v) = %v, want %v", tt.filter, got, tt.want)
					break
				}
			}
		})
	}
}
