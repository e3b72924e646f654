package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutatrade"
)

var ids = map[string]string{"BTC": "bitcoin", "ETH": "ethereum", "SOL": "solana"}

func TestFetchRates(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"bitcoin":{"usd":59337.21},"ethereum":{"usd":3720.00},"solana":{"usd":145.12}}`))
	}))
	defer srv.Close()

	rates, err := New(srv.URL+"/", ids).FetchRates(context.Background())
	if err != nil {
		t.Fatalf("FetchRates() unexpected error: %v", err)
	}
	if want := "ids=bitcoin%2Cethereum%2Csolana&vs_currencies=usd"; gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
	want := map[string]string{"BTC_USD": "59337.21", "ETH_USD": "3720", "SOL_USD": "145.12"}
	if len(rates) != len(want) {
		t.Errorf("FetchRates() returned %d rates, want %d", len(rates), len(want))
	}
	for key, w := range want {
		if got := rates[key]; !got.Equal(decimal.RequireFromString(w)) {
			t.Errorf("rates[%s] = %s, want %s", key, got, w)
		}
	}
}

func TestFetchRatesMissingCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":60000},"ethereum":{"usd":3000}}`))
	}))
	defer srv.Close()

	rates, err := New(srv.URL, ids).FetchRates(context.Background())
	if err != nil {
		t.Fatalf("FetchRates() unexpected error: %v", err)
	}
	want := map[string]string{"BTC_USD": "60000", "ETH_USD": "3000"}
	if len(rates) != len(want) {
		t.Errorf("FetchRates() = %v, want %v", rates, want)
	}
	for key, w := range want {
		if got := rates[key]; !got.Equal(decimal.RequireFromString(w)) {
			t.Errorf("rates[%s] = %s, want %s", key, got, w)
		}
	}
	if _, ok := rates["SOL_USD"]; ok {
		t.Error("FetchRates() returned SOL_USD, absent from the response")
	}
}

func TestFetchRatesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"status":{"error_code":429}}`},
		{"not a number", http.StatusOK, `{"bitcoin":{"usd":"x"},"ethereum":{"usd":1},"solana":{"usd":1}}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, ids).FetchRates(context.Background())
			if !errors.Is(err, valutatrade.ErrAPIFetch) {
				t.Fatalf("FetchRates() error = %v, want ErrAPIFetch", err)
			}
			var apiErr *valutatrade.APIError
			if !errors.As(err, &apiErr) || apiErr.Source != Name {
				t.Errorf("FetchRates() error = %#v, want *APIError from %s", err, Name)
			}
		})
	}
}

func TestFetchRatesCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(srv.URL, ids).FetchRates(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("FetchRates() error = %v, want context.Canceled", err)
	}
}
