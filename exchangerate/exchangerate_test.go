package exchangerate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutatrade"
)

func server(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/KEY/latest/USD" {
			t.Errorf("path = %q, want /KEY/latest/USD", r.URL.Path)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRates(t *testing.T) {
	srv := server(t, http.StatusOK, `{
		"result": "success",
		"base_code": "USD",
		"conversion_rates": {"USD": 1, "EUR": 0.8, "GBP": 0.5, "RUB": 0}
	}`)

	rates, err := New(srv.URL, "KEY", []string{"EUR", "gbp", "RUB", "USD"}).FetchRates(context.Background())
	if err != nil {
		t.Fatalf("FetchRates() unexpected error: %v", err)
	}
	want := map[string]string{"EUR_USD": "1.25", "GBP_USD": "2"}
	if len(rates) != len(want) {
		t.Errorf("FetchRates() = %v, want %v", rates, want)
	}
	for key, w := range want {
		if got := rates[key]; !got.Equal(decimal.RequireFromString(w)) {
			t.Errorf("rates[%s] = %s, want %s", key, got, w)
		}
	}
}

func TestFetchRatesMissingCurrency(t *testing.T) {
	srv := server(t, http.StatusOK, `{"result":"success","base_code":"USD","conversion_rates":{"EUR":0.5,"GBP":0.8}}`)

	rates, err := New(srv.URL, "KEY", []string{"EUR", "GBP", "RUB"}).FetchRates(context.Background())
	if err != nil {
		t.Fatalf("FetchRates() unexpected error: %v", err)
	}
	want := map[string]string{"EUR_USD": "2", "GBP_USD": "1.25"}
	if len(rates) != len(want) {
		t.Errorf("FetchRates() = %v, want %v", rates, want)
	}
	for key, w := range want {
		if got := rates[key]; !got.Equal(decimal.RequireFromString(w)) {
			t.Errorf("rates[%s] = %s, want %s", key, got, w)
		}
	}
	if _, ok := rates["RUB_USD"]; ok {
		t.Error("FetchRates() returned RUB_USD, absent from the response")
	}
}

func TestFetchRatesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"invalid key", http.StatusForbidden, `{"result":"error","error-type":"invalid-key"}`, "invalid-key"},
		{"quota", http.StatusOK, `{"result":"error","error-type":"quota-reached"}`, "quota-reached"},
		{"server error", http.StatusBadGateway, `{}`, "HTTP 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := server(t, tt.status, tt.body)
			_, err := New(srv.URL, "KEY", []string{"EUR"}).FetchRates(context.Background())
			var apiErr *valutatrade.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("FetchRates() error = %v, want *APIError", err)
			}
			if !errors.Is(err, valutatrade.ErrAPIFetch) || !strings.Contains(apiErr.Reason, tt.reason) {
				t.Errorf("FetchRates() reason = %q, want it to contain %q", apiErr.Reason, tt.reason)
			}
		})
	}
}

func TestFetchRatesWithoutKey(t *testing.T) {
	_, err := New("http://127.0.0.1:0", "", []string{"EUR"}).FetchRates(context.Background())
	if !errors.Is(err, valutatrade.ErrAPIFetch) {
		t.Errorf("FetchRates() without key error = %v, want ErrAPIFetch", err)
	}
}
