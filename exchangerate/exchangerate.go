// Package exchangerate fetches fiat rates from ExchangeRate-API (v6).
package exchangerate

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutatrade"
	"github.com/valutatrade/valutatrade/internal/httputil"
)

// Name is the source name recorded in the rate snapshot.
const Name = "ExchangeRate-API"

// Client is an ExchangeRate-API price feed, it implements updater.Source.
type Client struct {
	baseURL    string
	apiKey     string
	currencies []string
	base       string
	http       *http.Client
}

// New returns a feed quoting currencies in USD.
func New(baseURL, apiKey string, currencies []string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		currencies: currencies,
		base:       valutatrade.DefaultBaseCurrency,
		http:       new(http.Client),
	}
}

func (c *Client) Name() string { return Name }

// FetchRates returns one CODE_USD rate per configured currency.
//
// The API quotes every currency per 1 USD:
//
//	{"result": "success", "base_code": "USD", "conversion_rates": {"EUR": 0.927}}
//
// so CODE_USD is the inverse of conversion_rates[CODE]. Missing currencies and
// zero rates are skipped.
func (c *Client) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if c.apiKey == "" {
		return nil, &valutatrade.APIError{Source: Name, Reason: "missing API key"}
	}
	addr := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, url.PathEscape(c.apiKey), c.base)

	var jobj any
	// the path carries the API key
	status, err := httputil.Jwget(ctx, c.http, addr, &jobj, httputil.HidePath())
	if err != nil {
		return nil, &valutatrade.APIError{Source: Name, Reason: "request failed", Err: err}
	}
	// the API documents its failures in the body, whatever the status
	if result, _ := jsonpath.Get("$.result", jobj); result != "success" {
		reason := fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
		if kind, err := jsonpath.Get(`$["error-type"]`, jobj); err == nil {
			reason = fmt.Sprint(kind)
		}
		return nil, &valutatrade.APIError{Source: Name, Reason: reason}
	}

	rates := make(map[string]decimal.Decimal, len(c.currencies))
	for _, code := range c.currencies {
		code = strings.ToUpper(code)
		if code == c.base {
			continue
		}
		path := fmt.Sprintf("$.conversion_rates[%q]", code)
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			log.Printf("%s: no %s rate in response, skipped", Name, code)
			continue
		}
		perBase, err := httputil.ToDecimal(jval)
		if err != nil {
			return nil, &valutatrade.APIError{Source: Name, Reason: fmt.Sprintf("invalid %s rate", code), Err: err}
		}
		if !perBase.IsPositive() {
			continue
		}
		rates[valutatrade.PairKey(code, c.base)] = decimal.NewFromInt(1).Div(perBase)
	}
	return rates, nil
}
