// Package coingecko fetches crypto prices from the CoinGecko public API.
package coingecko

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutatrade"
	"github.com/valutatrade/valutatrade/internal/httputil"
)

// Name is the source name recorded in the rate snapshot.
const Name = "CoinGecko"

// Client is a CoinGecko price feed, it implements updater.Source.
type Client struct {
	baseURL string
	ids     map[string]string // currency code to CoinGecko coin id
	quote   string
	http    *http.Client
}

// New returns a feed pricing the coins in ids (code to coin id) in USD.
func New(baseURL string, ids map[string]string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ids:     ids,
		quote:   valutatrade.DefaultBaseCurrency,
		http:    new(http.Client),
	}
}

func (c *Client) Name() string { return Name }

// codes returns the configured currency codes, sorted.
func (c *Client) codes() []string {
	codes := make([]string, 0, len(c.ids))
	for code := range c.ids {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FetchRates returns one CODE_USD rate per configured coin found in the
// response. Missing coins and non positive prices are skipped.
//
// The response looks like:
//
//	{"bitcoin": {"usd": 59337.21}, "ethereum": {"usd": 3720.0}}
func (c *Client) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	codes := c.codes()
	ids := make([]string, 0, len(codes))
	for _, code := range codes {
		ids = append(ids, c.ids[code])
	}
	vs := strings.ToLower(c.quote)

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", vs)
	addr := c.baseURL + "/simple/price?" + q.Encode()

	var jobj any
	status, err := httputil.Jwget(ctx, c.http, addr, &jobj, httputil.RequireOK())
	if err != nil {
		return nil, &valutatrade.APIError{Source: Name, Reason: "request failed", Err: err}
	}
	if status != http.StatusOK {
		return nil, &valutatrade.APIError{Source: Name, Reason: fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))}
	}

	rates := make(map[string]decimal.Decimal, len(codes))
	for _, code := range codes {
		path := fmt.Sprintf("$[%q][%q]", c.ids[code], vs)
		jval, err := jsonpath.Get(path, jobj)
		if err != nil {
			log.Printf("%s: no %s price in response, skipped", Name, code)
			continue
		}
		rate, err := httputil.ToDecimal(jval)
		if err != nil {
			return nil, &valutatrade.APIError{Source: Name, Reason: fmt.Sprintf("invalid %s price", code), Err: err}
		}
		if !rate.IsPositive() {
			continue
		}
		rates[valutatrade.PairKey(code, c.quote)] = rate
	}
	return rates, nil
}
