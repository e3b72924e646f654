// Package httputil holds the JSON over HTTP helpers shared by the rate feeds.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/shopspring/decimal"
)

type options struct {
	requireOK bool
	hidePath  bool
}

// Option tunes a Jwget call.
type Option func(*options)

// RequireOK skips decoding when the status is not 200 OK. The status is still
// returned for the caller to report.
func RequireOK() Option { return func(o *options) { o.requireOK = true } }

// HidePath logs only the host, for APIs carrying a secret in the path.
func HidePath() Option { return func(o *options) { o.hidePath = true } }

// Jwget performs an HTTP GET request and unmarshals the JSON response into the
// provided data structure. Numbers are decoded as json.Number.
func Jwget(ctx context.Context, client *http.Client, addr string, data any, opts ...Option) (int, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if o.hidePath {
		log.Printf("%v %v %v", req.Method, req.URL.Host, resp.Status)
	} else {
		log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return resp.StatusCode, err
	}
	if o.requireOK && resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	dec := json.NewDecoder(&buf)
	// numbers are kept as text to be parsed as exact decimals.
	dec.UseNumber()
	if err := dec.Decode(data); err != nil {
		return resp.StatusCode, fmt.Errorf("cannot decode response (%s): %w", resp.Status, err)
	}
	return resp.StatusCode, nil
}

// ToDecimal converts a value returned by jsonpath into a decimal.
func ToDecimal(jval any) (decimal.Decimal, error) {
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("not a number: %v", jval)
	}
}
