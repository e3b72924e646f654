// Package renderer turns trading results into markdown documents.
package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutatrade"
	"github.com/valutatrade/valutatrade/updater"
)

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(timeLayout) + " UTC"
}

// amount prints d with the minor digits of code.
func amount(d decimal.Decimal, code string) string { return d.StringFixed(valutatrade.Fraction(code)) }

func value(d decimal.Decimal) string { return d.StringFixed(2) }
func rate(d decimal.Decimal) string  { return d.StringFixed(6) }

// Registered is printed after a successful registration.
func Registered(u *valutatrade.User) string {
	r := newRenderer()
	r.Printf("User **%s** registered (id=%d).\n\n", u.Username, u.ID)
	r.Printf("Your portfolio starts with %s.\n\n",
		valutatrade.FormatAmount(decimal.NewFromInt(valutatrade.StartingBalance), valutatrade.StartingCurrency))
	r.Printf("Log in with `trade login -username %s`.\n", u.Username)
	return r.String()
}

// Portfolio renders the valuation of a user's portfolio.
func Portfolio(u *valutatrade.User, v valutatrade.Valuation) string {
	r := newRenderer()
	r.Printf("# Portfolio of %s (base: %s)\n\n", u.Username, v.Base)
	if len(v.Lines) == 0 {
		r.Printf("The portfolio is empty.\n")
		return r.String()
	}

	rows := make([][]string, 0, len(v.Lines))
	for _, l := range v.Lines {
		if l.Err != nil {
			rows = append(rows, []string{l.Code, amount(l.Balance, l.Code), "n/a", "n/a"})
			continue
		}
		rows = append(rows, []string{l.Code, amount(l.Balance, l.Code), rate(l.Rate), value(l.Value)})
	}
	r.Table([]string{"Currency", "Balance", "Rate", "Value in " + v.Base}, "lrrr", rows)
	r.Printf("**Total: %s %s**\n", value(v.Total), v.Base)

	ConditionalBlock(r, func(w io.Writer) bool {
		fmt.Fprintf(w, "\nNot valued:\n\n")
		skipped := false
		for _, l := range v.Lines {
			if l.Err != nil {
				fmt.Fprintf(w, "- %s: %v\n", l.Code, l.Err)
				skipped = true
			}
		}
		return skipped
	})
	return r.String()
}

// Receipt renders the settlement of a trade.
func Receipt(rc *valutatrade.Receipt) string {
	r := newRenderer()
	verb, label := "Bought", "Cost"
	if rc.Side == valutatrade.Sell {
		verb, label = "Sold", "Revenue"
	}
	r.Printf("%s %s %s at %s %s/%s.\n\n", verb, amount(rc.Amount, rc.Currency), rc.Currency, value(rc.Rate), rc.Base, rc.Currency)
	r.Table([]string{"Wallet", "Before", "After"}, "lrr", [][]string{
		{rc.Currency, amount(rc.OldBalance, rc.Currency), amount(rc.NewBalance, rc.Currency)},
		{rc.Base, amount(rc.OldBaseBalance, rc.Base), amount(rc.NewBaseBalance, rc.Base)},
	})
	r.Printf("%s: %s\n", label, valutatrade.FormatAmount(rc.Total, rc.Base))
	return r.String()
}

// Quote renders a single exchange rate and its inverse.
func Quote(q valutatrade.Quote) string {
	r := newRenderer()
	r.Printf("Rate %s→%s: %s (as of %s)\n\n", q.From, q.To, rate(q.Rate), formatTime(q.AsOf))
	if !q.Rate.IsZero() {
		r.Printf("Inverse %s→%s: %s\n", q.To, q.From, rate(decimal.NewFromInt(1).Div(q.Rate)))
	}
	return r.String()
}

// Currencies renders the currency registry.
func Currencies(list []valutatrade.Currency) string {
	r := newRenderer()
	r.Printf("# Supported currencies\n\n")
	for _, kind := range []valutatrade.Kind{valutatrade.Fiat, valutatrade.Crypto} {
		ConditionalBlock(r, func(w io.Writer) bool {
			fmt.Fprintf(w, "## %s\n\n", kind)
			n := 0
			for _, c := range list {
				if c.Kind() == kind {
					fmt.Fprintf(w, "- %s\n", c.DisplayInfo())
					n++
				}
			}
			fmt.Fprintf(w, "\n")
			return n > 0
		})
	}
	return r.String()
}

// Rates renders the pairs selected from the snapshot.
func Rates(pairs []valutatrade.RatePair, lastRefresh time.Time, f valutatrade.RateFilter) string {
	r := newRenderer()
	r.Printf("# Rates from cache (updated: %s)\n\n", formatTime(lastRefresh))
	if len(pairs) == 0 {
		switch {
		case f.Currency != "":
			r.Printf("No rates for %s in the cache.\n", f.Currency)
		case f.Base != "":
			r.Printf("No rates quoted in %s in the cache.\n", f.Base)
		default:
			r.Printf("The cache is empty, run `trade update-rates`.\n")
		}
		return r.String()
	}
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.Key(), rate(p.Rate), p.Source, formatTime(p.ObservedAt)})
	}
	r.Table([]string{"Pair", "Rate", "Source", "Updated"}, "lrll", rows)
	return r.String()
}

// UpdateReport renders the outcome of a rate update.
func UpdateReport(rep updater.Report) string {
	r := newRenderer()
	if len(rep.Sources) == 0 {
		r.Printf("No rate source selected.\n")
		return r.String()
	}
	for _, name := range rep.Succeeded {
		r.Printf("- %s: OK\n", name)
	}
	for _, f := range rep.Failures {
		r.Printf("- %s: failed: %v\n", f.Source, f.Err)
	}
	r.Printf("\n")
	switch {
	case rep.Empty:
		r.Printf("No rate fetched, the cache was left untouched.\n")
	case len(rep.Failures) > 0:
		r.Printf("Update completed with errors: %d rates updated at %s.\n", len(rep.Pairs), formatTime(rep.Timestamp))
	default:
		r.Printf("Update successful: %d rates updated at %s.\n", len(rep.Pairs), formatTime(rep.Timestamp))
	}
	return r.String()
}
