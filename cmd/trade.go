package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutatrade"
	"github.com/valutatrade/valutatrade/renderer"
)

// tradeCmd implements both buy and sell.
type tradeCmd struct {
	side     valutatrade.Side
	currency string
	amount   string
}

func (c *tradeCmd) Name() string { return string(c.side) }
func (c *tradeCmd) Synopsis() string {
	if c.side == valutatrade.Sell {
		return "sell a currency for the base currency"
	}
	return "buy a currency with the base currency"
}
func (c *tradeCmd) Usage() string {
	if c.side == valutatrade.Sell {
		return `trade sell -currency <code> -amount <quantity>

Sells a quantity of a currency held in the portfolio. The revenue, at the
current rate, is credited to the base currency wallet.
`
	}
	return `trade buy -currency <code> -amount <quantity>

Buys a quantity of a currency. The cost, at the current rate, is withdrawn
from the base currency wallet. The currency wallet is created if needed.
`
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Currency code, e.g. BTC")
	f.StringVar(&c.amount, "amount", "", "Quantity to trade, a positive number")
}

func (c *tradeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.currency == "" || c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -currency and -amount are required")
		return subcommands.ExitUsageError
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}

	return withApp(string(c.side), func(a *app) error {
		user, err := a.currentUser()
		if err != nil {
			return err
		}
		var receipt *valutatrade.Receipt
		if c.side == valutatrade.Sell {
			receipt, err = a.engine.Sell(user, c.currency, amount)
		} else {
			receipt, err = a.engine.Buy(user, c.currency, amount)
		}
		if err != nil {
			return err
		}
		printMarkdown(renderer.Receipt(receipt))
		return nil
	})
}

type showPortfolioCmd struct {
	base string
}

func (*showPortfolioCmd) Name() string     { return "show-portfolio" }
func (*showPortfolioCmd) Synopsis() string { return "show the wallets and their value" }
func (*showPortfolioCmd) Usage() string {
	return `trade show-portfolio [-base <code>]

Lists the wallets of the logged in user, valued in the base currency.
`
}

func (c *showPortfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "Valuation currency, defaults to the settings base currency")
}

func (c *showPortfolioCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp("show-portfolio", func(a *app) error {
		user, err := a.currentUser()
		if err != nil {
			return err
		}
		base := c.base
		if base == "" {
			base = a.engine.BaseCurrency()
		}
		v, err := a.engine.Valuation(user, base)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Portfolio(user, v))
		return nil
	})
}

type listCurrenciesCmd struct{}

func (*listCurrenciesCmd) Name() string     { return "list-currencies" }
func (*listCurrenciesCmd) Synopsis() string { return "list the supported currencies" }
func (*listCurrenciesCmd) Usage() string {
	return `trade list-currencies

Lists every currency that can be traded.
`
}

func (c *listCurrenciesCmd) SetFlags(f *flag.FlagSet) {}

func (c *listCurrenciesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printMarkdown(renderer.Currencies(valutatrade.Currencies()))
	return subcommands.ExitSuccess
}
