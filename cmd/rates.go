package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/subcommands"
	"github.com/valutatrade/valutatrade"
	"github.com/valutatrade/valutatrade/renderer"
	"github.com/valutatrade/valutatrade/updater"
)

type getRateCmd struct {
	from string
	to   string
}

func (*getRateCmd) Name() string     { return "get-rate" }
func (*getRateCmd) Synopsis() string { return "show the exchange rate of a currency pair" }
func (*getRateCmd) Usage() string {
	return `trade get-rate -from <code> -to <code>

Shows how much one unit of -from is worth in -to, and the inverse rate.
`
}

func (c *getRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source currency code")
	f.StringVar(&c.to, "to", "", "Target currency code")
}

func (c *getRateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" {
		fmt.Fprintln(os.Stderr, "Error: -from and -to are required")
		return subcommands.ExitUsageError
	}
	return withApp("get-rate", func(a *app) error {
		q, err := a.engine.Rate(c.from, c.to)
		if err != nil {
			return err
		}
		printMarkdown(renderer.Quote(q))
		return nil
	})
}

type showRatesCmd struct {
	currency string
	base     string
	top      int
}

func (*showRatesCmd) Name() string     { return "show-rates" }
func (*showRatesCmd) Synopsis() string { return "list the cached rates" }
func (*showRatesCmd) Usage() string {
	return `trade show-rates [-currency <code>] [-base <code>] [-top <n>]

Lists the rates stored in the cache, without refreshing them.
With -top, only the n highest rates are shown.
`
}

func (c *showRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Only rates of this currency")
	f.StringVar(&c.base, "base", "", "Only rates quoted in this currency")
	f.IntVar(&c.top, "top", 0, "Only the n highest rates")
}

func (c *showRatesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.top < 0 {
		fmt.Fprintln(os.Stderr, "Error: -top must be positive")
		return subcommands.ExitUsageError
	}
	return withApp("show-rates", func(a *app) error {
		rates, err := a.engine.Rates()
		if err != nil {
			return err
		}
		filter := valutatrade.RateFilter{Base: c.base, Currency: c.currency, Top: c.top}
		printMarkdown(renderer.Rates(rates.Select(filter), rates.LastRefresh(), filter))
		return nil
	})
}

type updateRatesCmd struct {
	source string
}

func (*updateRatesCmd) Name() string     { return "update-rates" }
func (*updateRatesCmd) Synopsis() string { return "refresh the rate cache from the price feeds" }
func (*updateRatesCmd) Usage() string {
	return `trade update-rates [-source <name>]

Fetches rates from the price feeds and replaces the cache.

Supported sources:
  - coingecko:    crypto currencies.
  - exchangerate: fiat currencies. Requires EXCHANGERATE_API_KEY.

A failing source is reported but does not prevent saving what the others
returned.
`
}

func (c *updateRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "", "Only the sources whose name starts with this prefix")
}

func (c *updateRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp("update-rates", func(a *app) error {
		u, err := a.newUpdater()
		if err != nil {
			return err
		}
		rep, err := u.Run(ctx, c.source)
		printMarkdown(renderer.UpdateReport(rep))
		if err != nil {
			return err
		}
		if rep.Empty && len(rep.Failures) > 0 {
			return rep.Err()
		}
		return nil
	})
}

type watchRatesCmd struct {
	every  time.Duration
	source string
}

func (*watchRatesCmd) Name() string     { return "watch-rates" }
func (*watchRatesCmd) Synopsis() string { return "refresh the rate cache periodically" }
func (*watchRatesCmd) Usage() string {
	return `trade watch-rates [-every <duration>] [-source <name>]

Runs update-rates on a schedule until interrupted. Without -every, the
watch_schedule cron spec from the settings is used.
`
}

func (c *watchRatesCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.every, "every", 0, "Interval between two updates, e.g. 5m")
	f.StringVar(&c.source, "source", "", "Only the sources whose name starts with this prefix")
}

func (c *watchRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.every < 0 {
		fmt.Fprintln(os.Stderr, "Error: -every must be positive")
		return subcommands.ExitUsageError
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return withApp("watch-rates", func(a *app) error {
		u, err := a.newUpdater()
		if err != nil {
			return err
		}
		spec := a.settings.WatchSchedule
		if c.every > 0 {
			spec = "@every " + c.every.String()
		}
		fmt.Printf("Watching rates (%s), press Ctrl+C to stop\n", spec)
		return u.Schedule(ctx, spec, c.source, func(rep updater.Report, err error) {
			printMarkdown(renderer.UpdateReport(rep))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: update-rates: %v\n", err)
			}
		})
	})
}
