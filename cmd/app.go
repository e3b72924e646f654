// Package cmd implements the trade command line application.
package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/valutatrade/valutatrade"
	"github.com/valutatrade/valutatrade/actionlog"
	"github.com/valutatrade/valutatrade/coingecko"
	"github.com/valutatrade/valutatrade/config"
	"github.com/valutatrade/valutatrade/exchangerate"
	"github.com/valutatrade/valutatrade/storage"
	"github.com/valutatrade/valutatrade/updater"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&registerCmd{}, "account")
	c.Register(&loginCmd{}, "account")
	c.Register(&logoutCmd{}, "account")

	c.Register(&showPortfolioCmd{}, "trading")
	c.Register(&tradeCmd{side: valutatrade.Buy}, "trading")
	c.Register(&tradeCmd{side: valutatrade.Sell}, "trading")
	c.Register(&listCurrenciesCmd{}, "trading")

	c.Register(&getRateCmd{}, "rates")
	c.Register(&showRatesCmd{}, "rates")
	c.Register(&updateRatesCmd{}, "rates")
	c.Register(&watchRatesCmd{}, "rates")

	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "valutatrade.yaml", "Path to the YAML settings file")
var dataPath = flag.String("data", "", "Path to the data folder, overrides data_path from the settings")

// app is what every command needs: settings, store and engine.
type app struct {
	settings *config.Settings
	store    *storage.FileStore
	engine   *valutatrade.Engine
	logger   *zap.Logger
}

// openApp loads the settings and opens the data folder and the action log.
func openApp() (*app, error) {
	settings, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *dataPath != "" {
		settings.DataPath = *dataPath
	}

	store, err := storage.Open(settings.DataPath)
	if err != nil {
		return nil, err
	}
	logger, err := actionlog.Open(settings.LogPath, settings.LogFile)
	if err != nil {
		return nil, err
	}
	engine := valutatrade.NewEngine(store,
		valutatrade.WithBaseCurrency(settings.BaseCurrency),
		valutatrade.WithRatesTTL(settings.RatesTTL()),
		valutatrade.WithLogger(logger),
	)
	return &app{settings: settings, store: store, engine: engine, logger: logger}, nil
}

func (a *app) close() { a.logger.Sync() }

// sources returns the configured price feeds. ExchangeRate-API is only
// available with an API key.
func (a *app) sources() []updater.Source {
	s := a.settings.Sources
	sources := []updater.Source{coingecko.New(s.CoinGeckoURL, s.CryptoIDs)}
	if a.settings.ExchangeRateAPIKey == "" {
		log.Printf("warning, %s is not set: %s source disabled", config.APIKeyEnv, exchangerate.Name)
		return sources
	}
	return append(sources, exchangerate.New(s.ExchangeRateURL, a.settings.ExchangeRateAPIKey, s.FiatCurrencies))
}

// newUpdater returns an updater over the stored snapshot.
func (a *app) newUpdater() (*updater.Updater, error) {
	rates, err := a.store.LoadRates()
	if err != nil {
		return nil, err
	}
	return updater.New(rates, a.store, a.sources(),
		updater.WithTimeout(a.settings.RequestTimeout()),
		updater.WithLogger(a.logger),
	), nil
}

// withApp opens the app, runs fn and reports its error.
func withApp(action string, fn func(a *app) error) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot start: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()
	if err := fn(a); err != nil {
		return failure(action, err)
	}
	return subcommands.ExitSuccess
}

// currentUser returns the logged in user or a failure.
func (a *app) currentUser() (*valutatrade.User, error) {
	return a.engine.CurrentUser()
}
