// Package config loads the trading settings from a YAML file and the
// environment.
//
// The file supports ${VAR} interpolation. Secrets such as the
// ExchangeRate-API key are read from the environment, optionally populated
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/valutatrade/valutatrade"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv names the variable holding the ExchangeRate-API key.
const APIKeyEnv = "EXCHANGERATE_API_KEY"

// Settings is the whole configuration of the trading program.
type Settings struct {
	DataPath              string `yaml:"data_path"`
	RatesTTLSeconds       int    `yaml:"rates_ttl_seconds"`
	BaseCurrency          string `yaml:"default_base_currency"`
	LogPath               string `yaml:"log_path"`
	LogFile               string `yaml:"log_file"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`

	Sources SourcesConfig `yaml:"sources"`

	// WatchSchedule is the cron spec used by watch-rates.
	WatchSchedule string `yaml:"watch_schedule"`

	// ExchangeRateAPIKey comes from the environment only.
	ExchangeRateAPIKey string `yaml:"-"`
}

// SourcesConfig holds the price feed settings.
type SourcesConfig struct {
	CoinGeckoURL    string            `yaml:"coingecko_url"`
	ExchangeRateURL string            `yaml:"exchangerate_url"`
	CryptoIDs       map[string]string `yaml:"crypto_ids"` // code to CoinGecko id
	FiatCurrencies  []string          `yaml:"fiat_currencies"`
}

// RatesTTL returns the maximum age of the rate snapshot.
func (s *Settings) RatesTTL() time.Duration { return time.Duration(s.RatesTTLSeconds) * time.Second }

// RequestTimeout returns the per source timeout of a rate update.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	s := new(Settings)
	s.applyDefaults()
	return s
}

// Load reads the YAML file at path, expands environment variables, applies
// defaults and validates the result. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: cannot load .env file: %v", err)
	}

	s := new(Settings)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		// Expand ${VAR} environment variables
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), s); err != nil {
			return nil, fmt.Errorf("parse config yaml %q: %w", path, err)
		}
	}

	s.ExchangeRateAPIKey = os.Getenv(APIKeyEnv)
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return s, nil
}

func (s *Settings) applyDefaults() {
	if s.DataPath == "" {
		s.DataPath = "data"
	}
	if s.RatesTTLSeconds == 0 {
		s.RatesTTLSeconds = int(valutatrade.DefaultRatesTTL / time.Second)
	}
	if s.BaseCurrency == "" {
		s.BaseCurrency = valutatrade.DefaultBaseCurrency
	}
	if s.LogPath == "" {
		s.LogPath = "logs"
	}
	if s.LogFile == "" {
		s.LogFile = "actions.log"
	}
	if s.RequestTimeoutSeconds == 0 {
		s.RequestTimeoutSeconds = 10
	}
	if s.WatchSchedule == "" {
		s.WatchSchedule = "@every 5m"
	}
	if s.Sources.CoinGeckoURL == "" {
		s.Sources.CoinGeckoURL = "https://api.coingecko.com/api/v3"
	}
	if s.Sources.ExchangeRateURL == "" {
		s.Sources.ExchangeRateURL = "https://v6.exchangerate-api.com/v6"
	}
	if len(s.Sources.CryptoIDs) == 0 {
		s.Sources.CryptoIDs = map[string]string{
			"BTC": "bitcoin",
			"ETH": "ethereum",
			"SOL": "solana",
		}
	}
	if len(s.Sources.FiatCurrencies) == 0 {
		s.Sources.FiatCurrencies = []string{"EUR", "GBP", "RUB"}
	}
}

// Validate checks the settings are usable.
func (s *Settings) Validate() error {
	var errs []error
	if s.RatesTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("rates_ttl_seconds must be positive, got %d", s.RatesTTLSeconds))
	}
	if s.RequestTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout_seconds must be positive, got %d", s.RequestTimeoutSeconds))
	}
	if _, err := valutatrade.LookupCurrency(s.BaseCurrency); err != nil {
		errs = append(errs, fmt.Errorf("default_base_currency: %w", err))
	}
	for code := range s.Sources.CryptoIDs {
		if _, err := valutatrade.LookupCurrency(code); err != nil {
			errs = append(errs, fmt.Errorf("sources.crypto_ids: %w", err))
		}
	}
	for _, code := range s.Sources.FiatCurrencies {
		if _, err := valutatrade.LookupCurrency(code); err != nil {
			errs = append(errs, fmt.Errorf("sources.fiat_currencies: %w", err))
		}
	}
	return errors.Join(errs...)
}
