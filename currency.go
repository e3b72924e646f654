package valutatrade

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// codeRegex checks for 2 to 5 uppercase letters.
var codeRegex = regexp.MustCompile(`^[A-Z]{2,5}$`)

// Kind tells fiat and crypto currencies apart.
type Kind int

const (
	Fiat Kind = iota
	Crypto
)

func (k Kind) String() string {
	switch k {
	case Fiat:
		return "fiat"
	case Crypto:
		return "crypto"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Currency is either a *FiatCurrency or a *CryptoCurrency.
type Currency interface {
	Code() string
	Name() string
	Kind() Kind
	// DisplayInfo returns a one line description for the user.
	DisplayInfo() string

	sealed()
}

// FiatCurrency is a currency issued by a government.
type FiatCurrency struct {
	code           string
	name           string
	issuingCountry string
}

// NewFiat returns a fiat currency, the code is canonicalized to uppercase.
func NewFiat(code, name, issuingCountry string) (*FiatCurrency, error) {
	code, err := validateCurrency(code, name)
	if err != nil {
		return nil, err
	}
	return &FiatCurrency{code: code, name: name, issuingCountry: issuingCountry}, nil
}

func (c *FiatCurrency) Code() string           { return c.code }
func (c *FiatCurrency) Name() string           { return c.name }
func (c *FiatCurrency) Kind() Kind             { return Fiat }
func (c *FiatCurrency) IssuingCountry() string { return c.issuingCountry }
func (c *FiatCurrency) sealed()                {}

func (c *FiatCurrency) DisplayInfo() string {
	return fmt.Sprintf("[FIAT] %s — %s (Issuing: %s)", c.code, c.name, c.issuingCountry)
}

// CryptoCurrency is a digital asset.
type CryptoCurrency struct {
	code      string
	name      string
	algorithm string
	marketCap float64
}

// NewCrypto returns a crypto currency, the code is canonicalized to uppercase.
func NewCrypto(code, name, algorithm string, marketCap float64) (*CryptoCurrency, error) {
	code, err := validateCurrency(code, name)
	if err != nil {
		return nil, err
	}
	return &CryptoCurrency{code: code, name: name, algorithm: algorithm, marketCap: marketCap}, nil
}

func (c *CryptoCurrency) Code() string       { return c.code }
func (c *CryptoCurrency) Name() string       { return c.name }
func (c *CryptoCurrency) Kind() Kind         { return Crypto }
func (c *CryptoCurrency) Algorithm() string  { return c.algorithm }
func (c *CryptoCurrency) MarketCap() float64 { return c.marketCap }
func (c *CryptoCurrency) sealed()            {}

func (c *CryptoCurrency) DisplayInfo() string {
	return fmt.Sprintf("[CRYPTO] %s — %s (Algo: %s, MCAP: %.2e)", c.code, c.name, c.algorithm, c.marketCap)
}

func validateCurrency(code, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("currency name cannot be empty")
	}
	if strings.ContainsFunc(code, unicode.IsSpace) {
		return "", fmt.Errorf("currency code %q cannot contain whitespace", code)
	}
	code = strings.ToUpper(code)
	if !codeRegex.MatchString(code) {
		return "", fmt.Errorf("currency code %q must be 2 to 5 letters", code)
	}
	return code, nil
}

// canonical turns user input into a registry key.
func canonical(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// registry is fixed at init and never mutated afterwards.
var registry = map[string]Currency{}

func mustRegister(c Currency, err error) {
	if err != nil {
		panic(err)
	}
	registry[c.Code()] = c
}

func init() {
	mustRegister(NewFiat("USD", "US Dollar", "United States"))
	mustRegister(NewFiat("EUR", "Euro", "Eurozone"))
	mustRegister(NewFiat("RUB", "Russian Ruble", "Russia"))
	mustRegister(NewFiat("GBP", "British Pound", "United Kingdom"))
	mustRegister(NewCrypto("BTC", "Bitcoin", "SHA-256", 1.12e12))
	mustRegister(NewCrypto("ETH", "Ethereum", "Ethash", 4.5e11))
	mustRegister(NewCrypto("SOL", "Solana", "Proof of History", 8.5e10))
}

// LookupCurrency returns the registered currency for code, case-insensitively.
func LookupCurrency(code string) (Currency, error) {
	key := canonical(code)
	c, ok := registry[key]
	if !ok {
		return nil, &CurrencyNotFoundError{Code: key}
	}
	return c, nil
}

// Currencies returns every registered currency sorted by code.
func Currencies() []Currency {
	list := make([]Currency, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code() < list[j].Code() })
	return list
}
