package valutatrade

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errors returned by the trading core. Typed errors below match their
// sentinel with errors.Is, so callers can test either way.
var (
	ErrCurrencyNotFound  = errors.New("currency not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrStaleRates        = errors.New("rates cache is stale")
	ErrRateNotFound      = errors.New("rate not found")
	ErrInvalidRate       = errors.New("invalid rate")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrAPIFetch          = errors.New("api request failed")

	ErrUsernameTaken     = errors.New("username already taken")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrPortfolioNotFound = errors.New("portfolio not found")
)

// CurrencyNotFoundError reports a code missing from the registry.
type CurrencyNotFoundError struct {
	Code string
}

func (e *CurrencyNotFoundError) Error() string {
	return fmt.Sprintf("currency %q is not in the registry", e.Code)
}

func (e *CurrencyNotFoundError) Is(target error) bool { return target == ErrCurrencyNotFound }

// InsufficientFundsError reports a withdrawal larger than the wallet balance.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
	Code      string
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s %s, required %s %s", e.Available, e.Code, e.Required, e.Code)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// APIError is returned by price feeds when a fetch cannot be completed.
type APIError struct {
	Source string
	Reason string
	Err    error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *APIError) Unwrap() error         { return e.Err }
func (e *APIError) Is(target error) bool { return target == ErrAPIFetch }

// errorKinds orders the sentinels from the most to the least specific.
var errorKinds = []struct {
	err  error
	name string
}{
	{ErrCurrencyNotFound, "CurrencyNotFound"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrWalletNotFound, "WalletNotFound"},
	{ErrStaleRates, "StaleRates"},
	{ErrRateNotFound, "RateNotFound"},
	{ErrInvalidRate, "InvalidRate"},
	{ErrInvalidOperation, "InvalidOperation"},
	{ErrAPIFetch, "ApiFetchFailure"},
	{ErrUsernameTaken, "UsernameTaken"},
	{ErrUserNotFound, "UserNotFound"},
	{ErrInvalidPassword, "InvalidPassword"},
	{ErrNotLoggedIn, "NotLoggedIn"},
	{ErrPortfolioNotFound, "PortfolioNotFound"},
}

// ErrorKind names the taxonomy entry err belongs to, or "Error" when it is
// not one of ours (typically an I/O error from the store).
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Error"
}
