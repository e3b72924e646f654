package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/valutatrade/valutatrade"
)

// failure prints err with a hint on how to recover from it.
func failure(action string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", action, err)
	if hint := hint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	return subcommands.ExitFailure
}

func hint(err error) string {
	switch {
	case errors.Is(err, valutatrade.ErrCurrencyNotFound):
		return "run 'trade list-currencies' to see the supported codes"
	case errors.Is(err, valutatrade.ErrStaleRates),
		errors.Is(err, valutatrade.ErrRateNotFound),
		errors.Is(err, valutatrade.ErrAPIFetch):
		return "run 'trade update-rates' to refresh the rates, or retry later"
	case errors.Is(err, valutatrade.ErrWalletNotFound):
		return "a wallet is created on the first buy of its currency"
	case errors.Is(err, valutatrade.ErrNotLoggedIn):
		return "run 'trade login' first"
	case errors.Is(err, valutatrade.ErrUserNotFound):
		return "run 'trade register' to create an account"
	}
	return ""
}
