package valutatrade

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Wallet holds the balance of a single currency. The balance is never negative.
type Wallet struct {
	code    string
	balance decimal.Decimal
}

// NewWallet returns a wallet for code holding balance.
func NewWallet(code string, balance decimal.Decimal) (*Wallet, error) {
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: %s wallet balance %s is negative", ErrInvalidAmount, canonical(code), balance)
	}
	return &Wallet{code: canonical(code), balance: balance}, nil
}

func (w *Wallet) Code() string             { return w.code }
func (w *Wallet) Balance() decimal.Decimal { return w.balance }

// Deposit adds a positive amount to the balance.
func (w *Wallet) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: deposit of %s must be positive", ErrInvalidAmount, amount)
	}
	w.balance = w.balance.Add(amount)
	return nil
}

// Withdraw removes a positive amount from the balance. The balance is left
// untouched when it cannot cover amount.
func (w *Wallet) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: withdrawal of %s must be positive", ErrInvalidAmount, amount)
	}
	if amount.GreaterThan(w.balance) {
		return &InsufficientFundsError{Available: w.balance, Required: amount, Code: w.code}
	}
	w.balance = w.balance.Sub(amount)
	return nil
}
