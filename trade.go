package valutatrade

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Side of a trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Receipt is the settlement of one trade.
type Receipt struct {
	Side     Side
	Amount   decimal.Decimal // traded quantity of Currency
	Currency string
	Rate     decimal.Decimal // 1 Currency = Rate Base
	RateAsOf time.Time
	Total    decimal.Decimal // cost of a buy, revenue of a sell, in Base
	Base     string

	OldBalance     decimal.Decimal // Currency wallet before the trade
	NewBalance     decimal.Decimal
	OldBaseBalance decimal.Decimal
	NewBaseBalance decimal.Decimal
}

func (r *Receipt) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("rate", r.Rate.StringFixed(2)),
		zap.String("base", r.Base),
	}
}

// Buy purchases amount of code, paying with the base currency.
func (e *Engine) Buy(user *User, code string, amount decimal.Decimal) (*Receipt, error) {
	return runAction(e.logger, "BUY", tradeFields(user, code, amount), func() (*Receipt, error) {
		return e.trade(Buy, user, code, amount)
	})
}

// Sell sells amount of code, for the base currency.
func (e *Engine) Sell(user *User, code string, amount decimal.Decimal) (*Receipt, error) {
	return runAction(e.logger, "SELL", tradeFields(user, code, amount), func() (*Receipt, error) {
		return e.trade(Sell, user, code, amount)
	})
}

func tradeFields(user *User, code string, amount decimal.Decimal) []zap.Field {
	return []zap.Field{
		zap.String("username", user.Username),
		zap.String("currency", canonical(code)),
		zap.String("amount", amount.String()),
	}
}

func (e *Engine) trade(side Side, user *User, code string, amount decimal.Decimal) (*Receipt, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount %s must be positive", ErrInvalidAmount, amount)
	}
	cur, err := LookupCurrency(code)
	if err != nil {
		return nil, err
	}
	code = cur.Code()
	if code == e.base {
		return nil, fmt.Errorf("%w: cannot %s the base currency %s against itself", ErrInvalidOperation, side, e.base)
	}

	portfolios, err := e.store.LoadPortfolios()
	if err != nil {
		return nil, err
	}
	stored, _ := findPortfolio(portfolios, user.ID)
	if stored == nil {
		return nil, fmt.Errorf("%w: user %q", ErrPortfolioNotFound, user.Username)
	}
	// All mutations happen on a copy that is persisted only when complete.
	p := stored.Clone()

	if side == Sell {
		// a missing wallet means the currency was never held.
		if _, err := p.Wallet(code); err != nil {
			return nil, err
		}
	}

	resolver, err := e.resolver()
	if err != nil {
		return nil, err
	}
	q, err := resolver.Resolve(code, e.base)
	if err != nil {
		return nil, err
	}

	baseWallet := p.GetOrCreate(e.base)
	target := p.GetOrCreate(code)
	r := &Receipt{
		Side:           side,
		Amount:         amount,
		Currency:       code,
		Rate:           q.Rate,
		RateAsOf:       q.AsOf,
		Total:          amount.Mul(q.Rate),
		Base:           e.base,
		OldBalance:     target.Balance(),
		OldBaseBalance: baseWallet.Balance(),
	}

	switch side {
	case Buy:
		if err := baseWallet.Withdraw(r.Total); err != nil {
			return nil, err
		}
		if err := target.Deposit(amount); err != nil {
			return nil, err
		}
	case Sell:
		if err := target.Withdraw(amount); err != nil {
			return nil, err
		}
		if err := baseWallet.Deposit(r.Total); err != nil {
			return nil, err
		}
	}
	r.NewBalance = target.Balance()
	r.NewBaseBalance = baseWallet.Balance()

	if err := e.store.SavePortfolios(replacePortfolio(portfolios, p)); err != nil {
		return nil, err
	}
	return r, nil
}
