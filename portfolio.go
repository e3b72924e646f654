package valutatrade

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Portfolio is the set of wallets of one user, at most one per currency.
type Portfolio struct {
	userID  int
	wallets map[string]*Wallet
}

// NewPortfolio returns the portfolio of userID. Later wallets replace
// earlier ones with the same code.
func NewPortfolio(userID int, wallets ...*Wallet) *Portfolio {
	p := &Portfolio{userID: userID, wallets: make(map[string]*Wallet, len(wallets))}
	for _, w := range wallets {
		p.wallets[w.code] = w
	}
	return p
}

func (p *Portfolio) UserID() int { return p.userID }

// Wallet returns the wallet for code.
func (p *Portfolio) Wallet(code string) (*Wallet, error) {
	w, ok := p.wallets[canonical(code)]
	if !ok {
		return nil, fmt.Errorf("%w: no %s wallet", ErrWalletNotFound, canonical(code))
	}
	return w, nil
}

// GetOrCreate returns the wallet for code, creating an empty one if needed.
func (p *Portfolio) GetOrCreate(code string) *Wallet {
	code = canonical(code)
	w, ok := p.wallets[code]
	if !ok {
		w = &Wallet{code: code}
		p.wallets[code] = w
	}
	return w
}

// Wallets returns all wallets sorted by code.
func (p *Portfolio) Wallets() []*Wallet {
	list := make([]*Wallet, 0, len(p.wallets))
	for _, w := range p.wallets {
		list = append(list, w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].code < list[j].code })
	return list
}

// Clone returns a deep copy of p.
func (p *Portfolio) Clone() *Portfolio {
	c := &Portfolio{userID: p.userID, wallets: make(map[string]*Wallet, len(p.wallets))}
	for code, w := range p.wallets {
		cw := *w
		c.wallets[code] = &cw
	}
	return c
}

// ValuationLine is the value of one wallet in the valuation base.
type ValuationLine struct {
	Code    string
	Balance decimal.Decimal
	Rate    decimal.Decimal
	Value   decimal.Decimal
	Err     error // the rate could not be resolved, Value is zero
}

// Valuation is the value of a whole portfolio in Base.
type Valuation struct {
	Base  string
	Lines []ValuationLine
	Total decimal.Decimal
}

// Value converts every wallet into base using the live rates of r.
// Wallets without a usable rate are reported in their line and left out of
// the total.
func (p *Portfolio) Value(base string, r *Resolver) Valuation {
	v := Valuation{Base: canonical(base)}
	for _, w := range p.Wallets() {
		line := ValuationLine{Code: w.code, Balance: w.balance}
		q, err := r.Resolve(w.code, v.Base)
		if err != nil {
			line.Err = err
		} else {
			line.Rate = q.Rate
			line.Value = w.balance.Mul(q.Rate)
			v.Total = v.Total.Add(line.Value)
		}
		v.Lines = append(v.Lines, line)
	}
	return v
}
