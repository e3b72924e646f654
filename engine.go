package valutatrade

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Every new user starts with this capital.
const (
	StartingCurrency = "USD"
	StartingBalance  = 10000
)

// DefaultBaseCurrency is the currency all trades settle against.
const DefaultBaseCurrency = "USD"

// Store is the persistence the Engine depends on. Every method works on a
// whole collection: loads return a snapshot, saves rewrite it.
type Store interface {
	LoadUsers() ([]*User, error)
	SaveUsers([]*User) error
	LoadPortfolios() ([]*Portfolio, error)
	SavePortfolios([]*Portfolio) error
	LoadRates() (*RateStore, error)

	// CurrentUserID returns false when nobody is logged in.
	CurrentUserID() (int, bool, error)
	SetCurrentUser(id int) error
	Logout() error
}

// Engine implements the use-cases: registration, session, rates and trades.
//
// Each call is one sequential pipeline: load, compute, mutate in memory,
// persist once. A failing call leaves the store untouched.
type Engine struct {
	store  Store
	base   string
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseCurrency sets the settlement currency.
func WithBaseCurrency(code string) Option { return func(e *Engine) { e.base = canonical(code) } }

// WithRatesTTL sets the maximum age of the rate snapshot.
func WithRatesTTL(ttl time.Duration) Option { return func(e *Engine) { e.ttl = ttl } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithLogger sets the action logger.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// NewEngine returns an engine over store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		base:   DefaultBaseCurrency,
		ttl:    DefaultRatesTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BaseCurrency returns the settlement currency.
func (e *Engine) BaseCurrency() string { return e.base }

// Register creates a user and its starting portfolio.
func (e *Engine) Register(username, password string) (*User, error) {
	fields := []zap.Field{zap.String("username", username)}
	return runAction(e.logger, "REGISTER", fields, func() (*User, error) {
		users, err := e.store.LoadUsers()
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(username)
		nextID := 1
		for _, u := range users {
			if u.Username == name {
				return nil, fmt.Errorf("%w: %q", ErrUsernameTaken, name)
			}
			if u.ID >= nextID {
				nextID = u.ID + 1
			}
		}

		user, err := NewUser(nextID, name, password, e.now())
		if err != nil {
			return nil, err
		}

		portfolios, err := e.store.LoadPortfolios()
		if err != nil {
			return nil, err
		}
		p := NewPortfolio(user.ID)
		if err := p.GetOrCreate(StartingCurrency).Deposit(decimal.NewFromInt(StartingBalance)); err != nil {
			return nil, err
		}

		if err := e.store.SaveUsers(append(users, user)); err != nil {
			return nil, err
		}
		if err := e.store.SavePortfolios(replacePortfolio(portfolios, p)); err != nil {
			return nil, err
		}
		return user, nil
	})
}

// Login checks the credentials and opens a session.
func (e *Engine) Login(username, password string) (*User, error) {
	fields := []zap.Field{zap.String("username", username)}
	return runAction(e.logger, "LOGIN", fields, func() (*User, error) {
		users, err := e.store.LoadUsers()
		if err != nil {
			return nil, err
		}
		user := findUser(users, func(u *User) bool { return u.Username == strings.TrimSpace(username) })
		if user == nil {
			return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
		}
		if !user.VerifyPassword(password) {
			return nil, ErrInvalidPassword
		}
		if err := e.store.SetCurrentUser(user.ID); err != nil {
			return nil, err
		}
		return user, nil
	})
}

// Logout closes the current session, if any.
func (e *Engine) Logout() error { return e.store.Logout() }

// CurrentUser returns the logged in user.
func (e *Engine) CurrentUser() (*User, error) {
	id, ok, err := e.store.CurrentUserID()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotLoggedIn
	}
	users, err := e.store.LoadUsers()
	if err != nil {
		return nil, err
	}
	user := findUser(users, func(u *User) bool { return u.ID == id })
	if user == nil {
		return nil, fmt.Errorf("%w: session user %d does not exist", ErrNotLoggedIn, id)
	}
	return user, nil
}

// Portfolio returns the portfolio of user.
func (e *Engine) Portfolio(user *User) (*Portfolio, error) {
	portfolios, err := e.store.LoadPortfolios()
	if err != nil {
		return nil, err
	}
	p, _ := findPortfolio(portfolios, user.ID)
	if p == nil {
		return nil, fmt.Errorf("%w: user %q", ErrPortfolioNotFound, user.Username)
	}
	return p, nil
}

// Valuation returns the value of the user's portfolio in base.
func (e *Engine) Valuation(user *User, base string) (Valuation, error) {
	if _, err := LookupCurrency(base); err != nil {
		return Valuation{}, err
	}
	p, err := e.Portfolio(user)
	if err != nil {
		return Valuation{}, err
	}
	resolver, err := e.resolver()
	if err != nil {
		return Valuation{}, err
	}
	return p.Value(base, resolver), nil
}

// Rate returns the current rate from one registered currency to another.
func (e *Engine) Rate(from, to string) (Quote, error) {
	if _, err := LookupCurrency(from); err != nil {
		return Quote{}, err
	}
	if _, err := LookupCurrency(to); err != nil {
		return Quote{}, err
	}
	resolver, err := e.resolver()
	if err != nil {
		return Quote{}, err
	}
	return resolver.Resolve(from, to)
}

// Rates returns the current rate snapshot.
func (e *Engine) Rates() (*RateStore, error) { return e.store.LoadRates() }

func (e *Engine) resolver() (*Resolver, error) {
	rates, err := e.store.LoadRates()
	if err != nil {
		return nil, err
	}
	return NewResolver(rates, e.ttl, e.now), nil
}

func findUser(users []*User, match func(*User) bool) *User {
	for _, u := range users {
		if match(u) {
			return u
		}
	}
	return nil
}

func findPortfolio(portfolios []*Portfolio, userID int) (*Portfolio, int) {
	for i, p := range portfolios {
		if p.userID == userID {
			return p, i
		}
	}
	return nil, -1
}

// replacePortfolio returns portfolios where p replaces the one of the same user.
func replacePortfolio(portfolios []*Portfolio, p *Portfolio) []*Portfolio {
	if _, i := findPortfolio(portfolios, p.userID); i >= 0 {
		out := append([]*Portfolio(nil), portfolios...)
		out[i] = p
		return out
	}
	return append(portfolios, p)
}
