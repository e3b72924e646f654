package valutatrade

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine(t *testing.T, s *memStore, opts ...Option) *Engine {
	t.Helper()
	return NewEngine(s, append([]Option{WithClock(fixedClock)}, opts...)...)
}

// registered returns an engine with alice logged in.
func registered(t *testing.T, s *memStore, opts ...Option) (*Engine, *User) {
	t.Helper()
	e := newTestEngine(t, s, opts...)
	if _, err := e.Register("alice", "1234"); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	u, err := e.Login("alice", "1234")
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	return e, u
}

func balanceOf(t *testing.T, e *Engine, u *User, code string) decimal.Decimal {
	t.Helper()
	p, err := e.Portfolio(u)
	if err != nil {
		t.Fatalf("Portfolio() unexpected error: %v", err)
	}
	w, err := p.Wallet(code)
	if err != nil {
		t.Fatalf("Wallet(%s) unexpected error: %v", code, err)
	}
	return w.Balance()
}

func btcStore() *memStore {
	return newMemStore(RatePair{From: "BTC", To: "USD", Rate: D(60000), ObservedAt: testNow, Source: "CoinGecko"})
}

func TestRegister(t *testing.T) {
	s := btcStore()
	e := newTestEngine(t, s)
	alice, err := e.Register("alice", "1234")
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	bob, err := e.Register("bob", "abcd")
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if alice.ID != 1 || bob.ID != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", alice.ID, bob.ID)
	}
	if alice.PasswordHash == "1234" || !alice.VerifyPassword("1234") {
		t.Error("password is not hashed or does not verify")
	}
	if got := balanceOf(t, e, bob, "USD"); !got.Equal(D(10000)) {
		t.Errorf("starting balance = %s, want 10000", got)
	}

	tests := []struct {
		username, password string
		want               error
	}{
		{"alice", "5678", ErrUsernameTaken},
		{"carol", "123", nil},
		{"  ", "1234", nil},
	}
	for _, tt := range tests {
		_, err := e.Register(tt.username, tt.password)
		if err == nil {
			t.Errorf("Register(%q, %q): want error, got nil", tt.username, tt.password)
			continue
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("Register(%q) error = %v, want %v", tt.username, err, tt.want)
		}
	}
}

func TestLogin(t *testing.T) {
	s := btcStore()
	e := newTestEngine(t, s)
	if _, err := e.CurrentUser(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("CurrentUser() before login error = %v, want ErrNotLoggedIn", err)
	}
	if _, err := e.Register("alice", "1234"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Login("bob", "1234"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Login(bob) error = %v, want ErrUserNotFound", err)
	}
	if _, err := e.Login("alice", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Login(alice, wrong) error = %v, want ErrInvalidPassword", err)
	}
	if _, err := e.Login("alice", "1234"); err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	u, err := e.CurrentUser()
	if err != nil || u.Username != "alice" {
		t.Errorf("CurrentUser() = %v, %v, want alice", u, err)
	}
	if err := e.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CurrentUser(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("CurrentUser() after logout error = %v, want ErrNotLoggedIn", err)
	}
}

func TestBuySellRoundTrip(t *testing.T) {
	s := btcStore()
	e, u := registered(t, s)

	r, err := e.Buy(u, "btc", decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatalf("Buy() unexpected error: %v", err)
	}
	if !r.Total.Equal(D(6000)) || !r.Rate.Equal(D(60000)) || r.Currency != "BTC" || r.Base != "USD" {
		t.Errorf("Buy() receipt = %+v, want 6000 USD at 60000", r)
	}
	if !r.OldBaseBalance.Equal(D(10000)) || !r.NewBaseBalance.Equal(D(4000)) {
		t.Errorf("Buy() base balances = %s -> %s, want 10000 -> 4000", r.OldBaseBalance, r.NewBaseBalance)
	}
	if got := balanceOf(t, e, u, "USD"); !got.Equal(D(4000)) {
		t.Errorf("USD balance = %s, want 4000", got)
	}
	if got := balanceOf(t, e, u, "BTC"); !got.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("BTC balance = %s, want 0.1", got)
	}

	r, err = e.Sell(u, "BTC", decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatalf("Sell() unexpected error: %v", err)
	}
	if !r.Total.Equal(D(6000)) {
		t.Errorf("Sell() revenue = %s, want 6000", r.Total)
	}
	if got := balanceOf(t, e, u, "USD"); !got.Equal(D(10000)) {
		t.Errorf("USD balance after round trip = %s, want 10000", got)
	}
	if got := balanceOf(t, e, u, "BTC"); !got.IsZero() {
		t.Errorf("BTC balance after round trip = %s, want 0", got)
	}
}

func TestTradeValidation(t *testing.T) {
	tests := []struct {
		name   string
		side   Side
		code   string
		amount string
		want   error
	}{
		{"zero amount", Buy, "BTC", "0", ErrInvalidAmount},
		{"negative amount", Sell, "BTC", "-1", ErrInvalidAmount},
		{"unknown currency", Buy, "XYZ", "1", ErrCurrencyNotFound},
		{"base currency", Buy, "usd", "1", ErrInvalidOperation},
		{"sell base currency", Sell, "USD", "1", ErrInvalidOperation},
		{"sell without wallet", Sell, "BTC", "0.1", ErrWalletNotFound},
		{"no rate", Buy, "ETH", "1", ErrRateNotFound},
		{"too expensive", Buy, "BTC", "1", ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := btcStore()
			e, u := registered(t, s)
			saves := s.saves

			var err error
			if tt.side == Buy {
				_, err = e.Buy(u, tt.code, decimal.RequireFromString(tt.amount))
			} else {
				_, err = e.Sell(u, tt.code, decimal.RequireFromString(tt.amount))
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("%s(%s, %s) error = %v, want %v", tt.side, tt.code, tt.amount, err, tt.want)
			}
			if s.saves != saves {
				t.Errorf("a failed trade saved the store")
			}
			if got := balanceOf(t, e, u, "USD"); !got.Equal(D(10000)) {
				t.Errorf("USD balance = %s after a failed trade, want 10000", got)
			}
		})
	}
}

func TestSellMoreThanHeld(t *testing.T) {
	s := btcStore()
	e, u := registered(t, s)
	if _, err := e.Buy(u, "BTC", decimal.RequireFromString("0.1")); err != nil {
		t.Fatal(err)
	}
	_, err := e.Sell(u, "BTC", decimal.RequireFromString("0.2"))
	var ife *InsufficientFundsError
	if !errors.As(err, &ife) {
		t.Fatalf("Sell() error = %v, want *InsufficientFundsError", err)
	}
	if ife.Code != "BTC" || !ife.Available.Equal(decimal.RequireFromString("0.1")) || !ife.Required.Equal(decimal.RequireFromString("0.2")) {
		t.Errorf("Sell() error = %+v, want available 0.1 required 0.2 BTC", ife)
	}
}

func TestTradeStaleRates(t *testing.T) {
	s := btcStore()
	e, u := registered(t, s, WithClock(func() time.Time { return testNow.Add(time.Hour) }))
	if _, err := e.Buy(u, "BTC", decimal.RequireFromString("0.1")); !errors.Is(err, ErrStaleRates) {
		t.Errorf("Buy() with stale rates error = %v, want ErrStaleRates", err)
	}
}

func TestTradePersistFailure(t *testing.T) {
	s := btcStore()
	e, u := registered(t, s)
	s.failure = errors.New("disk full")
	if _, err := e.Buy(u, "BTC", decimal.RequireFromString("0.1")); err == nil {
		t.Fatal("Buy() with a failing store: want error, got nil")
	}
	s.failure = nil
	if got := balanceOf(t, e, u, "USD"); !got.Equal(D(10000)) {
		t.Errorf("USD balance = %s after a failed save, want 10000", got)
	}
}

func TestRate(t *testing.T) {
	e := newTestEngine(t, btcStore())
	q, err := e.Rate("USD", "BTC")
	if err != nil {
		t.Fatalf("Rate() unexpected error: %v", err)
	}
	if q.Method != Inverse || !q.Rate.Mul(D(60000)).Round(8).Equal(D(1)) {
		t.Errorf("Rate(USD, BTC) = %s (%s), want 1/60000 inverse", q.Rate, q.Method)
	}
	if _, err := e.Rate("USD", "XYZ"); !errors.Is(err, ErrCurrencyNotFound) {
		t.Errorf("Rate(USD, XYZ) error = %v, want ErrCurrencyNotFound", err)
	}
}

func TestValuation(t *testing.T) {
	s := btcStore()
	e, u := registered(t, s)
	if _, err := e.Buy(u, "BTC", decimal.RequireFromString("0.1")); err != nil {
		t.Fatal(err)
	}
	v, err := e.Valuation(u, "USD")
	if err != nil {
		t.Fatalf("Valuation() unexpected error: %v", err)
	}
	if !v.Total.Equal(D(10000)) {
		t.Errorf("Valuation().Total = %s, want 10000", v.Total)
	}
	if _, err := e.Valuation(u, "XYZ"); !errors.Is(err, ErrCurrencyNotFound) {
		t.Errorf("Valuation(XYZ) error = %v, want ErrCurrencyNotFound", err)
	}
}

func TestActionLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := btcStore()
	e, u := registered(t, s, WithLogger(zap.New(core)))

	e.Buy(u, "BTC", decimal.RequireFromString("0.1"))
	e.Buy(u, "BTC", D(1))

	finished := logs.FilterMessage("FINISH BUY").All()
	if len(finished) != 2 {
		t.Fatalf("got %d FINISH BUY lines, want 2", len(finished))
	}
	ok := finished[0].ContextMap()
	if ok["result"] != "OK" || ok["rate"] != "60000.00" || ok["base"] != "USD" || ok["username"] != "alice" {
		t.Errorf("successful buy logged %v", ok)
	}
	failed := finished[1].ContextMap()
	if failed["result"] != "ERROR" || failed["error_type"] != "InsufficientFunds" {
		t.Errorf("failed buy logged %v", failed)
	}
	if n := logs.FilterMessage("START BUY").Len(); n != 2 {
		t.Errorf("got %d START BUY lines, want 2", n)
	}
	if n := logs.FilterMessage("FINISH REGISTER").Len(); n != 1 {
		t.Errorf("got %d FINISH REGISTER lines, want 1", n)
	}
}
