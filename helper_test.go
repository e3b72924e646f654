package valutatrade

import (
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	// hashing at the default cost makes the suite slow
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

var testNow = time.Date(2025, 10, 9, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// memStore is a Store kept in memory. Saves replace the collections like
// the file store does.
type memStore struct {
	users      []*User
	portfolios []*Portfolio
	rates      *RateStore
	session    int
	loggedIn   bool

	saves   int
	failure error // returned by every save when set
}

func newMemStore(pairs ...RatePair) *memStore {
	return &memStore{rates: NewRateStore(pairs, testNow)}
}

func (s *memStore) LoadUsers() ([]*User, error) { return append([]*User(nil), s.users...), nil }
func (s *memStore) SaveUsers(u []*User) error {
	if s.failure != nil {
		return s.failure
	}
	s.saves++
	s.users = u
	return nil
}

func (s *memStore) LoadPortfolios() ([]*Portfolio, error) {
	out := make([]*Portfolio, 0, len(s.portfolios))
	for _, p := range s.portfolios {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *memStore) SavePortfolios(p []*Portfolio) error {
	if s.failure != nil {
		return s.failure
	}
	s.saves++
	s.portfolios = p
	return nil
}

func (s *memStore) LoadRates() (*RateStore, error) { return s.rates, nil }

func (s *memStore) CurrentUserID() (int, bool, error) { return s.session, s.loggedIn, nil }
func (s *memStore) SetCurrentUser(id int) error {
	s.session, s.loggedIn = id, true
	return nil
}
func (s *memStore) Logout() error {
	s.loggedIn = false
	return nil
}
