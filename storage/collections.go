package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutatrade"
)

// to read and write json files, dedicated local structs with tag annotations
// mirror the domain types.

type juser struct {
	UserID           int       `json:"user_id"`
	Username         string    `json:"username"`
	HashedPassword   string    `json:"hashed_password"`
	RegistrationDate time.Time `json:"registration_date"`
}

type jwallet struct {
	CurrencyCode string      `json:"currency_code"`
	Balance      json.Number `json:"balance"`
}

type jportfolio struct {
	UserID  int                `json:"user_id"`
	Wallets map[string]jwallet `json:"wallets"`
}

type jrate struct {
	Rate      json.Number `json:"rate"`
	UpdatedAt time.Time   `json:"updated_at"`
	Source    string      `json:"source"`
}

type jrates struct {
	Pairs       map[string]jrate `json:"pairs"`
	LastRefresh *time.Time       `json:"last_refresh,omitempty"`
}

type jhistory struct {
	ID           string      `json:"id"`
	FromCurrency string      `json:"from_currency"`
	ToCurrency   string      `json:"to_currency"`
	Rate         json.Number `json:"rate"`
	Timestamp    time.Time   `json:"timestamp"`
	Source       string      `json:"source"`
	RunID        string      `json:"run_id,omitempty"`
}

// number keeps every digit of d in the json file.
func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

func parseNumber(filename, field string, n json.Number) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("format error %q: %s %q is not a number: %w", filename, field, n, err)
	}
	return d, nil
}

// LoadUsers returns all registered users.
func (s *FileStore) LoadUsers() ([]*valutatrade.User, error) {
	var list []juser
	if _, err := s.readJSON(usersFilename, &list); err != nil {
		return nil, err
	}
	users := make([]*valutatrade.User, 0, len(list))
	for _, ju := range list {
		users = append(users, &valutatrade.User{
			ID:           ju.UserID,
			Username:     ju.Username,
			PasswordHash: ju.HashedPassword,
			RegisteredAt: ju.RegistrationDate,
		})
	}
	return users, nil
}

// SaveUsers rewrites the users file.
func (s *FileStore) SaveUsers(users []*valutatrade.User) error {
	list := make([]juser, 0, len(users))
	for _, u := range users {
		list = append(list, juser{
			UserID:           u.ID,
			Username:         u.Username,
			HashedPassword:   u.PasswordHash,
			RegistrationDate: u.RegisteredAt,
		})
	}
	return s.writeJSON(usersFilename, list)
}

// LoadPortfolios returns the portfolios of all users.
func (s *FileStore) LoadPortfolios() ([]*valutatrade.Portfolio, error) {
	var list []jportfolio
	if _, err := s.readJSON(portfoliosFilename, &list); err != nil {
		return nil, err
	}
	portfolios := make([]*valutatrade.Portfolio, 0, len(list))
	for _, jp := range list {
		wallets := make([]*valutatrade.Wallet, 0, len(jp.Wallets))
		for code, jw := range jp.Wallets {
			if jw.CurrencyCode != "" {
				code = jw.CurrencyCode
			}
			balance, err := parseNumber(portfoliosFilename, "balance", jw.Balance)
			if err != nil {
				return nil, err
			}
			w, err := valutatrade.NewWallet(code, balance)
			if err != nil {
				return nil, fmt.Errorf("format error %q: user %d: %w", portfoliosFilename, jp.UserID, err)
			}
			wallets = append(wallets, w)
		}
		portfolios = append(portfolios, valutatrade.NewPortfolio(jp.UserID, wallets...))
	}
	return portfolios, nil
}

// SavePortfolios rewrites the portfolios file.
func (s *FileStore) SavePortfolios(portfolios []*valutatrade.Portfolio) error {
	list := make([]jportfolio, 0, len(portfolios))
	for _, p := range portfolios {
		jp := jportfolio{UserID: p.UserID(), Wallets: make(map[string]jwallet)}
		for _, w := range p.Wallets() {
			jp.Wallets[w.Code()] = jwallet{CurrencyCode: w.Code(), Balance: number(w.Balance())}
		}
		list = append(list, jp)
	}
	return s.writeJSON(portfoliosFilename, list)
}

// LoadRates returns the rate snapshot. A missing file is a store that was
// never refreshed.
func (s *FileStore) LoadRates() (*valutatrade.RateStore, error) {
	var jr jrates
	if _, err := s.readJSON(ratesFilename, &jr); err != nil {
		return nil, err
	}
	pairs := make([]valutatrade.RatePair, 0, len(jr.Pairs))
	for key, r := range jr.Pairs {
		from, to, err := valutatrade.SplitPairKey(key)
		if err != nil {
			return nil, fmt.Errorf("format error %q: %w", ratesFilename, err)
		}
		rate, err := parseNumber(ratesFilename, key, r.Rate)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, valutatrade.RatePair{From: from, To: to, Rate: rate, ObservedAt: r.UpdatedAt, Source: r.Source})
	}
	var last time.Time
	if jr.LastRefresh != nil {
		last = *jr.LastRefresh
	}
	return valutatrade.NewRateStore(pairs, last), nil
}

// SaveRates rewrites the rate snapshot.
func (s *FileStore) SaveRates(rates *valutatrade.RateStore) error {
	jr := jrates{Pairs: make(map[string]jrate, rates.Len())}
	for _, p := range rates.Pairs() {
		jr.Pairs[p.Key()] = jrate{Rate: number(p.Rate), UpdatedAt: p.ObservedAt, Source: p.Source}
	}
	if last := rates.LastRefresh(); !last.IsZero() {
		jr.LastRefresh = &last
	}
	return s.writeJSON(ratesFilename, jr)
}

// LoadHistory returns every history record in the order they were appended.
func (s *FileStore) LoadHistory() ([]valutatrade.HistoryRecord, error) {
	var list []jhistory
	if _, err := s.readJSON(historyFilename, &list); err != nil {
		return nil, err
	}
	records := make([]valutatrade.HistoryRecord, 0, len(list))
	for _, jh := range list {
		rate, err := parseNumber(historyFilename, jh.ID, jh.Rate)
		if err != nil {
			return nil, err
		}
		records = append(records, valutatrade.HistoryRecord{
			ID:        jh.ID,
			From:      jh.FromCurrency,
			To:        jh.ToCurrency,
			Rate:      rate,
			Timestamp: jh.Timestamp,
			Source:    jh.Source,
			RunID:     jh.RunID,
		})
	}
	return records, nil
}

// AppendHistory adds records at the end of the history file. Existing
// records are never rewritten in a different form.
func (s *FileStore) AppendHistory(records []valutatrade.HistoryRecord) error {
	var list []json.RawMessage
	if _, err := s.readJSON(historyFilename, &list); err != nil {
		return err
	}
	for _, r := range records {
		data, err := json.Marshal(jhistory{
			ID:           r.ID,
			FromCurrency: r.From,
			ToCurrency:   r.To,
			Rate:         number(r.Rate),
			Timestamp:    r.Timestamp,
			Source:       r.Source,
			RunID:        r.RunID,
		})
		if err != nil {
			return fmt.Errorf("persist error: cannot encode history record %q: %w", r.ID, err)
		}
		list = append(list, data)
	}
	return s.writeJSON(historyFilename, list)
}
