package valutatrade

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PairKey returns the "FROM_TO" key naming a directional rate.
func PairKey(from, to string) string { return canonical(from) + "_" + canonical(to) }

// SplitPairKey is the inverse of PairKey.
func SplitPairKey(key string) (from, to string, err error) {
	from, to, ok := strings.Cut(key, "_")
	if !ok || from == "" || to == "" || strings.Contains(to, "_") {
		return "", "", fmt.Errorf("invalid pair key %q, want FROM_TO", key)
	}
	return canonical(from), canonical(to), nil
}

// RatePair is one observed rate: 1 From = Rate To.
type RatePair struct {
	From       string
	To         string
	Rate       decimal.Decimal
	ObservedAt time.Time
	Source     string
}

// Key returns the pair key of p.
func (p RatePair) Key() string { return PairKey(p.From, p.To) }

// RateStore holds the latest snapshot of observed rates.
//
// The snapshot is only ever replaced as a whole: a refresh is not a merge.
type RateStore struct {
	pairs       map[string]RatePair
	lastRefresh time.Time
}

// NewRateStore returns a store holding pairs, refreshed at lastRefresh.
// A zero lastRefresh means the store was never refreshed.
func NewRateStore(pairs []RatePair, lastRefresh time.Time) *RateStore {
	s := &RateStore{pairs: make(map[string]RatePair)}
	s.ReplaceAll(pairs, lastRefresh)
	return s
}

// Get returns the pair stored for the ordered (from, to) codes.
func (s *RateStore) Get(from, to string) (RatePair, bool) {
	p, ok := s.pairs[PairKey(from, to)]
	return p, ok
}

// IsStale reports whether the snapshot is older than ttl at now.
func (s *RateStore) IsStale(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.lastRefresh) > ttl
}

// ReplaceAll overwrites the whole snapshot.
func (s *RateStore) ReplaceAll(pairs []RatePair, refreshedAt time.Time) {
	next := make(map[string]RatePair, len(pairs))
	for _, p := range pairs {
		p.From, p.To = canonical(p.From), canonical(p.To)
		next[p.Key()] = p
	}
	s.pairs = next
	s.lastRefresh = refreshedAt
}

func (s *RateStore) LastRefresh() time.Time { return s.lastRefresh }
func (s *RateStore) Len() int               { return len(s.pairs) }

// Pairs returns all pairs sorted by key.
func (s *RateStore) Pairs() []RatePair {
	list := make([]RatePair, 0, len(s.pairs))
	for _, p := range s.pairs {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key() < list[j].Key() })
	return list
}

// RateFilter selects pairs from a store for display.
type RateFilter struct {
	Base     string // only pairs quoted in Base, all when empty
	Currency string // only pairs for this From currency, all when empty
	Top      int    // keep the Top highest rates, sorted by rate, when positive
}

// Select returns the pairs matching f. Without Top they are sorted by key.
func (s *RateStore) Select(f RateFilter) []RatePair {
	base, cur := canonical(f.Base), canonical(f.Currency)
	var list []RatePair
	for _, p := range s.Pairs() {
		if base != "" && p.To != base {
			continue
		}
		if cur != "" && p.From != cur {
			continue
		}
		list = append(list, p)
	}
	if f.Top > 0 {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Rate.GreaterThan(list[j].Rate) })
		if len(list) > f.Top {
			list = list[:f.Top]
		}
	}
	return list
}

// HistoryRecord is one append-only audit entry, written per pair per refresh.
type HistoryRecord struct {
	ID        string
	From      string
	To        string
	Rate      decimal.Decimal
	Timestamp time.Time
	Source    string
	RunID     string
}

// NewHistoryRecord returns the record for p observed during run.
func NewHistoryRecord(p RatePair, runID string) HistoryRecord {
	return HistoryRecord{
		ID:        p.Key() + "_" + p.ObservedAt.UTC().Format(time.RFC3339Nano),
		From:      p.From,
		To:        p.To,
		Rate:      p.Rate,
		Timestamp: p.ObservedAt,
		Source:    p.Source,
		RunID:     runID,
	}
}
