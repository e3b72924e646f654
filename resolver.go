package valutatrade

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRatesTTL is the maximum age of the rate snapshot before lookups are refused.
const DefaultRatesTTL = 300 * time.Second

// Method tells how a Quote was obtained.
type Method int

const (
	Identity Method = iota // same currency on both sides
	Direct                 // FROM_TO was stored
	Inverse                // TO_FROM was stored and inverted
)

func (m Method) String() string {
	switch m {
	case Identity:
		return "identity"
	case Direct:
		return "direct"
	case Inverse:
		return "inverse"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Quote is a resolved rate: 1 From = Rate To, as of AsOf.
type Quote struct {
	From   string
	To     string
	Rate   decimal.Decimal
	AsOf   time.Time
	Method Method
}

// Resolver derives exchange rates from a RateStore.
//
// It only knows direct and inverse lookups: rates are never chained through
// a third currency.
type Resolver struct {
	store *RateStore
	ttl   time.Duration
	now   func() time.Time
}

// NewResolver returns a resolver over store refusing snapshots older than ttl.
// now may be nil for time.Now.
func NewResolver(store *RateStore, ttl time.Duration, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{store: store, ttl: ttl, now: now}
}

// Resolve returns the rate converting from into to.
func (r *Resolver) Resolve(from, to string) (Quote, error) {
	from, to = canonical(from), canonical(to)
	if from == to {
		return Quote{From: from, To: to, Rate: decimal.NewFromInt(1), AsOf: r.store.LastRefresh(), Method: Identity}, nil
	}

	// Freshness is a property of the snapshot, not of a pair.
	if r.store.IsStale(r.now(), r.ttl) {
		return Quote{}, r.staleError()
	}

	if q, ok := r.lookupDirect(from, to); ok {
		return q, nil
	}
	q, ok, err := r.lookupInverse(from, to)
	if err != nil {
		return Quote{}, err
	}
	if ok {
		return q, nil
	}
	return Quote{}, fmt.Errorf("%w: no direct or inverse rate for %s→%s", ErrRateNotFound, from, to)
}

func (r *Resolver) staleError() error {
	last := r.store.LastRefresh()
	if last.IsZero() {
		return fmt.Errorf("%w: rates were never refreshed", ErrStaleRates)
	}
	return fmt.Errorf("%w: last refresh %s is older than %s", ErrStaleRates, last.Format(time.RFC3339), r.ttl)
}

func (r *Resolver) lookupDirect(from, to string) (Quote, bool) {
	p, ok := r.store.Get(from, to)
	if !ok {
		return Quote{}, false
	}
	return Quote{From: from, To: to, Rate: p.Rate, AsOf: p.ObservedAt, Method: Direct}, true
}

func (r *Resolver) lookupInverse(from, to string) (Quote, bool, error) {
	p, ok := r.store.Get(to, from)
	if !ok {
		return Quote{}, false, nil
	}
	if p.Rate.IsZero() {
		return Quote{}, false, fmt.Errorf("%w: stored rate %s is zero", ErrInvalidRate, p.Key())
	}
	rate := decimal.NewFromInt(1).Div(p.Rate)
	return Quote{From: from, To: to, Rate: rate, AsOf: p.ObservedAt, Method: Inverse}, true, nil
}
