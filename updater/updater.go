// Package updater refreshes the rate snapshot from a set of price feeds.
//
// A run fetches every selected source, merges what succeeded and replaces
// the snapshot as a whole. A failing source never aborts the run; its error
// is reported next to the pairs the others produced.
package updater

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valutatrade/valutatrade"
	"go.uber.org/zap"
)

// DefaultTimeout bounds the fetch of one source.
const DefaultTimeout = 10 * time.Second

// Source is a price feed.
type Source interface {
	// Name identifies the feed in reports and history records.
	Name() string
	// FetchRates returns rates keyed by pair key ("BTC_USD").
	FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Sink persists the outcome of a run.
type Sink interface {
	SaveRates(*valutatrade.RateStore) error
	AppendHistory([]valutatrade.HistoryRecord) error
}

// Updater coordinates sources, the in-memory snapshot and the sink.
type Updater struct {
	store   *valutatrade.RateStore
	sink    Sink
	sources []Source
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures an Updater.
type Option func(*Updater)

// WithTimeout sets the per source fetch timeout.
func WithTimeout(d time.Duration) Option { return func(u *Updater) { u.timeout = d } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(u *Updater) { u.now = now } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(u *Updater) { u.logger = l } }

// New returns an updater refreshing store from sources, in that order.
func New(store *valutatrade.RateStore, sink Sink, sources []Source, opts ...Option) *Updater {
	u := &Updater{
		store:   store,
		sink:    sink,
		sources: sources,
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// SourceFailure is a source that did not contribute to a run.
type SourceFailure struct {
	Source string
	Err    error
}

// Report describes one run.
type Report struct {
	RunID     string
	Timestamp time.Time
	Sources   []string // the selected sources
	Succeeded []string
	Failures  []SourceFailure
	Pairs     []valutatrade.RatePair // merged pairs sorted by key
	Empty     bool                   // nothing was fetched, the store was left untouched
}

// Err joins the failures of the run, or nil.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Source, f.Err))
	}
	return errors.Join(errs...)
}

// Select returns the sources whose name starts with filter, ignoring case.
// An empty filter selects them all.
func (u *Updater) Select(filter string) []Source {
	filter = strings.ToLower(strings.TrimSpace(filter))
	var selected []Source
	for _, s := range u.sources {
		if strings.HasPrefix(strings.ToLower(s.Name()), filter) {
			selected = append(selected, s)
		}
	}
	return selected
}

// Run refreshes the snapshot from the sources selected by filter.
// Only persistence errors are returned: source failures are in the report.
func (u *Updater) Run(ctx context.Context, filter string) (Report, error) {
	rep := Report{RunID: uuid.NewString(), Timestamp: u.now()}
	selected := u.Select(filter)
	if len(selected) == 0 {
		u.logger.Warn("no rate source matches", zap.String("filter", filter))
		rep.Empty = true
		return rep, nil
	}

	u.logger.Info("START UPDATE_RATES", zap.String("run_id", rep.RunID), zap.String("filter", filter))
	merged := make(map[string]valutatrade.RatePair)
	for _, src := range selected {
		rep.Sources = append(rep.Sources, src.Name())
		rates, err := u.fetch(ctx, src)
		if err != nil {
			u.logger.Error("rate source failed", zap.String("source", src.Name()), zap.Error(err))
			rep.Failures = append(rep.Failures, SourceFailure{Source: src.Name(), Err: err})
			continue
		}
		for key, rate := range rates {
			from, to, err := valutatrade.SplitPairKey(key)
			if err != nil {
				u.logger.Warn("ignoring rate", zap.String("source", src.Name()), zap.Error(err))
				continue
			}
			// later sources win on duplicate keys
			merged[valutatrade.PairKey(from, to)] = valutatrade.RatePair{
				From:       from,
				To:         to,
				Rate:       rate,
				ObservedAt: rep.Timestamp,
				Source:     src.Name(),
			}
		}
		rep.Succeeded = append(rep.Succeeded, src.Name())
		u.logger.Info("rate source fetched", zap.String("source", src.Name()), zap.Int("pairs", len(rates)))
	}

	for _, p := range merged {
		rep.Pairs = append(rep.Pairs, p)
	}
	sort.Slice(rep.Pairs, func(i, j int) bool { return rep.Pairs[i].Key() < rep.Pairs[j].Key() })

	if len(rep.Pairs) == 0 {
		rep.Empty = true
		u.logger.Warn("FINISH UPDATE_RATES", zap.String("run_id", rep.RunID), zap.String("result", "EMPTY"))
		return rep, nil
	}

	// the in-memory snapshot follows the file, never ahead of it
	next := valutatrade.NewRateStore(rep.Pairs, rep.Timestamp)
	if err := u.sink.SaveRates(next); err != nil {
		u.logger.Error("FINISH UPDATE_RATES", zap.String("run_id", rep.RunID), zap.String("result", "ERROR"), zap.Error(err))
		return rep, err
	}
	u.store.ReplaceAll(rep.Pairs, rep.Timestamp)
	records := make([]valutatrade.HistoryRecord, 0, len(rep.Pairs))
	for _, p := range rep.Pairs {
		records = append(records, valutatrade.NewHistoryRecord(p, rep.RunID))
	}
	if err := u.sink.AppendHistory(records); err != nil {
		u.logger.Error("FINISH UPDATE_RATES", zap.String("run_id", rep.RunID), zap.String("result", "ERROR"), zap.Error(err))
		return rep, err
	}

	u.logger.Info("FINISH UPDATE_RATES",
		zap.String("run_id", rep.RunID),
		zap.String("result", "OK"),
		zap.Int("pairs", len(rep.Pairs)),
		zap.Int("failures", len(rep.Failures)),
	)
	return rep, nil
}

func (u *Updater) fetch(ctx context.Context, src Source) (map[string]decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	return src.FetchRates(ctx)
}
