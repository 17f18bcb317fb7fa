package catalog

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/pders01/uriel/internal/debuglog"
)

// Remote is the catalog service as the store consumes it.
type Remote interface {
	List(ctx context.Context, params url.Values) ([]MediaItem, error)
	Create(ctx context.Context, draft Draft) error
	IncrementDownload(ctx context.Context, id ItemID) (DownloadResult, error)
}

// DownloadFailurePolicy decides what happens to an optimistic increment
// when the download call fails.
type DownloadFailurePolicy int

const (
	// KeepOptimistic leaves the +1 in place; a clicked download is never
	// visibly undone.
	KeepOptimistic DownloadFailurePolicy = iota
	// RollbackOptimistic removes the +1 again. Counts then reflect the
	// service more closely at the cost of a visible decrement.
	RollbackOptimistic
)

// DefaultDownloadFailurePolicy is the policy used unless configured.
const DefaultDownloadFailurePolicy = KeepOptimistic

// RefreshOrdering decides which of several overlapping refreshes lands.
type RefreshOrdering int

const (
	// LastResponseWins applies every response in arrival order, so the
	// slowest in-flight refresh decides the final list.
	LastResponseWins RefreshOrdering = iota
	// LatestRequestWins drops responses to requests that were superseded
	// by a newer refresh before they arrived.
	LatestRequestWins
)

// Snapshot is a consistent copy of the store state.
type Snapshot struct {
	Items   []MediaItem
	Loading bool
	Filter  FilterState
	Version uint64
}

// Option configures a Store.
type Option func(*Store)

// WithDownloadFailurePolicy sets the policy applied when a download call fails.
func WithDownloadFailurePolicy(p DownloadFailurePolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithRefreshOrdering sets how overlapping refreshes are resolved.
func WithRefreshOrdering(o RefreshOrdering) Option {
	return func(s *Store) { s.ordering = o }
}

// WithSeeder sets the routine and drafts used by SeedIfEmpty.
func WithSeeder(seeder *Seeder, drafts []Draft) Option {
	return func(s *Store) {
		s.seeder = seeder
		s.samples = append([]Draft(nil), drafts...)
	}
}

// WithChangeHook registers fn to run after every state change. It is
// called outside the store lock.
func WithChangeHook(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// Store holds the last fetched catalog, the view filter and any pending
// optimistic download increments. All mutations go through Refresh and
// ApplyDownload; readers always get copies.
type Store struct {
	remote   Remote
	seeder   *Seeder
	samples  []Draft
	policy   DownloadFailurePolicy
	ordering RefreshOrdering
	onChange func()

	mu      sync.RWMutex
	items   []MediaItem
	loading bool
	filter  FilterState
	issued  uint64 // refresh requests started
	version uint64
}

// NewStore creates an empty store backed by remote.
func NewStore(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote:   remote,
		policy:   DefaultDownloadFailurePolicy,
		ordering: LastResponseWins,
		filter:   FilterState{Tab: TabAll},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seeder == nil {
		s.seeder = NewSeeder(remote, 1)
	}
	return s
}

// Items returns a copy of the held list in server order.
func (s *Store) Items() []MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Loading reports whether a refresh is outstanding.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Filter returns the current view filter.
func (s *Store) Filter() FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Snapshot returns items, loading flag and filter read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Items:   cloneItems(s.items),
		Loading: s.loading,
		Filter:  s.filter,
		Version: s.version,
	}
}

// View projects the held items through the current filter.
func (s *Store) View() []MediaItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Project(s.items, s.filter)
}

// SetFilter replaces the view filter. It never triggers a fetch.
func (s *Store) SetFilter(f FilterState) {
	if f.Tab == "" {
		f.Tab = TabAll
	}
	s.mu.Lock()
	s.filter = f
	s.version++
	s.mu.Unlock()
	s.notify()
}

// SetTab changes the active tab, keeping the search text.
func (s *Store) SetTab(tab Tab) {
	f := s.Filter()
	f.Tab = tab
	s.SetFilter(f)
}

// SetSearchText changes the search text, keeping the tab.
func (s *Store) SetSearchText(text string) {
	f := s.Filter()
	f.SearchText = text
	s.SetFilter(f)
}

// Refresh fetches the catalog for f and replaces the held list with the
// result. On failure the list becomes empty and the error, which wraps
// ErrFetchFailed, is returned for reporting only.
//
// Overlapping refreshes are resolved by the configured RefreshOrdering.
// With LastResponseWins each completion also clears the loading flag.
func (s *Store) Refresh(ctx context.Context, f FilterState) error {
	params := BuildParams(f)

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.loading = true
	s.version++
	s.mu.Unlock()
	s.notify()

	log := debuglog.WithFields(map[string]interface{}{
		"op":     "list",
		"params": params.Encode(),
		"seq":    seq,
	})

	items, err := s.remote.List(ctx, params)
	if err != nil {
		err = wrapKind(ErrFetchFailed, err)
		log.Errorf("catalog refresh failed: %v", err)
		items = nil
	}
	items = uniqueByID(items)

	s.mu.Lock()
	if s.ordering == LatestRequestWins && seq < s.issued {
		s.mu.Unlock()
		log.Debugf("dropping superseded refresh response")
		return err
	}
	s.items = items
	s.loading = false
	s.version++
	s.mu.Unlock()
	s.notify()

	if err == nil {
		log.Debugf("catalog refreshed with %d items", len(items))
	}
	return err
}

// ApplyDownload records a download of id in two phases. The held counter
// is incremented immediately; once the service answers, its counter
// replaces the optimistic one. A failed call leaves the optimistic value
// unless the store was built with RollbackOptimistic. Unknown ids are not
// patched but the service is still asked to count the download.
func (s *Store) ApplyDownload(ctx context.Context, id ItemID) error {
	optimistic := s.patch(id, func(m *MediaItem) { m.Downloads++ })

	log := debuglog.WithFields(map[string]interface{}{
		"op": "download",
		"id": id,
	})

	res, err := s.remote.IncrementDownload(ctx, id)
	if err != nil {
		err = wrapKind(ErrDownloadFailed, err)
		log.Warnf("download not recorded by service: %v", err)
		if optimistic && s.policy == RollbackOptimistic {
			s.patch(id, func(m *MediaItem) {
				if m.Downloads > 0 {
					m.Downloads--
				}
			})
		}
		return err
	}

	if res.Downloads == nil {
		log.Debugf("service omitted downloads; keeping local count")
		return nil
	}
	authoritative := *res.Downloads
	s.patch(id, func(m *MediaItem) {
		// A slower response to an earlier click may carry a smaller
		// count than later optimistic increments; counts never go down.
		if authoritative > m.Downloads {
			m.Downloads = authoritative
		}
	})
	return nil
}

// SeedIfEmpty runs the seeding routine only when the current view is
// empty, then refreshes once with the current filter whatever the
// individual creates did.
func (s *Store) SeedIfEmpty(ctx context.Context) (SeedReport, error) {
	if len(s.View()) > 0 {
		return SeedReport{Skipped: true}, nil
	}
	return s.Seed(ctx)
}

// Seed runs the seeding routine without the emptiness gate and refreshes
// afterwards.
func (s *Store) Seed(ctx context.Context) (SeedReport, error) {
	report := s.seeder.Seed(ctx, s.samples)
	debuglog.WithFields(map[string]interface{}{
		"op":        "seed",
		"attempted": report.Attempted,
		"created":   report.Created,
	}).Infof("seeding finished")
	return report, s.Refresh(ctx, s.Filter())
}

// patch applies fn to the item with id under the write lock and reports
// whether such an item was held.
func (s *Store) patch(id ItemID, fn func(*MediaItem)) bool {
	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ID == id {
			fn(&s.items[i])
			found = true
			break
		}
	}
	if found {
		s.version++
	}
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return found
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// uniqueByID keeps the first occurrence of every id and normalises
// negative counters.
func uniqueByID(items []MediaItem) []MediaItem {
	if len(items) == 0 {
		return []MediaItem{}
	}
	seen := make(map[ItemID]struct{}, len(items))
	out := make([]MediaItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			debuglog.Warnf("duplicate item id %q in listing ignored", item.ID)
			continue
		}
		seen[item.ID] = struct{}{}
		if item.Downloads < 0 {
			item.Downloads = 0
		}
		out = append(out, cloneItem(item))
	}
	return out
}

// ParseDownloadFailurePolicy maps the configuration value to a policy.
// The empty string selects the default.
func ParseDownloadFailurePolicy(s string) (DownloadFailurePolicy, error) {
	switch s {
	case "", "keep":
		return KeepOptimistic, nil
	case "rollback":
		return RollbackOptimistic, nil
	default:
		return DefaultDownloadFailurePolicy, fmt.Errorf("unknown download failure policy %q", s)
	}
}

// ParseRefreshOrdering maps the configuration value to an ordering.
func ParseRefreshOrdering(s string) (RefreshOrdering, error) {
	switch s {
	case "", "last_response":
		return LastResponseWins, nil
	case "latest_request":
		return LatestRequestWins, nil
	default:
		return LastResponseWins, fmt.Errorf("unknown refresh ordering %q", s)
	}
}
