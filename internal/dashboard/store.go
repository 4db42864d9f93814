package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/sells-group/aq-dashboard/internal/figure"
	"github.com/sells-group/aq-dashboard/internal/observability"
)

// FigureStore is a concurrent-safe LRU of retained detail figures with an
// idle TTL. Figures are copied in and out, so callers never share state.
type FigureStore struct {
	mu         sync.Mutex
	entries    map[string]*storeEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	hits       atomic.Int64
	misses     atomic.Int64
}

type storeEntry struct {
	fig      *figure.Figure
	lastSeen time.Time
}

// StoreOptions configures a FigureStore.
type StoreOptions struct {
	MaxEntries int
	TTL        time.Duration
	Clock      clockwork.Clock
	Metrics    *observability.Metrics
}

// StoreStats contains store performance statistics.
type StoreStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewFigureStore creates a FigureStore. Zero options fall back to 256
// entries, a 30 minute TTL and the real clock.
func NewFigureStore(opts StoreOptions) *FigureStore {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 256
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	return &FigureStore{
		entries:    make(map[string]*storeEntry),
		maxEntries: opts.MaxEntries,
		ttl:        opts.TTL,
		clock:      opts.Clock,
		metrics:    opts.Metrics,
	}
}

// Put retains a copy of fig and returns its id.
func (s *FigureStore) Put(fig *figure.Figure) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Evict from front if at capacity.
	for len(s.entries) >= s.maxEntries && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
		s.metrics.FigureStore.WithLabelValues("evicted").Inc()
	}

	s.entries[id] = &storeEntry{fig: fig.Clone(), lastSeen: s.clock.Now()}
	s.order = append(s.order, id)
	s.metrics.FigureStoreSize.Set(float64(len(s.entries)))
	return id
}

// Get returns a copy of the figure stored under id. A hit refreshes the
// entry's TTL and LRU position.
func (s *FigureStore) Get(id string) (*figure.Figure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		s.miss("miss")
		return nil, false
	}

	now := s.clock.Now()
	if now.Sub(entry.lastSeen) > s.ttl {
		delete(s.entries, id)
		s.removeFromOrder(id)
		s.metrics.FigureStoreSize.Set(float64(len(s.entries)))
		s.miss("expired")
		return nil, false
	}

	entry.lastSeen = now
	s.removeFromOrder(id)
	s.order = append(s.order, id)
	s.hits.Add(1)
	s.metrics.FigureStore.WithLabelValues("hit").Inc()
	return entry.fig.Clone(), true
}

func (s *FigureStore) miss(result string) {
	s.misses.Add(1)
	s.metrics.FigureStore.WithLabelValues(result).Inc()
}

// Purge drops every expired entry and returns how many were removed.
func (s *FigureStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var remaining []string
	removed := 0
	for _, id := range s.order {
		if now.Sub(s.entries[id].lastSeen) > s.ttl {
			delete(s.entries, id)
			removed++
			continue
		}
		remaining = append(remaining, id)
	}
	s.order = remaining
	if removed > 0 {
		s.metrics.FigureStore.WithLabelValues("expired").Add(float64(removed))
		s.metrics.FigureStoreSize.Set(float64(len(s.entries)))
	}
	return removed
}

// RunJanitor purges expired entries every interval until ctx is done.
func (s *FigureStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Purge()
		}
	}
}

// Len returns the number of retained figures, expired ones included until
// they are touched or purged.
func (s *FigureStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns store performance statistics.
func (s *FigureStore) Stats() StoreStats {
	s.mu.Lock()
	entries := len(s.entries)
	s.mu.Unlock()

	hits := s.hits.Load()
	misses := s.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return StoreStats{
		Entries:    entries,
		MaxEntries: s.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

// removeFromOrder removes an id from the LRU order slice.
func (s *FigureStore) removeFromOrder(id string) {
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
