package listing

import (
	"sync"
	"time"

	"buyer-lead-console/internal/filters"
	"buyer-lead-console/internal/models"
)

// FetchFunc loads one page of leads for a filter state
type FetchFunc func(state filters.FilterState) (*models.LeadPage, error)

// Snapshot is the listing state a session currently trusts for display
type Snapshot struct {
	State      filters.FilterState
	Page       *models.LeadPage
	Err        error
	Generation uint64
	FetchedAt  time.Time
}

// Syncer serializes a session's listing fetches. Filter edits arrive as
// overlapping requests; each fetch is tagged with a monotonically increasing
// generation, and a completion is applied only while its generation is still
// the latest issued. A slow early fetch can therefore never overwrite the
// result of a later one.
type Syncer struct {
	mu       sync.Mutex
	latest   uint64
	snapshot Snapshot
}

func NewSyncer() *Syncer {
	return &Syncer{}
}

// Fetch runs one generation-tagged fetch and returns its result to the
// caller. The shared snapshot is only updated when this fetch is still the
// newest one issued for the session.
func (s *Syncer) Fetch(state filters.FilterState, fetch FetchFunc) (*models.LeadPage, error) {
	s.mu.Lock()
	s.latest++
	gen := s.latest
	s.mu.Unlock()

	page, err := fetch(state)

	s.mu.Lock()
	if gen == s.latest {
		s.snapshot = Snapshot{
			State:      state,
			Page:       page,
			Err:        err,
			Generation: gen,
			FetchedAt:  time.Now(),
		}
	}
	s.mu.Unlock()

	return page, err
}

// Snapshot returns the last applied listing state
func (s *Syncer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Registry holds one syncer per browser session. Entries are dropped on
// logout and pruned by the periodic sweep once idle; sessions that expire
// without logging out must not pin their listing state forever.
type Registry struct {
	mu      sync.Mutex
	syncers map[string]*registryEntry
}

type registryEntry struct {
	syncer   *Syncer
	lastUsed time.Time
}

func NewRegistry() *Registry {
	return &Registry{syncers: make(map[string]*registryEntry)}
}

// Get returns the session's syncer, creating it on first use. An empty
// session id gets a throwaway syncer so anonymous requests stay isolated.
func (r *Registry) Get(sessionID string) *Syncer {
	if sessionID == "" {
		return NewSyncer()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.syncers[sessionID]
	if !ok {
		entry = &registryEntry{syncer: NewSyncer()}
		r.syncers[sessionID] = entry
	}
	entry.lastUsed = time.Now()
	return entry.syncer
}

// Drop removes a session's syncer, e.g. on logout
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	delete(r.syncers, sessionID)
	r.mu.Unlock()
}

// PruneIdle removes syncers not used within maxIdle and returns how many were
// removed; wired to the same cron schedule as the session sweep
func (r *Registry) PruneIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.syncers {
		if entry.lastUsed.Before(cutoff) {
			delete(r.syncers, id)
			removed++
		}
	}
	return removed
}
