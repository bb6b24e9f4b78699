package services

import (
	"sync"
	"time"

	"datastudio/pkg/contracts/domain"
)

// Analysis is one completed upload→clean→report run, held in memory for
// the lifetime of its session. The raw and cleaned tables are kept
// separately so both stay independently inspectable.
type Analysis struct {
	ID             string
	Filename       string
	Stem           string
	Format         domain.Format
	CreatedAt      time.Time
	Raw            domain.Table
	Cleaned        domain.Table
	CleaningReport domain.CleaningReport
	IngestionNotes []string
	Summaries      []domain.ColumnSummary
	ReportMarkdown string
}

// Snapshot returns the headline numbers of the analysis.
func (a *Analysis) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		RawRows:           a.Raw.RowCount(),
		CleanedRows:       a.Cleaned.RowCount(),
		Columns:           a.Cleaned.ColumnCount(),
		DroppedDuplicates: a.CleaningReport.DroppedDuplicates,
		ImputedCells:      a.CleaningReport.ImputedCells,
	}
}

// Eviction reasons passed to the store's eviction callback.
const (
	EvictExpired  = "expired"
	EvictCapacity = "capacity"
)

// SessionStore holds analyses in memory, keyed by id. The store is
// bounded by a capacity and a TTL; both are enforced lazily during Put
// and Get, so no background goroutine ever runs.
type SessionStore struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	sessions map[string]*Analysis
	order    []string // insertion order, oldest first

	// now is replaceable in tests to drive TTL expiry.
	now func() time.Time

	// onEvict, when set, is called for every evicted session while the
	// store lock is held; callbacks must not call back into the store.
	onEvict func(id, reason string)
}

// NewSessionStore creates a session store with the given bounds.
func NewSessionStore(capacity int, ttl time.Duration) *SessionStore {
	if capacity < 1 {
		capacity = 1
	}
	return &SessionStore{
		capacity: capacity,
		ttl:      ttl,
		sessions: make(map[string]*Analysis),
		now:      time.Now,
	}
}

// OnEvict registers a callback invoked once per evicted session with
// the session id and the eviction reason.
func (s *SessionStore) OnEvict(cb func(id, reason string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = cb
}

// Put stores an analysis, evicting expired sessions first and then the
// oldest sessions until the capacity bound holds.
func (s *SessionStore) Put(a *Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()

	if _, exists := s.sessions[a.ID]; !exists {
		s.order = append(s.order, a.ID)
	}
	s.sessions[a.ID] = a

	for len(s.order) > s.capacity {
		s.evict(s.order[0], EvictCapacity)
	}
}

// Get returns the analysis for id. Expired sessions are evicted on the
// way, so a stale id behaves exactly like an unknown one.
func (s *SessionStore) Get(id string) (*Analysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()

	a, ok := s.sessions[id]
	return a, ok
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	return len(s.sessions)
}

// evictExpired drops every session older than the TTL. Callers hold the
// lock. Sessions expire front-first because order is insertion order.
func (s *SessionStore) evictExpired() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for len(s.order) > 0 {
		oldest := s.sessions[s.order[0]]
		if oldest == nil || !oldest.CreatedAt.Before(cutoff) {
			break
		}
		s.evict(s.order[0], EvictExpired)
	}
}

// evict removes one session by id. Callers hold the lock.
func (s *SessionStore) evict(id, reason string) {
	delete(s.sessions, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.onEvict != nil {
		s.onEvict(id, reason)
	}
}
