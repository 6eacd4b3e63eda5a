package repository

import (
	"context"
	"sync"
	"time"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/google/uuid"
)

// maxSweepInterval bounds how often Create scans for expired sessions.
const maxSweepInterval = time.Minute

type memoryEntry struct {
	snapshot  quoteDomain.SessionSnapshot
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process memory. Sessions expire
// after the configured TTL of inactivity.
type MemorySessionRepository struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[uuid.UUID]memoryEntry
	now      func() time.Time

	nextSweep time.Time
}

// NewMemorySessionRepository creates an in-memory session store. A zero ttl
// keeps sessions forever.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl:      ttl,
		sessions: make(map[uuid.UUID]memoryEntry),
		now:      time.Now,
	}
}

// Create stores a new session.
func (r *MemorySessionRepository) Create(_ context.Context, s *quoteDomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()
	if _, exists := r.sessions[s.ID()]; exists {
		return domain.NewConflictError("session already exists")
	}
	r.put(s)
	return nil
}

// FindByID retrieves a session by ID.
func (r *MemorySessionRepository) FindByID(_ context.Context, id uuid.UUID) (*quoteDomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return quoteDomain.ReconstructSession(entry.snapshot), nil
}

// Mutate applies fn under the store lock.
func (r *MemorySessionRepository) Mutate(_ context.Context, id uuid.UUID, fn func(*quoteDomain.Session) error) (*quoteDomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.get(id)
	if err != nil {
		return nil, err
	}

	s := quoteDomain.ReconstructSession(entry.snapshot)
	if err := fn(s); err != nil {
		return nil, err
	}
	s.IncrementVersion()
	r.put(s)
	return s, nil
}

func (r *MemorySessionRepository) get(id uuid.UUID) (memoryEntry, error) {
	entry, ok := r.sessions[id]
	if !ok {
		return memoryEntry{}, domain.NewNotFoundError("Session", id.String())
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		delete(r.sessions, id)
		return memoryEntry{}, domain.NewNotFoundError("Session", id.String())
	}
	return entry, nil
}

// sweep drops expired sessions that nobody looked up again. Caller holds r.mu.
func (r *MemorySessionRepository) sweep() {
	if r.ttl <= 0 {
		return
	}
	now := r.now()
	if now.Before(r.nextSweep) {
		return
	}
	for id, entry := range r.sessions {
		if now.After(entry.expiresAt) {
			delete(r.sessions, id)
		}
	}
	interval := r.ttl
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	r.nextSweep = now.Add(interval)
}

func (r *MemorySessionRepository) put(s *quoteDomain.Session) {
	entry := memoryEntry{snapshot: s.Snapshot()}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.sessions[s.ID()] = entry
}
