package conversation

import (
	"context"
	"sync"
	"time"

	"book-assistant/backend/internal/catalog"
	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/metrics"

	"github.com/google/uuid"
)

const DefaultSweepInterval = 5 * time.Minute

// StoreConfig configures a Store.
type StoreConfig struct {
	// TTL is how long an idle session is kept. Zero keeps sessions forever.
	TTL time.Duration
	// TurnTimeout bounds each turn.
	TurnTimeout time.Duration
	// Examples are the chips shown for an empty conversation.
	Examples []string
	// MaxSessions caps how many sessions are held. At the cap the session
	// idle the longest is evicted; zero means no cap.
	MaxSessions int
}

// Store holds sessions in memory, keyed by a random UUID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl         time.Duration
	turnTimeout time.Duration
	examples    []string
	maxSessions int
	now         func() time.Time
}

func NewStore(cfg StoreConfig) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		ttl:         cfg.TTL,
		turnTimeout: cfg.TurnTimeout,
		examples:    append([]string(nil), cfg.Examples...),
		maxSessions: cfg.MaxSessions,
		now:         time.Now,
	}
}

// Create starts an empty session over the given catalog snapshot. When the
// store is full and every session has a turn in flight it returns ErrFull.
func (s *Store) Create(snapshot *catalog.Snapshot) (*Session, error) {
	sess := newSession(uuid.NewString(), snapshot, s.examples, s.turnTimeout, s.now())

	s.mu.Lock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		if !s.evictLocked() {
			s.mu.Unlock()
			return nil, ErrFull
		}
		metrics.SessionsEvictedTotal.Inc()
	}
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return sess, nil
}

// evictLocked drops the session idle the longest, skipping sessions with a
// turn in flight. s.mu must be held.
func (s *Store) evictLocked() bool {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, sess := range s.sessions {
		if sess.Pending() {
			continue
		}
		if idle := sess.idleSince(); oldestID == "" || idle.Before(oldest) {
			oldestID, oldest = id, idle
		}
	}
	if oldestID == "" {
		return false
	}
	delete(s.sessions, oldestID)
	return true
}

// Get returns the session with the given ID. Expired sessions are removed
// and reported as ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(sess) {
		s.remove(id)
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logger.Component(ctx, "session")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				log.WithField("removed", removed).Info("expired sessions swept")
			}
		}
	}
}

// expired reports whether sess has been idle longer than the TTL. A session
// with a turn in flight never expires.
func (s *Store) expired(sess *Session) bool {
	if s.ttl <= 0 || sess.Pending() {
		return false
	}
	return s.now().Sub(sess.idleSince()) > s.ttl
}

func (s *Store) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.ActiveSessions.Set(float64(n))
}
