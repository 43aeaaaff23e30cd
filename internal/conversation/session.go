// Package conversation keeps chat sessions in memory: the append-only message
// log, the catalog snapshot loaded when the session started, the current
// suggestion chips and the guard that allows one turn at a time.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"book-assistant/backend/internal/agent"
	"book-assistant/backend/internal/catalog"
	"book-assistant/backend/internal/logger"
	"book-assistant/backend/internal/model"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyUtterance = errors.New("conversation: empty utterance")
	ErrBusy           = errors.New("conversation: a turn is already in flight")
	ErrNotFound       = errors.New("conversation: session not found")
	ErrFull           = errors.New("conversation: session limit reached")
)

// Responder answers one utterance against a catalog. *agent.Router
// satisfies it.
type Responder interface {
	Respond(ctx context.Context, utterance string, catalog []model.Book) agent.Reply
}

// State is a point-in-time copy of a session for rendering.
type State struct {
	ID       string
	Messages []model.Message
	Chips    []string
	// Examples is true when Chips holds the example questions of an empty
	// conversation rather than follow-up suggestions.
	Examples bool
	Pending  bool
}

type Session struct {
	id       string
	catalog  *catalog.Snapshot
	examples []string
	timeout  time.Duration

	// slot holds one token while a turn is in flight.
	slot chan struct{}

	mu          sync.RWMutex
	messages    []model.Message
	suggestions []string
	lastActive  time.Time
}

func newSession(id string, snapshot *catalog.Snapshot, examples []string, timeout time.Duration, now time.Time) *Session {
	return &Session{
		id:         id,
		catalog:    snapshot,
		examples:   examples,
		timeout:    timeout,
		slot:       make(chan struct{}, 1),
		lastActive: now,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Catalog returns the snapshot taken when the session was created.
func (s *Session) Catalog() *catalog.Snapshot {
	return s.catalog
}

// Submit runs one turn and waits for it. See Start.
func (s *Session) Submit(ctx context.Context, r Responder, utterance string) (agent.Reply, error) {
	done, err := s.Start(ctx, r, utterance)
	if err != nil {
		return agent.Reply{}, err
	}
	return <-done, nil
}

// Start appends the user message and runs the responder in the background.
// The returned channel receives the reply once it has been appended to the
// log. The turn is detached from ctx cancellation and bounded by the session
// timeout instead, so a reply is always recorded even when the caller goes
// away.
func (s *Session) Start(ctx context.Context, r Responder, utterance string) (<-chan agent.Reply, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}

	select {
	case s.slot <- struct{}{}:
	default:
		return nil, ErrBusy
	}

	s.mu.Lock()
	s.messages = append(s.messages, model.NewUserMessage(utterance))
	s.suggestions = nil
	s.lastActive = time.Now()
	s.mu.Unlock()

	turnCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc = func() {}
	if s.timeout > 0 {
		turnCtx, cancel = context.WithTimeout(turnCtx, s.timeout)
	}

	done := make(chan agent.Reply, 1)
	go func() {
		reply := r.Respond(turnCtx, utterance, s.catalog.Books())
		cancel()

		s.mu.Lock()
		s.messages = append(s.messages, reply.Message)
		s.suggestions = append([]string(nil), reply.Suggestions...)
		s.lastActive = time.Now()
		s.mu.Unlock()
		<-s.slot

		logger.Component(ctx, "session").WithFields(logrus.Fields{
			"session_id": s.id,
			"path":       reply.Path,
		}).Debug("turn recorded")
		done <- reply
	}()
	return done, nil
}

// Pending reports whether a turn is in flight.
func (s *Session) Pending() bool {
	return len(s.slot) > 0
}

// Messages returns a copy of the log.
func (s *Session) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Suggestions returns the follow-ups set by the last completed turn.
func (s *Session) Suggestions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.suggestions...)
}

// Chips returns the example questions while the log is empty, otherwise
// the current suggestions.
func (s *Session) Chips() ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return append([]string(nil), s.examples...), true
	}
	return append([]string(nil), s.suggestions...), false
}

// State returns a copy of the session for rendering.
func (s *Session) State() State {
	chips, examples := s.Chips()
	return State{
		ID:       s.id,
		Messages: s.Messages(),
		Chips:    chips,
		Examples: examples,
		Pending:  s.Pending(),
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}
