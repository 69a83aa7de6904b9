package session

import (
	"context"
	"sync"
	"time"

	"github.com/heihei0314/TLIPHelper/internal/guide"
)

// Handler processes one conversation turn. *guide.Orchestrator satisfies it.
type Handler interface {
	Handle(ctx context.Context, stage guide.Stage, userInput string, state guide.State) (guide.Reply, guide.State)
}

// Store manages sessions. Implementations decide persistence; the engine
// only needs ensure-or-create and lookup.
type Store interface {
	EnsureSession(id string, ttl time.Duration) (*Session, error)
	GetSession(id string) (*Session, error)
}

// Session owns one conversation's summary state. All turns for a session go
// through Converse, which serializes them; concurrent calls for the same
// session never interleave their read-modify-write of the state.
type Session struct {
	id        string
	expiresAt time.Time
	state     guide.State
	mu        sync.Mutex
}

func New(id string, ttl time.Duration) *Session {
	return &Session{
		id:        id,
		expiresAt: time.Now().Add(ttl),
		state:     guide.NewState(),
	}
}

func (s *Session) ID() string { return s.id }

// Expire slides the expiry window forward.
func (s *Session) Expire(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(ttl)
}

// Expired reports whether the session's window has passed.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

// State returns a snapshot of the summary state.
func (s *Session) State() guide.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Converse runs one turn through the handler under the session lock and
// adopts the returned state.
func (s *Session) Converse(ctx context.Context, h Handler, stage guide.Stage, userInput string) guide.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply, next := h.Handle(ctx, stage, userInput, s.state)
	s.state = next
	return reply
}
