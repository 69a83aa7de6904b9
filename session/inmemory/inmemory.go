package inmemory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heihei0314/TLIPHelper/session"
)

// Store keeps sessions in process memory. Expired sessions are evicted
// lazily on access.
type Store struct {
	sessions map[string]*session.Session
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*session.Session)}
}

// EnsureSession returns the live session with the given id, sliding its
// expiry, or creates a fresh one (also when id is empty or expired).
func (store *Store) EnsureSession(id string, ttl time.Duration) (*session.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if id != "" {
		if sess, ok := store.sessions[id]; ok {
			if !sess.Expired(time.Now()) {
				sess.Expire(ttl)
				return sess, nil
			}
			delete(store.sessions, id)
		}
	}

	sess := session.New(uuid.NewString(), ttl)
	store.sessions[sess.ID()] = sess
	return sess, nil
}

// GetSession returns the live session with the given id, or nil if absent
// or expired.
func (store *Store) GetSession(id string) (*session.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	sess, ok := store.sessions[id]
	if !ok {
		return nil, nil
	}
	if sess.Expired(time.Now()) {
		delete(store.sessions, id)
		return nil, nil
	}
	return sess, nil
}
