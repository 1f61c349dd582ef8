package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store manages session lifecycles.
type Store interface {
	EnsureSession(id string, ttl time.Duration) (*Session, error)
	GetSession(id string) (*Session, bool)
	Delete(id string)
}

// InMemoryStore keeps sessions in a map for the process lifetime; a janitor
// goroutine sweeps expired ones.
type InMemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

// EnsureSession returns the session for id with its TTL refreshed, creating
// a fresh one (new uuid) when id is empty or unknown.
func (store *InMemoryStore) EnsureSession(id string, ttl time.Duration) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if id != "" {
		if sess, ok := store.sessions[id]; ok && !sess.Expired() {
			sess.Expire(ttl)
			return sess, nil
		}
	}

	sess, err := NewSession(uuid.NewString(), ttl)
	if err != nil {
		return nil, err
	}
	store.sessions[sess.ID()] = sess
	return sess, nil
}

func (store *InMemoryStore) GetSession(id string) (*Session, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	sess, ok := store.sessions[id]
	if !ok || sess.Expired() {
		return nil, false
	}
	return sess, true
}

func (store *InMemoryStore) Delete(id string) {
	store.mu.Lock()
	delete(store.sessions, id)
	store.mu.Unlock()
}

// StartJanitor sweeps expired sessions every interval until ctx is done.
func (store *InMemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				store.sweep()
			}
		}
	}()
}

func (store *InMemoryStore) sweep() {
	store.mu.Lock()
	defer store.mu.Unlock()
	for id, sess := range store.sessions {
		if sess.Expired() {
			delete(store.sessions, id)
		}
	}
}
