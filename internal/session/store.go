// Package session maps session IDs to dialogue controllers. The store
// is LRU-bounded so abandoned conversations age out instead of growing
// the heap forever.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/dialogue"
)

// DefaultCapacity bounds the store when the config does not.
const DefaultCapacity = 512

// ControllerFactory builds a fresh conversation controller for a new
// session.
type ControllerFactory func() (*dialogue.Controller, error)

// Session is one conversation plus the lock that serializes its turns.
// Controllers are single-threaded; concurrent requests for the same
// session ID queue here.
type Session struct {
	ID string

	mu       sync.Mutex
	ctrl     *dialogue.Controller
	lastSeen time.Time
}

// Process runs one turn against the session's controller.
func (s *Session) Process(ctx context.Context, input string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.ctrl.ProcessTurn(ctx, input)
}

// Stage returns the controller's current dialogue stage.
func (s *Session) Stage() dialogue.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Stage()
}

// LastSeen returns the time of the most recent turn.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store holds sessions behind an LRU cache.
type Store struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, *Session]
	factory ControllerFactory
	logger  *zap.Logger
}

// NewStore creates a Store that evicts least-recently-used sessions
// beyond capacity. capacity <= 0 selects DefaultCapacity.
func NewStore(capacity int, factory ControllerFactory, logger *zap.Logger) (*Store, error) {
	if factory == nil {
		return nil, errors.New("controller factory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.NewWithEvict[string, *Session](capacity, func(id string, _ *Session) {
		sessionsEvicted.Inc()
		logger.Debug("session evicted", zap.String("session_id", id))
	})
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache, factory: factory, logger: logger}, nil
}

// GetOrCreate returns the session for id, creating it when unknown. An
// empty id mints a new UUID, which the caller echoes back so the client
// can continue the conversation.
func (st *Store) GetOrCreate(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if sess, ok := st.cache.Get(id); ok {
		return sess, nil
	}

	ctrl, err := st.factory()
	if err != nil {
		return nil, err
	}
	sess := &Session{ID: id, ctrl: ctrl, lastSeen: time.Now()}
	st.cache.Add(id, sess)
	sessionsCreated.Inc()
	st.logger.Debug("session created", zap.String("session_id", id))
	return sess, nil
}

// Get returns the session for id without creating one.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Get(id)
}

// Delete drops the session for id. It reports whether a session
// existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Remove(id)
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Len()
}
