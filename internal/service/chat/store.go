package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/proposal-agent/backend/internal/model/chat"
)

// Store keeps per-session conversation history in memory for the lifetime of
// the process. History is append-only and unbounded.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	turns    map[string][]chat.Turn
}

// NewStore returns an empty history store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]chat.Session),
		turns:    make(map[string][]chat.Turn),
	}
}

// CreateSession provisions an empty session under a freshly generated id.
func (s *Store) CreateSession(_ context.Context) chat.Session {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.turns[session.ID] = make([]chat.Turn, 0, 16)
	s.mu.Unlock()

	return session
}

// Session reports the metadata of a session that has been created or written to.
func (s *Store) Session(_ context.Context, sessionID string) (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// Get returns a copy of the recorded turns for sessionID in chronological
// order. Unknown sessions yield an empty slice.
func (s *Store) Get(_ context.Context, sessionID string) []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied
}

// Append records turn at the end of the session history, creating the
// session on first use.
func (s *Store) Append(_ context.Context, sessionID string, turn chat.Turn) {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = chat.Session{ID: sessionID, CreatedAt: turn.CreatedAt}
	}
	s.turns[sessionID] = append(s.turns[sessionID], turn)
}
