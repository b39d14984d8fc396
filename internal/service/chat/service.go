package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medify-labs/medify/backend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Service owns conversation history. Turns are append-only: once recorded
// they are never edited or removed, and each session is only ever mutated
// under the store lock so append order is the order callers observe.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	turns    map[string][]chat.Turn
}

// NewService bootstraps the in-memory session store.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		turns:    make(map[string][]chat.Turn),
	}
}

// CreateSession provisions an anonymous conversation.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.turns[session.ID] = make([]chat.Turn, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// AppendTurn records a turn at the end of the session history and returns
// it with its assigned ID and timestamp.
func (s *Service) AppendTurn(_ context.Context, turn chat.Turn) (chat.Turn, error) {
	if turn.SessionID == "" {
		return chat.Turn{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[turn.SessionID]; !ok {
		return chat.Turn{}, ErrSessionNotFound
	}

	turn.ID = uuid.NewString()
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return turn, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Transcript returns a copy of the ordered turn history for a session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}
