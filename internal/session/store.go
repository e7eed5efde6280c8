// Package session keeps per-conversation chat history in memory for the
// lifetime of the process. History is never persisted; a restart starts
// every conversation fresh.
package session

import (
	"sync"

	"github.com/csprime/csprime/internal/domain"
)

// MaxTurns is the number of turns retained per session. Appends always add
// a user/assistant pair, so the retained count stays even.
const MaxTurns = 20

// Store maps opaque session ids to their conversation history. Updates to
// a single session are serialised on a per-session lock so two concurrent
// exchanges against the same id cannot lose each other's turns.
//
// Keys are never evicted; for the expected per-user, low-volume traffic
// the map stays small for the process lifetime.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*conversation
}

type conversation struct {
	mu    sync.Mutex
	turns []domain.Turn
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*conversation)}
}

// Get returns a copy of the turns recorded for sessionID, oldest first.
// Unknown ids yield an empty history.
func (s *Store) Get(sessionID string) []domain.Turn {
	s.mu.RLock()
	conv := s.sessions[sessionID]
	s.mu.RUnlock()
	if conv == nil {
		return nil
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	out := make([]domain.Turn, len(conv.turns))
	copy(out, conv.turns)
	return out
}

// Append records one completed exchange and returns the trimmed history.
// Only whole pairs are ever appended, so partial exchanges never appear.
func (s *Store) Append(sessionID string, user, assistant domain.Turn) []domain.Turn {
	conv := s.conversation(sessionID)
	conv.mu.Lock()
	defer conv.mu.Unlock()
	conv.turns = append(conv.turns, user, assistant)
	if len(conv.turns) > MaxTurns {
		trimmed := make([]domain.Turn, MaxTurns)
		copy(trimmed, conv.turns[len(conv.turns)-MaxTurns:])
		conv.turns = trimmed
	}
	out := make([]domain.Turn, len(conv.turns))
	copy(out, conv.turns)
	return out
}

// Len reports the number of turns currently held for sessionID.
func (s *Store) Len(sessionID string) int {
	s.mu.RLock()
	conv := s.sessions[sessionID]
	s.mu.RUnlock()
	if conv == nil {
		return 0
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	return len(conv.turns)
}

func (s *Store) conversation(sessionID string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.sessions[sessionID]
	if !ok {
		conv = &conversation{}
		s.sessions[sessionID] = conv
	}
	return conv
}
