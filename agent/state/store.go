package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrStateNotFound = errors.New("conversation state not found")
	ErrNilState      = errors.New("conversation state is nil")
)

// Store persists conversation state between chat turns.
type Store interface {
	Load(ctx context.Context, threadID string) (*ConversationState, error)
	Save(ctx context.Context, state *ConversationState) error
	Delete(ctx context.Context, threadID string) error
	Count(ctx context.Context) (int, error)
}

// MemoryStore keeps conversation state in process memory. Threads do not
// survive a restart; every method hands out deep copies so concurrent
// chat turns never share message slices.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*ConversationState
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*ConversationState),
	}
}

func (s *MemoryStore) Load(ctx context.Context, threadID string) (*ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[threadID]
	if !ok {
		return nil, fmt.Errorf("%w: thread=%s", ErrStateNotFound, threadID)
	}
	return state.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, state *ConversationState) error {
	if state == nil {
		return ErrNilState
	}
	if err := state.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ThreadID] = state.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[threadID]; !ok {
		return fmt.Errorf("%w: thread=%s", ErrStateNotFound, threadID)
	}
	delete(s.states, threadID)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states), nil
}
