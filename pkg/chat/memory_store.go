package chat

import (
	"context"
	"slices"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	messages map[string][]Message
}

// NewMemoryStore returns an in-process MessageStore.
func NewMemoryStore() MessageStore {
	return &memoryStore{messages: make(map[string][]Message)}
}

func (s *memoryStore) Create(_ context.Context, m *Message) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[m.UserID] = append(s.messages[m.UserID], *m)
	out := *m
	return &out, nil
}

func (s *memoryStore) ListByUser(_ context.Context, userID string) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.messages[userID]
	out := make([]*Message, 0, len(stored))
	for i := range slices.Backward(stored) {
		m := stored[i]
		out = append(out, &m)
	}
	return out, nil
}

func (s *memoryStore) CountByUser(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[userID]), nil
}
