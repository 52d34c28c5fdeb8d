package usage

import (
	"context"
	"sync"
	"time"
)

// memoryStore implements Store in process memory.
type memoryStore struct {
	mu      sync.Mutex
	ledgers map[string]Ledger
}

// NewMemoryStore returns a Store backed by a map. Safe for concurrent use.
func NewMemoryStore() Store {
	return &memoryStore{ledgers: make(map[string]Ledger)}
}

func (s *memoryStore) Get(_ context.Context, userID string) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[userID]
	if !ok {
		return nil, ErrLedgerNotFound
	}
	return &l, nil
}

func (s *memoryStore) Create(_ context.Context, ledger *Ledger) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ledgers[ledger.UserID]; ok {
		return nil, ErrLedgerExists
	}
	l := *ledger
	s.ledgers[l.UserID] = l
	return &l, nil
}

func (s *memoryStore) IncrementFree(_ context.Context, userID string, limit int64, now time.Time) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[userID]
	if !ok {
		return nil, ErrLedgerNotFound
	}
	if l.FreeUnitsUsed >= limit {
		return nil, ErrFreeQuotaExhausted
	}
	l.FreeUnitsUsed++
	l.UpdatedAt = now
	s.ledgers[userID] = l
	return &l, nil
}

func (s *memoryStore) Reset(_ context.Context, userID string, now time.Time) (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[userID]
	if !ok {
		return nil, ErrLedgerNotFound
	}
	if !resetPending(l.LastResetDate, now) {
		return &l, nil
	}
	l.FreeUnitsUsed = 0
	l.LastResetDate = now
	l.UpdatedAt = now
	s.ledgers[userID] = l
	return &l, nil
}
