package bundle

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.Mutex
	seq     int64
	bundles map[string]*Bundle
}

// NewMemoryStore returns a Store backed by a map. Safe for concurrent use.
func NewMemoryStore() Store {
	return &memoryStore{bundles: make(map[string]*Bundle)}
}

func (s *memoryStore) Create(_ context.Context, b *Bundle) (*Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	stored := clone(b)
	stored.seq = s.seq
	s.bundles[stored.ID] = stored
	return clone(stored), nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bundles[id]
	if !ok {
		return nil, ErrBundleNotFound
	}
	return clone(b), nil
}

func (s *memoryStore) ListByUser(_ context.Context, userID string) ([]*Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Bundle, 0)
	for _, b := range s.bundles {
		if b.UserID == userID {
			out = append(out, clone(b))
		}
	}
	SortNewestFirst(out)
	return out, nil
}

func (s *memoryStore) ListAll(_ context.Context) ([]*Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Bundle, 0, len(s.bundles))
	for _, b := range s.bundles {
		out = append(out, clone(b))
	}
	SortNewestFirst(out)
	return out, nil
}

func (s *memoryStore) IncrementUsage(_ context.Context, id string, now time.Time) (*Bundle, error) {
	return s.update(id, func(b *Bundle) error {
		if !b.IsCurrent(now) || !b.HasRoom() {
			return ErrBundleExhausted
		}
		b.UnitsUsed++
		b.UpdatedAt = now
		return nil
	})
}

func (s *memoryStore) Deactivate(_ context.Context, id string, now time.Time) (*Bundle, error) {
	return s.update(id, func(b *Bundle) error {
		b.IsActive = false
		b.UpdatedAt = now
		return nil
	})
}

func (s *memoryStore) DisableAutoRenew(_ context.Context, id string, now time.Time) (*Bundle, error) {
	return s.update(id, func(b *Bundle) error {
		b.AutoRenew = false
		b.RenewalDate = nil
		b.UpdatedAt = now
		return nil
	})
}

func (s *memoryStore) update(id string, fn func(*Bundle) error) (*Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bundles[id]
	if !ok {
		return nil, ErrBundleNotFound
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	return clone(b), nil
}

func clone(b *Bundle) *Bundle {
	c := *b
	if b.RenewalDate != nil {
		rd := *b.RenewalDate
		c.RenewalDate = &rd
	}
	return &c
}
