package renewal

import (
	"context"
	"sync"
)

// LocalLocker serializes sweeps within one process.
type LocalLocker struct {
	mu sync.Mutex
}

// NewLocalLocker returns an unlocked LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

// TryLock reports false while another sweep in this process holds the lock.
func (l *LocalLocker) TryLock(context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

// Unlock releases the lock.
func (l *LocalLocker) Unlock(context.Context) error {
	l.mu.Unlock()
	return nil
}

var _ Locker = (*LocalLocker)(nil)
