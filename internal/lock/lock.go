// Package lock guards a campaign against concurrent sends.
package lock

import (
	"context"
	"sync"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
)

// Locker hands out exclusive per-key locks. Acquire fails with
// appErrors.ErrSendInProgress when the key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: map[string]struct{}{}}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, appErrors.ErrSendInProgress
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

var _ Locker = (*MemoryLocker)(nil)
