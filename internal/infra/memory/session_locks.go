package memory

import (
	"context"
	"fmt"
	"sync"

	"fsqa-audit-service/internal/domain"
)

// SessionLocks serializes writers per session within a single process.
// An entry lives only while some caller holds or waits for it.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sessionLock
}

type sessionLock struct {
	ch   chan struct{}
	refs int
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[int64]*sessionLock)}
}

// Lock blocks until the session's lock is free or ctx is done.
func (l *SessionLocks) Lock(ctx context.Context, sessionID int64) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &sessionLock{ch: make(chan struct{}, 1)}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-entry.ch
				l.release(sessionID, entry)
			})
		}, nil
	case <-ctx.Done():
		l.release(sessionID, entry)
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionLocked, ctx.Err())
	}
}

func (l *SessionLocks) release(sessionID int64, entry *sessionLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, sessionID)
	}
}
