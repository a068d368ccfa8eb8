package expense

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// ExpenseLocker serializes settlement of a single expense. Lock blocks until
// the lock is held or ctx is done and returns the function that releases it.
type ExpenseLocker interface {
	Lock(ctx context.Context, expenseID uuid.UUID) (unlock func(), err error)
}

// LocalExpenseLocker is an in-process keyed mutex. It only serializes callers
// inside one process; use a shared locker when running several replicas.
type LocalExpenseLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalExpenseLocker creates a LocalExpenseLocker
func NewLocalExpenseLocker() *LocalExpenseLocker {
	return &LocalExpenseLocker{locks: make(map[uuid.UUID]*keyedLock)}
}

// Lock acquires the lock for expenseID
func (l *LocalExpenseLocker) Lock(ctx context.Context, expenseID uuid.UUID) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[expenseID]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[expenseID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(expenseID, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(expenseID, kl)
		})
	}, nil
}

func (l *LocalExpenseLocker) release(expenseID uuid.UUID, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, expenseID)
	}
}

// held reports how many keys currently have waiters or holders
func (l *LocalExpenseLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

var _ ExpenseLocker = (*LocalExpenseLocker)(nil)
