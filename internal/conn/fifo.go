package conn

import (
	"container/list"
	"context"
	"sync"
)

// fifoLock is a mutex that grants ownership in arrival order and lets a
// waiter give up through its context.
type fifoLock struct {
	mu      sync.Mutex
	held    bool
	waiters list.List // of chan struct{}
}

// Lock blocks until the caller owns the lock or ctx is done. A caller that
// gives up leaves the queue without side effects.
func (l *fifoLock) Lock(ctx context.Context) error {
	l.mu.Lock()
	if !l.held && l.waiters.Len() == 0 {
		l.held = true
		l.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	elem := l.waiters.PushBack(ch)
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
	}

	l.mu.Lock()
	select {
	case <-ch:
		// Ownership was handed over while we were giving up: pass it on.
		l.mu.Unlock()
		l.Unlock()
	default:
		l.waiters.Remove(elem)
		l.mu.Unlock()
	}
	return ctx.Err()
}

// Unlock hands the lock to the oldest waiter, or releases it.
func (l *fifoLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if front := l.waiters.Front(); front != nil {
		l.waiters.Remove(front)
		close(front.Value.(chan struct{}))
		return
	}
	l.held = false
}

// queued returns the number of waiters.
func (l *fifoLock) queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waiters.Len()
}
