package lock

import (
	"context"
	"sync"
)

// MemoryLocker serializes work per order number inside one process. Entries
// are reference counted and dropped once no goroutine holds or waits on them.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyLock)}
}

func (l *MemoryLocker) Lock(ctx context.Context, orderNo string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[orderNo]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[orderNo] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(orderNo, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(orderNo, kl)
		})
	}, nil
}

func (l *MemoryLocker) release(orderNo string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, orderNo)
	}
}
