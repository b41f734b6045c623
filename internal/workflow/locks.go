package workflow

import (
	"context"
	"sync"
)

// docLocks hands out one mutex per document id. A holder has exclusive right
// to run stages against that document; waiters queue on the lock's channel.
type docLocks struct {
	mu    sync.Mutex
	locks map[string]*docLock
}

type docLock struct {
	sem  chan struct{}
	refs int
}

func newDocLocks() *docLocks {
	return &docLocks{locks: make(map[string]*docLock)}
}

func (d *docLocks) get(id string) *docLock {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[id]
	if !ok {
		lock = &docLock{sem: make(chan struct{}, 1)}
		d.locks[id] = lock
	}
	lock.refs++
	return lock
}

func (d *docLocks) put(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[id]
	if !ok {
		return
	}
	lock.refs--
	if lock.refs <= 0 {
		delete(d.locks, id)
	}
}

// TryAcquire claims the document without waiting. It reports false when the
// document already has a stage in flight.
func (d *docLocks) TryAcquire(id string) bool {
	lock := d.get(id)
	select {
	case lock.sem <- struct{}{}:
		return true
	default:
		d.put(id)
		return false
	}
}

// Acquire claims the document, waiting behind any holder.
func (d *docLocks) Acquire(ctx context.Context, id string) error {
	lock := d.get(id)
	select {
	case lock.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		d.put(id)
		return ctx.Err()
	}
}

// Release returns the claim taken by TryAcquire or Acquire.
func (d *docLocks) Release(id string) {
	d.mu.Lock()
	lock, ok := d.locks[id]
	d.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-lock.sem:
	default:
	}
	d.put(id)
}
