package postgres

import (
	"context"
	"sync"
)

// lockTable is an in-process keyed mutex table. It backs the per-worker
// exclusive lock on backends without advisory locks (sqlite); on
// PostgreSQL the Store uses pg_advisory_xact_lock instead.
//
// Entries are retained for the life of the process; the key space is
// bounded by the worker population.
type lockTable struct {
	mu    sync.Mutex
	chans map[int64]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{
		chans: make(map[int64]chan struct{}),
	}
}

// acquire blocks until the key's lock is free or ctx is done.
func (lt *lockTable) acquire(ctx context.Context, key int64) error {
	lt.mu.Lock()
	ch, ok := lt.chans[key]
	if !ok {
		ch = make(chan struct{}, 1)
		lt.chans[key] = ch
	}
	lt.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release frees the key's lock. Releasing a key that is not held is a
// no-op.
func (lt *lockTable) release(key int64) {
	lt.mu.Lock()
	ch, ok := lt.chans[key]
	lt.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-ch:
	default:
	}
}
