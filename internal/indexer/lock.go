package indexer

import "sync/atomic"

// IndexLock provides non-blocking lock semantics: only one sweep may run at
// a time, and callers that lose the race get an immediate answer instead of
// queueing.
type IndexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock. Must only be called by the goroutine that
// successfully acquired it.
func (l *IndexLock) Release() {
	l.state.Store(0)
}
