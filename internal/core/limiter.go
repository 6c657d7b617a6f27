package core

// limiter.go caps how many import runs execute at once.
//
// Each run holds a slot for its whole duration. When every slot is taken a
// new run waits up to maxWait and then fails with ErrTooManyRuns, before any
// row is read.

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// RunLimiter controls concurrent runs using a semaphore.
type RunLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.Mutex
	active int
}

// NewRunLimiter creates a limiter that allows at most maxConcurrent
// simultaneous runs. It returns nil when maxConcurrent is not positive; a
// nil limiter admits every run.
func NewRunLimiter(maxConcurrent int, maxWait time.Duration) *RunLimiter {
	if maxConcurrent <= 0 {
		return nil
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &RunLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a run slot. Returns ErrTooManyRuns when maxWait expires
// and ctx.Err() when ctx ends first. The caller must Release a slot it
// acquired.
func (l *RunLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-timer.C:
		return ErrTooManyRuns

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *RunLimiter) Release() {
	if l == nil {
		return
	}

	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of runs holding a slot.
func (l *RunLimiter) ActiveCount() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Available returns the number of free slots.
func (l *RunLimiter) Available() int {
	if l == nil {
		return 0
	}
	return cap(l.semaphore) - len(l.semaphore)
}
