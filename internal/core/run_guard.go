package core

// run_guard.go serializes import and delete runs.
//
// Both operations read and rewrite the provenance registry, so only one may
// run at a time. A second caller waits up to maxWait for the slot before
// failing with ErrImportInProgress.

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxWaitTime is how long to wait for the running import before rejecting.
const DefaultMaxWaitTime = 5 * time.Second

// RunGuard is a one-slot semaphore that remembers which run holds it.
type RunGuard struct {
	slot    chan struct{}
	maxWait time.Duration

	mu      sync.RWMutex
	current string
	since   time.Time
}

// NewRunGuard creates a guard. A non-positive maxWait uses DefaultMaxWaitTime.
func NewRunGuard(maxWait time.Duration) *RunGuard {
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &RunGuard{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the slot for runID.
// The caller MUST call Release() when the run completes (use defer).
func (g *RunGuard) Acquire(ctx context.Context, runID string) error {
	waitCtx, cancel := context.WithTimeout(ctx, g.maxWait)
	defer cancel()

	select {
	case g.slot <- struct{}{}:
		g.mu.Lock()
		g.current = runID
		g.since = time.Now()
		g.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Check if original context was cancelled vs timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrImportInProgress
	}
}

// Release frees the slot. Must be called exactly once per successful Acquire.
func (g *RunGuard) Release() {
	g.mu.Lock()
	g.current = ""
	g.since = time.Time{}
	g.mu.Unlock()

	<-g.slot
}

// RunStatus describes the run holding the guard.
type RunStatus struct {
	Active bool      `json:"active"`
	RunID  string    `json:"run_id,omitempty"`
	Since  time.Time `json:"since,omitzero"`
}

// Status returns a snapshot for monitoring.
func (g *RunGuard) Status() RunStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return RunStatus{Active: g.current != "", RunID: g.current, Since: g.since}
}

// WaitForDrain blocks until no run holds the guard or ctx is done.
// Used for graceful shutdown so a run is not cut off halfway.
func (g *RunGuard) WaitForDrain(ctx context.Context) error {
	select {
	case g.slot <- struct{}{}:
		<-g.slot
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
