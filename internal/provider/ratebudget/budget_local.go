// Package ratebudget caps how many applicants are submitted to the
// verification provider per window, across every worker process.
package ratebudget

import (
	"context"
	"sync"
	"time"
)

// LocalBudget grants slots from a sliding window kept in process memory.
// Each process sharing a provider account gets the full limit, so it is only
// exact for single instance deployments and as the Redis fallback.
type LocalBudget struct {
	mu         sync.Mutex
	timestamps []time.Time
	limit      int
	window     time.Duration
	now        func() time.Time
}

func NewLocal(limit int, window time.Duration) *LocalBudget {
	return &LocalBudget{
		timestamps: []time.Time{},
		limit:      limit,
		window:     window,
		now:        time.Now,
	}
}

// Reserve grants up to n slots and returns how many were granted.
func (b *LocalBudget) Reserve(_ context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.cleanup(now)
	granted := min(n, b.limit-len(b.timestamps))
	if granted <= 0 {
		return 0, nil
	}
	for range granted {
		b.timestamps = append(b.timestamps, now)
	}
	return granted, nil
}

// InUse returns the slots consumed in the current window.
func (b *LocalBudget) InUse() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanup(b.now())
	return len(b.timestamps)
}

// cleanup drops grants older than the window. Must hold b.mu.
func (b *LocalBudget) cleanup(now time.Time) {
	cutoff := now.Add(-b.window)
	i := 0
	for ; i < len(b.timestamps); i++ {
		if b.timestamps[i].After(cutoff) {
			break
		}
	}
	b.timestamps = b.timestamps[i:]
}
