package ratebudget

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBudget(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewLocal(3, time.Second)
	b.now = func() time.Time { return now }

	granted, err := b.Reserve(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, granted)

	granted, _ = b.Reserve(ctx, 5)
	assert.Equal(t, 1, granted, "only the remaining slot is granted")

	granted, _ = b.Reserve(ctx, 1)
	assert.Zero(t, granted)
	assert.Equal(t, 3, b.InUse())

	now = now.Add(1100 * time.Millisecond)
	granted, _ = b.Reserve(ctx, 4)
	assert.Equal(t, 3, granted, "window slides")

	granted, _ = b.Reserve(ctx, 0)
	assert.Zero(t, granted)
}

func TestLocalBudgetConcurrentReservations(t *testing.T) {
	b := NewLocal(10, time.Minute)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := b.Reserve(context.Background(), 1)
			assert.NoError(t, err)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, total)
}
