package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMutationApply(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := NewEntry("0xabc", "kyc-1", now.Add(-time.Hour))
	e.RetryCount = 3

	Mutation{Status: StatusUnprocessed, RetryIncrement: 1, At: now}.Apply(e)
	assert.Equal(t, 4, e.RetryCount)
	assert.Equal(t, int64(2), e.Version)
	assert.Equal(t, now, e.UpdatedAt)

	Mutation{ResetRetries: true, RetryIncrement: 1}.Apply(e)
	assert.Zero(t, e.RetryCount)
	assert.Equal(t, now, e.UpdatedAt, "zero At keeps the timestamp")
}

func TestFilterMatches(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stale := NewEntry("0x1", "k1", now.Add(-48*time.Hour))
	stale.RetryCount = 5
	fresh := NewEntry("0x2", "k2", now)
	fresh.RetryCount = 5

	f := Filter{Status: StatusUnprocessed, UpdatedBefore: now.Add(-24 * time.Hour), RetryAtLeast: 5}
	assert.True(t, f.Matches(stale))
	assert.False(t, f.Matches(fresh))

	stale.RetryCount = 4
	assert.False(t, f.Matches(stale))
	assert.False(t, Filter{Status: StatusProcessing}.Matches(fresh))
}
