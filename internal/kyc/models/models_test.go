package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOnApprovalPath(t *testing.T) {
	tests := []struct {
		name string
		app  Application
		want bool
	}{
		{"approved decision", Application{Decision: DecisionApproved}, true},
		{"rejected decision keeps ids", Application{Decision: DecisionRejected, KYCIDs: []string{"reg", "doc"}}, false},
		{"legacy record with ids", Application{KYCIDs: []string{"doc"}}, true},
		{"legacy record without ids", Application{KYCIDs: []string{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.app.OnApprovalPath())
		})
	}
}

func TestMutationApply(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	app := &Application{Status: StatusProcessing, KYCIDs: []string{"old"}, RetryCount: 1, Version: 4}

	Mutation{
		Status:         StatusProcessingDocs,
		ReplaceKYCIDs:  true,
		KYCIDs:         []string{"reg-1", "doc-1"},
		RetryIncrement: 1,
		At:             at,
	}.Apply(app)

	assert.Equal(t, StatusProcessingDocs, app.Status)
	assert.Equal(t, []string{"reg-1", "doc-1"}, app.KYCIDs)
	assert.Equal(t, 2, app.RetryCount)
	assert.Equal(t, int64(5), app.Version)
	assert.Equal(t, at, app.UpdatedAt)

	Mutation{ReplaceKYCIDs: true}.Apply(app)
	assert.NotNil(t, app.KYCIDs)
	assert.Empty(t, app.KYCIDs)
}

func TestFilterMatches(t *testing.T) {
	now := time.Now()
	stale := &Application{Status: StatusProcessing, UpdatedAt: now.Add(-2 * time.Hour), RetryCount: 5}
	fresh := &Application{Status: StatusProcessing, UpdatedAt: now, RetryCount: 0}

	f := Filter{Status: StatusProcessing, UpdatedBefore: now.Add(-time.Hour)}
	assert.True(t, f.Matches(stale))
	assert.False(t, f.Matches(fresh))

	retry := Filter{RetryAtLeast: 5, ExcludeStatuses: []Status{StatusProcessingFailed}}
	assert.True(t, retry.Matches(stale))
	assert.False(t, retry.Matches(fresh))
	assert.False(t, retry.Matches(&Application{Status: StatusProcessingFailed, RetryCount: 9}))
}
