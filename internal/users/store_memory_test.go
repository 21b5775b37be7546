package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycgate/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory(User{UUID: "u-1", Username: "alice", Email: "alice@example.com"})

	t.Run("get seeded user", func(t *testing.T) {
		u, err := store.GetByUUID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.False(t, u.IsKYCApproved)
	})

	t.Run("flip kyc flag", func(t *testing.T) {
		require.NoError(t, store.UpdateKYCStatus(ctx, "u-1", true))
		u, err := store.GetByUUID(ctx, "u-1")
		require.NoError(t, err)
		assert.True(t, u.IsKYCApproved)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.GetByUUID(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, store.UpdateKYCStatus(ctx, "missing", true), sentinel.ErrNotFound)
	})
}
