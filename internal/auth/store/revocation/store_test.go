package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ishemalink/pkg/platform/sentinel"
)

func TestInMemoryTRL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	trl := NewInMemoryTRL()
	trl.now = func() time.Time { return now }

	t.Run("revoked jti is reported until its ttl lapses", func(t *testing.T) {
		require.NoError(t, trl.RevokeToken(ctx, "jti-1", time.Minute))
		revoked, err := trl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		now = now.Add(2 * time.Minute)
		revoked, err = trl.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("unknown and empty jti are not revoked", func(t *testing.T) {
		revoked, err := trl.IsRevoked(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, revoked)
		require.NoError(t, trl.RevokeToken(ctx, "", time.Minute))
	})

	t.Run("non-positive ttl is rejected", func(t *testing.T) {
		assert.ErrorIs(t, trl.RevokeToken(ctx, "jti-2", 0), sentinel.ErrInvalidState)
	})
}

func TestRemainingTTL(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 10*time.Minute, RemainingTTL(now.Add(10*time.Minute), now))
	assert.Equal(t, time.Second, RemainingTTL(now.Add(-time.Hour), now))
}
