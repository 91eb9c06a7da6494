package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

func TestAttemptLogImpl_RecordAndRecent(t *testing.T) {
	client := setupTestRedis(t)
	log := NewAttemptLog(client, 10, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := log.Record(ctx, &domain.ValidationAttempt{
			CredentialID: "cred-1",
			DeviceID:     fmt.Sprintf("dev-%d", i),
			PresentedAt:  time.Now().UTC(),
			Allowed:      i == 2,
			Reason:       domain.DenyUsageExceeded,
		})
		require.NoError(t, err)
	}

	attempts, err := log.Recent(ctx, "cred-1", 10)
	require.NoError(t, err)
	require.Len(t, attempts, 3)

	// Newest first
	assert.Equal(t, "dev-2", attempts[0].DeviceID)
	assert.True(t, attempts[0].Allowed)
	assert.Equal(t, "dev-0", attempts[2].DeviceID)
}

func TestAttemptLogImpl_CapsSize(t *testing.T) {
	client := setupTestRedis(t)
	log := NewAttemptLog(client, 5, time.Hour)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		err := log.Record(ctx, &domain.ValidationAttempt{
			CredentialID: "cred-1",
			DeviceID:     fmt.Sprintf("dev-%d", i),
			PresentedAt:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	attempts, err := log.Recent(ctx, "cred-1", 100)
	require.NoError(t, err)
	assert.Len(t, attempts, 5, "log must be capped at maxSize")
	assert.Equal(t, "dev-11", attempts[0].DeviceID, "newest entries survive the trim")
}

func TestAttemptLogImpl_RecentEmpty(t *testing.T) {
	client := setupTestRedis(t)
	log := NewAttemptLog(client, 5, time.Hour)

	attempts, err := log.Recent(context.Background(), "unknown-cred", 10)
	require.NoError(t, err)
	assert.Empty(t, attempts)
}

func TestAttemptLogImpl_KeyHasTTL(t *testing.T) {
	client := setupTestRedis(t)
	log := NewAttemptLog(client, 5, time.Hour)
	ctx := context.Background()

	require.NoError(t, log.Record(ctx, &domain.ValidationAttempt{
		CredentialID: "cred-ttl",
		DeviceID:     "dev-1",
		PresentedAt:  time.Now().UTC(),
	}))

	ttl := client.TTL(ctx, "attempts:cred-ttl").Val()
	assert.Greater(t, ttl, time.Duration(0), "attempt list must expire")
}
