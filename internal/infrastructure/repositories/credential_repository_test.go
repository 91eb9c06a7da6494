package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

func TestCredentialRepositoryImpl_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	cred := newTestCredential(t)
	cred.DeviceScope = []string{"dev-1", "dev-2"}
	cred.TimeWindow = &domain.TimeWindow{StartMinute: 9 * 60, EndMinute: 18 * 60}
	require.NoError(t, repo.Create(ctx, cred))

	byID, err := repo.FindByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, cred.CodeValue, byID.CodeValue)
	assert.Equal(t, []string{"dev-1", "dev-2"}, byID.DeviceScope)
	require.NotNil(t, byID.TimeWindow)
	assert.Equal(t, 9*60, byID.TimeWindow.StartMinute)

	byCode, err := repo.FindByCode(ctx, cred.CodeValue)
	require.NoError(t, err)
	assert.Equal(t, cred.ID, byCode.ID)

	active, err := repo.FindActiveByApplication(ctx, cred.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, cred.ID, active.ID)
}

func TestCredentialRepositoryImpl_FindNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	_, err := repo.FindByCode(ctx, "no-such-code")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)

	_, err = repo.FindByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestCredentialRepositoryImpl_CodeValueTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	active := newTestCredential(t)
	require.NoError(t, repo.Create(ctx, active))

	revoked := newTestCredential(t)
	revoked.Status = domain.CredentialRevoked
	require.NoError(t, repo.Create(ctx, revoked))

	taken, err := repo.CodeValueTaken(ctx, active.CodeValue)
	require.NoError(t, err)
	assert.True(t, taken, "active credential code must count as taken")

	taken, err = repo.CodeValueTaken(ctx, revoked.CodeValue)
	require.NoError(t, err)
	assert.False(t, taken, "revoked credential code must not block reuse")

	taken, err = repo.CodeValueTaken(ctx, "never-issued")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestCredentialRepositoryImpl_UpdateConditional(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	cred := newTestCredential(t)
	require.NoError(t, repo.Create(ctx, cred))

	cred.UsageCount = 1
	cred.Status = domain.CredentialExhausted
	require.NoError(t, repo.UpdateConditional(ctx, cred, 1))
	assert.Equal(t, int64(2), cred.Version, "successful CAS must bump the in-memory version")

	stored, err := repo.FindByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)
	assert.Equal(t, domain.CredentialExhausted, stored.Status)
	assert.Equal(t, int64(2), stored.Version)
}

func TestCredentialRepositoryImpl_UpdateConditional_StaleVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	cred := newTestCredential(t)
	require.NoError(t, repo.Create(ctx, cred))

	// First writer wins
	first := *cred
	first.UsageCount = 1
	require.NoError(t, repo.UpdateConditional(ctx, &first, 1))

	// Second writer still holds version 1
	second := *cred
	second.UsageCount = 1
	err := repo.UpdateConditional(ctx, &second, 1)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	stored, err := repo.FindByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount, "stale writer must not be applied")
	assert.Equal(t, int64(2), stored.Version)
}

func TestCredentialRepositoryImpl_ConcurrentCAS(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	cred := newTestCredential(t)
	require.NoError(t, repo.Create(ctx, cred))

	const writers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := *cred
			local.UsageCount = 1
			local.Status = domain.CredentialExhausted
			if err := repo.UpdateConditional(ctx, &local, 1); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one concurrent CAS at the same version may succeed")

	stored, err := repo.FindByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)
	assert.Equal(t, int64(2), stored.Version)
}

func TestCredentialRepositoryImpl_UpdateConditional_ExtendsValidity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepository(db)
	ctx := context.Background()

	cred := newTestCredential(t)
	require.NoError(t, repo.Create(ctx, cred))

	extended := cred.ValidUntil.Add(4 * time.Hour)
	cred.ValidUntil = extended
	require.NoError(t, repo.UpdateConditional(ctx, cred, 1))

	stored, err := repo.FindByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, extended, stored.ValidUntil, time.Second)
}
