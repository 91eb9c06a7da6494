package repositories

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// setupTestDB opens an isolated in-memory SQLite database with the
// credential tables migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&DBApplication{}, &DBCredential{}))
	return db
}

// setupTestRedis creates an in-memory Redis instance for testing
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestCredential(t *testing.T) *domain.AccessCredential {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	return &domain.AccessCredential{
		ID:            uuid.NewString(),
		ApplicationID: uuid.NewString(),
		MerchantID:    "merchant-1",
		CodeValue:     "CODE-" + uuid.NewString()[:8],
		UsageLimit:    1,
		UsageCount:    0,
		ValidFrom:     now,
		ValidUntil:    now.Add(8 * time.Hour),
		Status:        domain.CredentialActive,
		Version:       1,
		CreatedBy:     "reviewer-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
