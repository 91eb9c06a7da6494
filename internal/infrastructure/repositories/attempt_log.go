package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vulgatecnn/afa100-sub001/domain"
)

// AttemptLogImpl implements domain.AttemptLog using a capped Redis list per
// credential. Attempts are ephemeral; the key carries a TTL so
// stale credentials leave no residue.
type AttemptLogImpl struct {
	client  *redis.Client
	prefix  string
	maxSize int
	ttl     time.Duration
}

// NewAttemptLog creates a new Redis-backed attempt log
func NewAttemptLog(client *redis.Client, maxSize int, ttl time.Duration) domain.AttemptLog {
	return &AttemptLogImpl{
		client:  client,
		prefix:  "attempts:",
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Record implements domain.AttemptLog
func (l *AttemptLogImpl) Record(ctx context.Context, attempt *domain.ValidationAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}

	key := l.prefix + attempt.CredentialID
	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(l.maxSize-1))
	pipe.Expire(ctx, key, l.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent implements domain.AttemptLog, newest first
func (l *AttemptLogImpl) Recent(ctx context.Context, credentialID string, limit int) ([]*domain.ValidationAttempt, error) {
	if limit <= 0 || limit > l.maxSize {
		limit = l.maxSize
	}

	key := l.prefix + credentialID
	entries, err := l.client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	attempts := make([]*domain.ValidationAttempt, 0, len(entries))
	for _, entry := range entries {
		var attempt domain.ValidationAttempt
		if err := json.Unmarshal([]byte(entry), &attempt); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attempt: %w", err)
		}
		attempts = append(attempts, &attempt)
	}
	return attempts, nil
}
