package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domain "academic-registrar/internal/domain/academic"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/go-redis/redis/v8"
)

var _ interfaces.IdempotencyRepository = (*RedisIdempotencyRepository)(nil)

// RedisIdempotencyRepository stores processed enroll responses keyed by the
// caller's idempotency key. Redis TTL handles expiry; DeleteExpired is a
// no-op kept for interface symmetry with a database-backed implementation.
type RedisIdempotencyRepository struct {
	client *redis.Client
}

func NewRedisIdempotencyRepository(client *redis.Client) *RedisIdempotencyRepository {
	return &RedisIdempotencyRepository{client: client}
}

func idempotencyRedisKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}

func (r *RedisIdempotencyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency key: %w", err)
	}

	ttl := time.Until(key.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("idempotency key %s already expired", key.Key)
	}

	return r.client.Set(ctx, idempotencyRedisKey(key.Key), data, ttl).Err()
}

func (r *RedisIdempotencyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	val, err := r.client.Get(ctx, idempotencyRedisKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("idempotency key not found")
		}
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	var idempotencyKey domain.IdempotencyKey
	if err := json.Unmarshal([]byte(val), &idempotencyKey); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency key: %w", err)
	}

	return &idempotencyKey, nil
}

func (r *RedisIdempotencyRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyRedisKey(key)).Err()
}

func (r *RedisIdempotencyRepository) DeleteExpired(ctx context.Context) error {
	return nil
}
