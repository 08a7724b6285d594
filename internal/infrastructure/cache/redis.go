package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"academic-registrar/internal/config"
	interfaces "academic-registrar/internal/interfaces/infrastructure"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var _ interfaces.CacheService = (*RedisCache)(nil)

// RedisCache serves read-side snapshots (availability, per-student metrics)
// with TTLs. The enrollment write path never touches it; a stale entry is
// at worst an outdated view, corrected on the next miss.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCache{client: rdb}
}

func NewRedisCacheWithConfig(cfg *config.CacheConfig) *RedisCache {
	return NewRedisCache(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), cfg.Password, cfg.DB)
}

// GetClient exposes the underlying client for subsystems that share the
// connection, such as the idempotency repository.
func (r *RedisCache) GetClient() *redis.Client {
	return r.client
}

func availabilityKey(offeringID uuid.UUID) string {
	return fmt.Sprintf("offering:availability:%s", offeringID.String())
}

func studentMetricsKey(studentID uuid.UUID, kind string) string {
	return fmt.Sprintf("student:%s:%s", kind, studentID.String())
}

func (r *RedisCache) GetAvailability(ctx context.Context, offeringID uuid.UUID) (interface{}, error) {
	return r.getJSON(ctx, availabilityKey(offeringID))
}

func (r *RedisCache) SetAvailability(ctx context.Context, offeringID uuid.UUID, view interface{}, ttl time.Duration) error {
	return r.setJSON(ctx, availabilityKey(offeringID), view, ttl)
}

func (r *RedisCache) InvalidateAvailability(ctx context.Context, offeringID uuid.UUID) error {
	return r.client.Del(ctx, availabilityKey(offeringID)).Err()
}

func (r *RedisCache) GetStudentMetrics(ctx context.Context, studentID uuid.UUID, kind string) (interface{}, error) {
	return r.getJSON(ctx, studentMetricsKey(studentID, kind))
}

func (r *RedisCache) SetStudentMetrics(ctx context.Context, studentID uuid.UUID, kind string, data interface{}, ttl time.Duration) error {
	return r.setJSON(ctx, studentMetricsKey(studentID, kind), data, ttl)
}

func (r *RedisCache) InvalidateStudentMetrics(ctx context.Context, studentID uuid.UUID) error {
	for _, kind := range []string{"gpa", "transcript", "credits"} {
		if err := r.client.Del(ctx, studentMetricsKey(studentID, kind)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *RedisCache) getJSON(ctx context.Context, key string) (interface{}, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("cache miss for key %s", key)
		}
		return nil, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}
	return json.RawMessage(val), nil
}

func (r *RedisCache) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("cache miss for key %s", key)
		}
		return "", err
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
