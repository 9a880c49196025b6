package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "smm:idem:"
	pendingValue   = "pending"
)

// RedisStore хранит ключи в Redis, что позволяет нескольким инстансам делить их.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Ping проверяет доступность Redis.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("[idempotency/redis] ping: %w", err)
	}
	return nil
}

func (r *RedisStore) Begin(ctx context.Context, key string) (*Response, error) {
	redisKey := redisKeyPrefix + key

	ok, err := r.rdb.SetNX(ctx, redisKey, pendingValue, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("[idempotency/redis] reserve %s: %w", key, err)
	}
	if ok {
		return nil, nil //nolint:nilnil
	}

	raw, getErr := r.rdb.Get(ctx, redisKey).Bytes()
	if getErr != nil {
		if errors.Is(getErr, redis.Nil) {
			// ключ истек между SetNX и Get.
			return r.Begin(ctx, key)
		}
		return nil, fmt.Errorf("[idempotency/redis] get %s: %w", key, getErr)
	}
	return decodeRecord(raw)
}

func (r *RedisStore) Complete(ctx context.Context, key string, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("[idempotency/redis] encode %s: %w", key, err)
	}
	if setErr := r.rdb.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); setErr != nil {
		return fmt.Errorf("[idempotency/redis] set %s: %w", key, setErr)
	}
	return nil
}

func (r *RedisStore) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("[idempotency/redis] del %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close() //nolint:wrapcheck
}

func decodeRecord(raw []byte) (*Response, error) {
	if string(raw) == pendingValue {
		return nil, ErrInProgress
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("[idempotency/redis] decode: %w", err)
	}
	return &resp, nil
}
