package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"freight-rate-hub/internal/config"
)

const defaultRedisKey = "ratehub:commission_records"

// RedisStore keeps the collection as a single JSON value under one key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.Key), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Close releases the client.
func (r *RedisStore) Close() {
	if r == nil || r.client == nil {
		return
	}
	_ = r.client.Close()
}

// LoadCommissions reads the collection. A missing key is an empty ledger.
func (r *RedisStore) LoadCommissions(ctx context.Context) ([]CommissionRecord, error) {
	if r == nil || r.client == nil {
		return nil, ErrNotConfigured
	}
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []CommissionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}
	return decodeCommissions(data)
}

// SaveCommissions overwrites the key with the full collection.
func (r *RedisStore) SaveCommissions(ctx context.Context, records []CommissionRecord) error {
	if r == nil || r.client == nil {
		return ErrNotConfigured
	}
	data, err := encodeCommissions(records)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

var _ CommissionStore = (*RedisStore)(nil)
