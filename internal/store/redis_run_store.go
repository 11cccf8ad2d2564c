package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Badriprasad/knowledge-graph/internal/models"
)

// RedisRunStore stores migration run records in Redis.
type RedisRunStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRunStore initializes a Redis-backed RunStore.
func NewRedisRunStore(addr, prefix string, ttl time.Duration) *RedisRunStore {
	return &RedisRunStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		ttl:    ttl,
	}
}

// Close closes the Redis client.
func (s *RedisRunStore) Close() error {
	return s.client.Close()
}

// SetRun writes the run record to Redis.
func (s *RedisRunStore) SetRun(ctx context.Context, run models.MigrationRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return err
	}
	key := s.prefix + run.RunID
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

// GetRun reads the run record from Redis.
func (s *RedisRunStore) GetRun(ctx context.Context, runID string) (models.MigrationRun, bool, error) {
	key := s.prefix + runID
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.MigrationRun{}, false, nil
		}
		return models.MigrationRun{}, false, err
	}

	var run models.MigrationRun
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		return models.MigrationRun{}, false, err
	}

	return run, true, nil
}
