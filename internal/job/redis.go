package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Compile-time check that RedisRepository implements Repository.
var _ Repository = (*RedisRepository)(nil)

const redisKeyPrefix = "sora:job:"

// RedisRepository stores jobs as JSON in Redis so several API instances
// can answer status checks for the same fallback job.
type RedisRepository struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisRepository creates a repository on top of an existing Redis client.
// A ttl of zero stores keys without expiry.
func NewRedisRepository(client redis.Cmdable, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

// Save writes the job under its id.
func (r *RedisRepository) Save(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("job: marshal %s: %w", job.ID, err)
	}
	if err := r.client.Set(ctx, redisKey(job.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("job: redis set %s: %w", job.ID, err)
	}
	return nil
}

// FindByID loads a job by id.
func (r *RedisRepository) FindByID(ctx context.Context, id string) (*Job, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("job: redis get %s: %w", id, err)
	}

	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("job: unmarshal %s: %w", id, err)
	}
	return &j, nil
}

// Delete removes a job by id.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("job: redis del %s: %w", id, err)
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}
