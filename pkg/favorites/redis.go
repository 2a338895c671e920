package favorites

import (
	"context"
	"fmt"

	"github.com/avtoline/catalog-client/pkg/catalog"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a Membership backed by a Redis set, so one user's
// favorites state is shared across screens and processes (e.g. several
// proxy instances serving the same session).
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a membership store for one user.
func NewRedisStore(redisClient *redis.Client, userID int64) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
		key:   fmt.Sprintf("favorites:%d", userID),
	}
}

// Contains reports membership via a set point query.
func (s *RedisStore) Contains(ctx context.Context, ref catalog.AdRef) (bool, error) {
	ok, err := s.redis.SIsMember(ctx, s.key, ref.String()).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember: %w", err)
	}
	return ok, nil
}

// SetMember adds or removes one entry.
func (s *RedisStore) SetMember(ctx context.Context, ref catalog.AdRef, member bool) error {
	var err error
	if member {
		err = s.redis.SAdd(ctx, s.key, ref.String()).Err()
	} else {
		err = s.redis.SRem(ctx, s.key, ref.String()).Err()
	}
	if err != nil {
		return fmt.Errorf("redis set member: %w", err)
	}
	return nil
}

// Replace swaps the whole set atomically.
func (s *RedisStore) Replace(ctx context.Context, refs []catalog.AdRef) error {
	members := make([]interface{}, 0, len(refs))
	for _, ref := range refs {
		members = append(members, ref.String())
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(members) > 0 {
		pipe.SAdd(ctx, s.key, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis replace favorites: %w", err)
	}
	return nil
}
