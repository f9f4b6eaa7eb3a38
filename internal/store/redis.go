package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fafsabuddy/server/internal/domain"
)

// redisKeyPrefix namespaces session keys in a shared Redis.
const redisKeyPrefix = "fafsa:session:"

// RedisStore implements Store on Redis. Expiration rides on the key TTL, so
// no sweep worker is needed for this backend.
type RedisStore struct {
	rdb *goredis.Client
}

// NewRedis connects to Redis at addr and verifies connectivity.
func NewRedis(addr string) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// Load retrieves the session, or an empty one on miss.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.NewSession(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	session := domain.NewSession()
	if err := json.Unmarshal(raw, session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

// Save stores the session with the given TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID string, session *domain.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+sessionID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes the session key.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
