package websession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "rohis:websession:"

// RedisStore implements Store on Redis. Expiry is delegated to key TTLs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisClient connects to addr with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

// Healthy verifies redis connectivity.
func (r *RedisStore) Healthy(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

// Get retrieves a session by token.
// POST: returns ErrNotFound if the key is missing or has expired
func (r *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+HashToken(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load web session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode web session: %w", err)
	}
	if s.Backend == nil {
		s.Backend = map[string]string{}
	}
	return s, nil
}

// Save writes the session with a fresh TTL.
func (r *RedisStore) Save(ctx context.Context, token string, s Session) error {
	now := r.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.ExpiresAt = now.Add(r.ttl)
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode web session: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+HashToken(token), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save web session: %w", err)
	}
	return nil
}

// Delete removes a session by token.
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, redisKeyPrefix+HashToken(token)).Err()
}

// PurgeExpired is a no-op: Redis evicts expired keys itself.
func (r *RedisStore) PurgeExpired(context.Context) (int64, error) {
	return 0, nil
}
