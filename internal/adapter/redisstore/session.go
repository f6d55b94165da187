package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brigade/internal/config"
	"brigade/internal/interfaces"

	"github.com/redis/go-redis/v9"
)

// sessionStore keeps the per-session role mode in Redis. Sessions themselves
// come from the auth layer; this only remembers which mode the staff member
// picked, with a TTL so stale sessions degrade to the default.
type sessionStore struct {
	client *redis.Client
}

func NewSessionStore(cfg config.RedisConfig) interfaces.SessionStore {
	return &sessionStore{
		client: redis.NewClient(&redis.Options{
			Addr: cfg.Addr,
			DB:   cfg.DB,
		}),
	}
}

func sessionKey(token string) string {
	return "session:mode:" + token
}

func (s *sessionStore) ModeName(ctx context.Context, sessionToken string) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionToken)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session mode: %w", err)
	}
	return val, nil
}

func (s *sessionStore) SetModeName(ctx context.Context, sessionToken, mode string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(sessionToken), mode, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session mode: %w", err)
	}
	return nil
}
