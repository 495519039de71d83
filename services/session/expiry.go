package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrExpiryUnknown is returned when no expiry is tracked for the key.
var ErrExpiryUnknown = errors.New("no tracked token expiry")

// ExpiryStore remembers when the last token issued for a channel/identity
// pair expires. Only the expiry instant is kept, never the raw token.
type ExpiryStore interface {
	Put(ctx context.Context, channelID, identity string, expiresAt time.Time) error
	Get(ctx context.Context, channelID, identity string) (time.Time, error)
}

// RedisExpiryStore implements ExpiryStore on Redis; entries evict themselves
// at token expiry.
type RedisExpiryStore struct {
	Client *redis.Client
}

func expiryKey(channelID, identity string) string {
	return fmt.Sprintf("session:expiry:%s:%s", channelID, identity)
}

func (s *RedisExpiryStore) Put(ctx context.Context, channelID, identity string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	value := strconv.FormatInt(expiresAt.Unix(), 10)
	if err := s.Client.Set(ctx, expiryKey(channelID, identity), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to track token expiry: %w", err)
	}
	return nil
}

func (s *RedisExpiryStore) Get(ctx context.Context, channelID, identity string) (time.Time, error) {
	value, err := s.Client.Get(ctx, expiryKey(channelID, identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, ErrExpiryUnknown
		}
		return time.Time{}, fmt.Errorf("failed to read token expiry: %w", err)
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt token expiry value %q: %w", value, err)
	}
	return time.Unix(unix, 0), nil
}
