package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/uniadmin/internal/pkg/logger"
)

// NewRedisClient parses redisURL, connects and pings the server
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

const blacklistKeyPrefix = "blacklist:"

// RedisBlacklist keeps revoked token ids as keys that expire together with the token
type RedisBlacklist struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisBlacklist creates a blacklist backed by client
func NewRedisBlacklist(client redis.UniversalClient) *RedisBlacklist {
	return &RedisBlacklist{client: client, now: time.Now}
}

// Revoke stores jti with SET NX so that concurrent revocations race on a single key
func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(b.now())
	if ttl <= 0 {
		// already expired, nothing can use it anymore
		return false, nil
	}

	ok, err := b.client.SetNX(ctx, blacklistKeyPrefix+jti, strconv.FormatInt(userID, 10), ttl).Result()
	if err != nil {
		logger.Error().Err(err).Str("jti", jti).Msg("Error revoking token in redis")
		return false, fmt.Errorf("error revoking token: %w", err)
	}
	return ok, nil
}

// IsRevoked reports whether jti is on the blacklist
func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("error checking token blacklist: %w", err)
	}
	return n > 0, nil
}
