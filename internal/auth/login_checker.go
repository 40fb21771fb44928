package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/huyblog/blogservice/internal/telemetry/tracing"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// IsLogged reports whether token belongs to a live session. An unknown token
// is not an error.
func (lc *LoginChecker) IsLogged(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "loginChecker.isLogged")
	defer func() { tracing.EndSpan(span, err) }()

	createdAt, err := sessionCreatedAt(ctx, lc.redisClient, token)
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return time.Since(createdAt) <= lc.ttl, nil
}

func sessionCreatedAt(ctx context.Context, rdb *redis.Client, token string) (time.Time, error) {
	createdAtUnixStr, err := rdb.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return time.Time{}, err
	}

	createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(createdAtUnix, 0), nil
}
