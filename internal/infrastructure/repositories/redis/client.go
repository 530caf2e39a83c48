package redis

import (
	"context"
	"fmt"
	"time"

	"unlistedtube/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ClientOptions configures the single shared Redis client.
type ClientOptions struct {
	URI            string
	PoolSize       int
	ConnectTimeout time.Duration
	Retry          retry.Config
}

// NewRedisClient parses a redis:// or rediss:// URI, connects with backoff
// and runs pending migrations. The returned client is a connection pool safe
// for concurrent use.
func NewRedisClient(ctx context.Context, opts ClientOptions, logger *zap.SugaredLogger) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(opts.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URI: %w", err)
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	if opts.ConnectTimeout > 0 {
		redisOpts.DialTimeout = opts.ConnectTimeout
	}
	redisOpts.ReadTimeout = 3 * time.Second
	redisOpts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(redisOpts)

	retryCfg := opts.Retry
	retryCfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warnw("Redis not reachable, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	}
	err = retry.Retry(ctx, retryCfg, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, redisOpts.DialTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if err := Migrate(ctx, client, logger); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Infow("connected to Redis",
		"address", redisOpts.Addr,
		"db", redisOpts.DB,
		"pool_size", redisOpts.PoolSize,
	)

	return client, nil
}

// CloseRedisClient closes the Redis client connection
func CloseRedisClient(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
