package mongo

import (
	"context"
	"fmt"
	"time"

	"unlistedtube/pkg/retry"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ClientOptions configures the single shared MongoDB client.
type ClientOptions struct {
	URI            string
	PoolSize       uint64
	ConnectTimeout time.Duration
	Retry          retry.Config
}

// NewMongoClient connects to MongoDB and verifies the primary is reachable.
// The driver keeps its own pool; one client is shared by the whole process.
func NewMongoClient(ctx context.Context, opts ClientOptions, logger *zap.SugaredLogger) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout)
	if opts.PoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.PoolSize)
	}
	if err := clientOpts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	retryCfg := opts.Retry
	retryCfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warnw("MongoDB not reachable, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
	}

	client, err := retry.RetryWithResult(ctx, retryCfg, func(ctx context.Context) (*mongo.Client, error) {
		connectCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()

		c, err := mongo.Connect(connectCtx, clientOpts)
		if err != nil {
			return nil, err
		}
		if err := c.Ping(connectCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	logger.Infow("connected to MongoDB", "max_pool_size", opts.PoolSize)
	return client, nil
}

// CloseMongoClient disconnects the client, waiting at most timeout for
// in-flight operations.
func CloseMongoClient(client *mongo.Client, timeout time.Duration) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.Disconnect(ctx)
}
