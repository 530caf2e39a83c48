package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"unlistedtube/internal/core/ports"
	"unlistedtube/internal/infrastructure/repositories/memory"
	mongorepo "unlistedtube/internal/infrastructure/repositories/mongo"
	redisrepo "unlistedtube/internal/infrastructure/repositories/redis"
	"unlistedtube/pkg/config"
	"unlistedtube/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Backend names the storage engine behind the video repository.
type Backend string

const (
	BackendMongo  Backend = "mongo"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// BackendForURI picks a backend from the connection string scheme.
func BackendForURI(uri string) (Backend, error) {
	scheme, _, found := strings.Cut(strings.TrimSpace(uri), "://")
	if !found {
		return "", fmt.Errorf("database uri %q has no scheme", uri)
	}
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "redis", "rediss":
		return BackendRedis, nil
	case "memory":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// RepositoryFactory owns the single store client of the process.
type RepositoryFactory struct {
	backend     Backend
	cfg         *config.Config
	redisClient *redis.Client
	mongoClient *mongo.Client
	memoryRepo  ports.VideoRepository
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory connects to the configured store. The connection is
// established once, with backoff; failure is returned to the caller.
func NewRepositoryFactory(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	backend, err := BackendForURI(cfg.Database.URI)
	if err != nil {
		return nil, err
	}

	factory := &RepositoryFactory{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Database.ConnectRetry.MaxAttempts
	retryCfg.InitialDelay = cfg.Database.ConnectRetry.InitialDelay
	retryCfg.MaxDelay = cfg.Database.ConnectRetry.MaxDelay

	switch backend {
	case BackendMongo:
		client, err := mongorepo.NewMongoClient(ctx, mongorepo.ClientOptions{
			URI:            cfg.Database.URI,
			PoolSize:       uint64(cfg.Database.PoolSize),
			ConnectTimeout: cfg.Database.ConnectTimeout,
			Retry:          retryCfg,
		}, logger)
		if err != nil {
			return nil, err
		}
		factory.mongoClient = client
	case BackendRedis:
		client, err := redisrepo.NewRedisClient(ctx, redisrepo.ClientOptions{
			URI:            cfg.Database.URI,
			PoolSize:       cfg.Database.PoolSize,
			ConnectTimeout: cfg.Database.ConnectTimeout,
			Retry:          retryCfg,
		}, logger)
		if err != nil {
			return nil, err
		}
		factory.redisClient = client
	case BackendMemory:
		factory.memoryRepo = memory.NewMemoryVideoRepository()
		logger.Warn("using in-memory video repository; records are lost on restart")
	}

	logger.Infow("video repository ready", "backend", backend)
	return factory, nil
}

// Backend reports which engine the factory connected to.
func (f *RepositoryFactory) Backend() Backend {
	return f.backend
}

// CreateVideoRepository returns a repository bound to the shared client.
func (f *RepositoryFactory) CreateVideoRepository() ports.VideoRepository {
	switch f.backend {
	case BackendMongo:
		return mongorepo.NewMongoVideoRepository(f.mongoClient, f.cfg.Database.Name, f.cfg.Database.Collection)
	case BackendRedis:
		return redisrepo.NewRedisVideoRepository(f.redisClient)
	default:
		return f.memoryRepo
	}
}

// Close releases the store connection
func (f *RepositoryFactory) Close() error {
	switch {
	case f.mongoClient != nil:
		return mongorepo.CloseMongoClient(f.mongoClient, 10*time.Second)
	case f.redisClient != nil:
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

