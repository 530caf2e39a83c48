package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	schemaVersionKey     = "unlistedtube:schema:version"
	currentSchemaVersion = 1
)

type Migration struct {
	Version int
	Up      func(ctx context.Context, client *redis.Client) error
}

// Migrate runs all pending migrations
func Migrate(ctx context.Context, client *redis.Client, logger *zap.SugaredLogger) error {
	currentVersion, err := getSchemaVersion(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if currentVersion >= currentSchemaVersion {
		logger.Debugw("schema is up to date",
			"current_version", currentVersion,
			"target_version", currentSchemaVersion,
		)
		return nil
	}

	for _, migration := range getMigrations() {
		if migration.Version <= currentVersion {
			continue
		}

		logger.Infow("running migration", "version", migration.Version)
		if err := migration.Up(ctx, client); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
		if err := client.Set(ctx, schemaVersionKey, migration.Version, 0).Err(); err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
	}

	logger.Infow("all migrations completed", "final_version", currentSchemaVersion)
	return nil
}

func getSchemaVersion(ctx context.Context, client *redis.Client) (int, error) {
	val, err := client.Get(ctx, schemaVersionKey).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

func getMigrations() []Migration {
	return []Migration{
		{
			// The id index must be a list; anything else would make every
			// LRANGE fail with WRONGTYPE.
			Version: 1,
			Up: func(ctx context.Context, client *redis.Client) error {
				kind, err := client.Type(ctx, videoIndexKey).Result()
				if err != nil {
					return err
				}
				if kind != "none" && kind != "list" {
					return fmt.Errorf("key %s has type %s, want list", videoIndexKey, kind)
				}
				return nil
			},
		},
	}
}
